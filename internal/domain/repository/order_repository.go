package repository

import (
	"context"

	"github.com/jhoicas/erp-core/internal/domain/entity"
)

// OrderFilter filtros comunes de órdenes de compra y venta.
type OrderFilter struct {
	Status   string
	Range    TimeRange
	Page     PageRequest
	Ordering Ordering
}

// PurchaseOrderRepository puerto de persistencia para órdenes de compra y sus líneas.
// GetByID carga las líneas.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, o *entity.PurchaseOrder) error
	// Update escribe cabecera, estado y auditoría (no líneas).
	Update(ctx context.Context, o *entity.PurchaseOrder) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	List(ctx context.Context, f OrderFilter) (*Page[entity.PurchaseOrder], error)
	InsertLine(ctx context.Context, l *entity.PurchaseOrderLine) error
	UpdateLine(ctx context.Context, l *entity.PurchaseOrderLine) error
	DeleteLine(ctx context.Context, orderID, lineID string) error
}

// SalesOrderRepository puerto de persistencia para órdenes de venta y sus líneas.
type SalesOrderRepository interface {
	Create(ctx context.Context, o *entity.SalesOrder) error
	Update(ctx context.Context, o *entity.SalesOrder) error
	GetByID(ctx context.Context, id string) (*entity.SalesOrder, error)
	List(ctx context.Context, f OrderFilter) (*Page[entity.SalesOrder], error)
	InsertLine(ctx context.Context, l *entity.SalesOrderLine) error
	UpdateLine(ctx context.Context, l *entity.SalesOrderLine) error
	DeleteLine(ctx context.Context, orderID, lineID string) error
}
