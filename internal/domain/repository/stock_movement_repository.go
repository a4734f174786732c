package repository

import (
	"context"

	"github.com/jhoicas/erp-core/internal/domain/entity"
)

// StockMovementFilter filtros del listado de movimientos de inventario.
type StockMovementFilter struct {
	ProductID string
	Type      entity.MovementType
	Range     TimeRange
	Page      PageRequest
	Ordering  Ordering
}

// StockMovementRepository ledger append-only: no hay Update ni Delete.
type StockMovementRepository interface {
	Create(ctx context.Context, m *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	List(ctx context.Context, f StockMovementFilter) (*Page[entity.StockMovement], error)
	// Totals suma de entradas y salidas del producto.
	Totals(ctx context.Context, productID string) (in, out int, err error)
}
