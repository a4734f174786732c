package repository

import (
	"context"
	"time"

	"github.com/jhoicas/erp-core/internal/domain/entity"
)

// ProductFilter filtros del listado de productos.
type ProductFilter struct {
	Search   string // sku o nombre (contiene, sin distinguir mayúsculas)
	Status   entity.ProductStatus
	Page     PageRequest
	Ordering Ordering
}

// ProductRepository puerto de persistencia para Product.
// Los Get devuelven (nil, nil) si no existe.
type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) error
	// Update escribe sólo campos de catálogo; nunca stock.
	Update(ctx context.Context, p *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// GetMany devuelve los productos encontrados indexados por id.
	GetMany(ctx context.Context, ids []string) (map[string]*entity.Product, error)
	// UpdateStock único camino de escritura del contador; lo usa el ledger con la fila bloqueada.
	UpdateStock(ctx context.Context, id string, stock int, at time.Time) error
	List(ctx context.Context, f ProductFilter) (*Page[entity.Product], error)
}

// SupplierFilter filtros del listado de proveedores.
type SupplierFilter struct {
	ActiveOnly bool
	Page       PageRequest
	Ordering   Ordering
}

// SupplierRepository puerto de persistencia para Supplier.
type SupplierRepository interface {
	Create(ctx context.Context, s *entity.Supplier) error
	Update(ctx context.Context, s *entity.Supplier) error
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	List(ctx context.Context, f SupplierFilter) (*Page[entity.Supplier], error)
}
