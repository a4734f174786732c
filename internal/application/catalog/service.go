// Package catalog casos de uso de productos y proveedores. El stock nunca se escribe
// desde acá: sólo cambia mediante movimientos de inventario.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/money"
	"github.com/jhoicas/erp-core/internal/domain/repository"
	"github.com/jhoicas/erp-core/pkg/logger"
)

// Service catálogo.
type Service struct {
	tx  repository.TxRunner
	log *logger.Logger
	now func() time.Time
}

// NewService construye el servicio.
func NewService(tx repository.TxRunner, log *logger.Logger) *Service {
	return &Service{tx: tx, log: log.Named("catalog"), now: func() time.Time { return time.Now().UTC() }}
}

// WithClock reemplaza el reloj (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateProductInput alta de producto. Status vacío es ACTIVE.
type CreateProductInput struct {
	SKU          string
	Name         string
	Description  string
	PurchaseCost decimal.Decimal
	SalePrice    decimal.Decimal
	Status       string
}

// UpdateProductInput edición parcial de campos de catálogo.
type UpdateProductInput struct {
	SKU          *string
	Name         *string
	Description  *string
	PurchaseCost *decimal.Decimal
	SalePrice    *decimal.Decimal
	Status       *string
}

// CreateProduct crea un producto con stock 0.
func (s *Service) CreateProduct(ctx context.Context, in CreateProductInput) (*entity.Product, error) {
	var p *entity.Product
	err := s.tx.Run(ctx, repository.LockSet{}, func(ctx context.Context, st repository.Store) error {
		var err error
		p, err = s.CreateProductInTx(ctx, st, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("product_id", p.ID).Str("sku", p.SKU).Msg("producto creado")
	return p, nil
}

// CreateProductInTx crea el producto dentro de la transacción del caller (carga inicial con stock).
func (s *Service) CreateProductInTx(ctx context.Context, st repository.Store, in CreateProductInput) (*entity.Product, error) {
	now := s.now()
	p := &entity.Product{
		ID:           uuid.New().String(),
		SKU:          strings.TrimSpace(in.SKU),
		Name:         strings.TrimSpace(in.Name),
		Description:  strings.TrimSpace(in.Description),
		PurchaseCost: money.Round(in.PurchaseCost),
		SalePrice:    money.Round(in.SalePrice),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	status := entity.ProductStatus(strings.ToUpper(strings.TrimSpace(in.Status)))
	if status == "" {
		status = entity.ProductActive
	}
	p.SetStatus(status)
	if err := entity.ValidateProduct(p, nil).Err("producto inválido", nil); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueSKU(ctx, st, p.SKU, ""); err != nil {
		return nil, err
	}
	if err := st.Products().Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

// UpdateProduct modifica campos de catálogo con la fila bloqueada.
func (s *Service) UpdateProduct(ctx context.Context, id string, in UpdateProductInput) (*entity.Product, error) {
	var out *entity.Product
	err := s.tx.Run(ctx, repository.LockSet{Products: []string{id}}, func(ctx context.Context, st repository.Store) error {
		prev, err := st.Products().GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get product: %w", err)
		}
		if prev == nil {
			return domain.NotFound("producto", id)
		}
		p := *prev
		if in.SKU != nil {
			p.SKU = strings.TrimSpace(*in.SKU)
		}
		if in.Name != nil {
			p.Name = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			p.Description = strings.TrimSpace(*in.Description)
		}
		if in.PurchaseCost != nil {
			p.PurchaseCost = money.Round(*in.PurchaseCost)
		}
		if in.SalePrice != nil {
			p.SalePrice = money.Round(*in.SalePrice)
		}
		if in.Status != nil {
			p.SetStatus(entity.ProductStatus(strings.ToUpper(strings.TrimSpace(*in.Status))))
		}
		if err := entity.ValidateProduct(&p, prev).Err("producto inválido", nil); err != nil {
			return err
		}
		if p.SKU != prev.SKU {
			if err := s.ensureUniqueSKU(ctx, st, p.SKU, p.ID); err != nil {
				return err
			}
		}
		p.UpdatedAt = s.now()
		if err := st.Products().Update(ctx, &p); err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		out = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("product_id", out.ID).Str("status", string(out.Status)).Msg("producto actualizado")
	return out, nil
}

func (s *Service) ensureUniqueSKU(ctx context.Context, st repository.Store, sku, selfID string) error {
	existing, err := st.Products().GetBySKU(ctx, sku)
	if err != nil {
		return fmt.Errorf("get product by sku: %w", err)
	}
	if existing != nil && existing.ID != selfID {
		var fe domain.FieldErrors
		fe.Add("sku", "Ya existe un producto con SKU %s.", sku)
		return fe.Err("producto inválido", domain.ErrDuplicate)
	}
	return nil
}

// GetProduct producto por id.
func (s *Service) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	p, err := s.tx.Reader().Products().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if p == nil {
		return nil, domain.NotFound("producto", id)
	}
	return p, nil
}

// ProductListFilter filtros crudos del listado de productos.
type ProductListFilter struct {
	Search   string
	Status   string
	Page     string
	PageSize string
	Ordering string
}

var productOrdering = []string{"sku", "name", "stock", "created_at"}

// ListProducts listado paginado, por defecto ordenado por sku.
func (s *Service) ListProducts(ctx context.Context, f ProductListFilter) (*repository.Page[entity.Product], error) {
	rf := repository.ProductFilter{Search: strings.TrimSpace(f.Search)}
	if v := strings.ToUpper(strings.TrimSpace(f.Status)); v != "" {
		rf.Status = entity.ProductStatus(v)
		if rf.Status != entity.ProductActive && rf.Status != entity.ProductInactive {
			return nil, domain.Invalid("status", "status inválido. Permitidos: ACTIVE, INACTIVE")
		}
	}
	var err error
	if rf.Page, err = repository.ParsePage(f.Page, f.PageSize); err != nil {
		return nil, err
	}
	if rf.Ordering, err = repository.ParseOrdering(f.Ordering, productOrdering, "sku"); err != nil {
		return nil, err
	}
	page, err := s.tx.Reader().Products().List(ctx, rf)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return page, nil
}
