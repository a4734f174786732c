package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

// SupplierInput alta de proveedor.
type SupplierInput struct {
	Name    string
	TaxID   string
	Email   string
	Phone   string
	Address string
}

// UpdateSupplierInput edición parcial; IsActive=false desactiva el proveedor para nuevas compras.
type UpdateSupplierInput struct {
	Name     *string
	TaxID    *string
	Email    *string
	Phone    *string
	Address  *string
	IsActive *bool
}

// CreateSupplier crea un proveedor activo.
func (s *Service) CreateSupplier(ctx context.Context, in SupplierInput) (*entity.Supplier, error) {
	now := s.now()
	sup := &entity.Supplier{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		TaxID:     strings.TrimSpace(in.TaxID),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := entity.ValidateSupplier(sup).Err("proveedor inválido", nil); err != nil {
		return nil, err
	}
	err := s.tx.Run(ctx, repository.LockSet{}, func(ctx context.Context, st repository.Store) error {
		if err := st.Suppliers().Create(ctx, sup); err != nil {
			return fmt.Errorf("create supplier: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("supplier_id", sup.ID).Str("name", sup.Name).Msg("proveedor creado")
	return sup, nil
}

// UpdateSupplier edita un proveedor.
func (s *Service) UpdateSupplier(ctx context.Context, id string, in UpdateSupplierInput) (*entity.Supplier, error) {
	var out *entity.Supplier
	err := s.tx.Run(ctx, repository.LockSet{}, func(ctx context.Context, st repository.Store) error {
		sup, err := st.Suppliers().GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get supplier: %w", err)
		}
		if sup == nil {
			return domain.NotFound("proveedor", id)
		}
		for _, f := range []struct {
			dst *string
			src *string
		}{{&sup.Name, in.Name}, {&sup.TaxID, in.TaxID}, {&sup.Email, in.Email}, {&sup.Phone, in.Phone}, {&sup.Address, in.Address}} {
			if f.src != nil {
				*f.dst = strings.TrimSpace(*f.src)
			}
		}
		if in.IsActive != nil {
			sup.IsActive = *in.IsActive
		}
		if err := entity.ValidateSupplier(sup).Err("proveedor inválido", nil); err != nil {
			return err
		}
		sup.UpdatedAt = s.now()
		if err := st.Suppliers().Update(ctx, sup); err != nil {
			return fmt.Errorf("update supplier: %w", err)
		}
		out = sup
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("supplier_id", out.ID).Bool("is_active", out.IsActive).Msg("proveedor actualizado")
	return out, nil
}

// GetSupplier proveedor por id.
func (s *Service) GetSupplier(ctx context.Context, id string) (*entity.Supplier, error) {
	sup, err := s.tx.Reader().Suppliers().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	if sup == nil {
		return nil, domain.NotFound("proveedor", id)
	}
	return sup, nil
}

// SupplierListFilter filtros crudos del listado de proveedores.
type SupplierListFilter struct {
	ActiveOnly string
	Page       string
	PageSize   string
	Ordering   string
}

var supplierOrdering = []string{"name", "created_at"}

// ListSuppliers listado paginado, por defecto por nombre.
func (s *Service) ListSuppliers(ctx context.Context, f SupplierListFilter) (*repository.Page[entity.Supplier], error) {
	var rf repository.SupplierFilter
	if v := strings.TrimSpace(f.ActiveOnly); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, domain.Invalid("active", "active debe ser true o false")
		}
		rf.ActiveOnly = b
	}
	var err error
	if rf.Page, err = repository.ParsePage(f.Page, f.PageSize); err != nil {
		return nil, err
	}
	if rf.Ordering, err = repository.ParseOrdering(f.Ordering, supplierOrdering, "name"); err != nil {
		return nil, err
	}
	page, err := s.tx.Reader().Suppliers().List(ctx, rf)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return page, nil
}
