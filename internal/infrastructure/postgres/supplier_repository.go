package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

const supplierColumns = `id::text, name, tax_id, email, phone, address, is_active, created_at, updated_at`

var supplierOrderColumns = map[string]string{
	"name":       "name",
	"created_at": "created_at",
}

// SupplierRepo proveedores sobre PostgreSQL.
type SupplierRepo struct {
	q Querier
}

func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

func scanSupplier(row pgx.Row) (*entity.Supplier, error) {
	var s entity.Supplier
	if err := row.Scan(&s.ID, &s.Name, &s.TaxID, &s.Email, &s.Phone, &s.Address, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	query := `
		INSERT INTO suppliers (id, name, tax_id, email, phone, address, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query, s.ID, s.Name, s.TaxID, s.Email, s.Phone, s.Address, s.IsActive, s.CreatedAt, s.UpdatedAt)
	return translate("insert supplier", err)
}

func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	query := `
		UPDATE suppliers
		SET name = $2, tax_id = $3, email = $4, phone = $5, address = $6, is_active = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, s.ID, s.Name, s.TaxID, s.Email, s.Phone, s.Address, s.IsActive, s.UpdatedAt)
	if err != nil {
		return translate("update supplier", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("proveedor", s.ID)
	}
	return nil
}

// GetByID (nil, nil) si no existe.
func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	if !validID(id) {
		return nil, nil
	}
	s, err := scanSupplier(r.q.QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return s, nil
}

func (r *SupplierRepo) List(ctx context.Context, f repository.SupplierFilter) (*repository.Page[entity.Supplier], error) {
	w := &where{}
	if f.ActiveOnly {
		w.add("is_active = ?", true)
	}
	return listPage(ctx, r.q, "list suppliers", supplierColumns, "suppliers", w, f.Ordering, supplierOrderColumns, f.Page, scanSupplier)
}
