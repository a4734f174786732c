package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id::text, product_id::text, movement_type, quantity, note, created_by, created_at`

var movementOrderColumns = map[string]string{
	"created_at": "created_at",
	"quantity":   "quantity",
}

// StockMovementRepo ledger de inventario. Sólo INSERT; el trigger de la tabla rechaza UPDATE y DELETE.
type StockMovementRepo struct {
	q Querier
}

func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var typ string
	if err := row.Scan(&m.ID, &m.ProductID, &typ, &m.Quantity, &m.Note, &m.CreatedBy, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Type = entity.MovementType(typ)
	return &m, nil
}

func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, product_id, movement_type, quantity, note, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, m.ID, m.ProductID, string(m.Type), m.Quantity, m.Note, m.CreatedBy, m.CreatedAt)
	return translate("insert stock movement", err)
}

func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	if !validID(id) {
		return nil, nil
	}
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return m, nil
}

func (r *StockMovementRepo) List(ctx context.Context, f repository.StockMovementFilter) (*repository.Page[entity.StockMovement], error) {
	w := &where{}
	if f.ProductID != "" {
		if !validID(f.ProductID) {
			return &repository.Page[entity.StockMovement]{Items: []*entity.StockMovement{}, Page: f.Page.Page, PageSize: f.Page.PageSize, Ordering: f.Ordering.String()}, nil
		}
		w.add("product_id = ?", f.ProductID)
	}
	if f.Type != "" {
		w.add("movement_type = ?", string(f.Type))
	}
	w.timeRange("created_at", f.Range)
	return listPage(ctx, r.q, "list stock movements", movementColumns, "stock_movements", w, f.Ordering, movementOrderColumns, f.Page, scanMovement)
}

// Totals suma de entradas y salidas del producto.
func (r *StockMovementRepo) Totals(ctx context.Context, productID string) (in, out int, err error) {
	if !validID(productID) {
		return 0, 0, nil
	}
	query := `
		SELECT COALESCE(SUM(quantity) FILTER (WHERE movement_type = 'IN'), 0),
		       COALESCE(SUM(quantity) FILTER (WHERE movement_type = 'OUT'), 0)
		FROM stock_movements WHERE product_id = $1`
	if err := r.q.QueryRow(ctx, query, productID).Scan(&in, &out); err != nil {
		return 0, 0, fmt.Errorf("stock totals: %w", err)
	}
	return in, out, nil
}
