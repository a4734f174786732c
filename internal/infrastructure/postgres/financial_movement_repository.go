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

var _ repository.FinancialMovementRepository = (*FinancialMovementRepo)(nil)

const financialColumns = `id::text, movement_type, source_type, source_id::text, amount, status, notes, created_at, paid_at, paid_by`

var financialOrderColumns = map[string]string{
	"created_at": "created_at",
	"paid_at":    "paid_at",
	"amount":     "amount",
	"id":         "id",
}

// FinancialMovementRepo ledger de cuentas por pagar y por cobrar.
type FinancialMovementRepo struct {
	q Querier
}

func NewFinancialMovementRepository(q Querier) *FinancialMovementRepo {
	return &FinancialMovementRepo{q: q}
}

func scanFinancial(row pgx.Row) (*entity.FinancialMovement, error) {
	var m entity.FinancialMovement
	var typ, source, status string
	var paidBy *string
	err := row.Scan(&m.ID, &typ, &source, &m.SourceID, &m.Amount, &status, &m.Notes, &m.CreatedAt, &m.PaidAt, &paidBy)
	if err != nil {
		return nil, err
	}
	m.Type = entity.FinancialType(typ)
	m.SourceType = entity.SourceType(source)
	m.Status = entity.FinancialStatus(status)
	m.PaidBy = deref(paidBy)
	return &m, nil
}

// GetOrCreateForUpdate INSERT ... ON CONFLICT DO NOTHING sobre la terna única y luego
// SELECT ... FOR UPDATE; dos transacciones concurrentes terminan con la misma fila.
func (r *FinancialMovementRepo) GetOrCreateForUpdate(ctx context.Context, m *entity.FinancialMovement) (*entity.FinancialMovement, bool, error) {
	tag, err := r.q.Exec(ctx, `
		INSERT INTO financial_movements (id, movement_type, source_type, source_id, amount, status, notes, created_at, paid_at, paid_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (movement_type, source_type, source_id) DO NOTHING`,
		m.ID, string(m.Type), string(m.SourceType), m.SourceID, m.Amount, string(m.Status), m.Notes,
		m.CreatedAt, m.PaidAt, nullable(m.PaidBy))
	if err != nil {
		return nil, false, translate("insert financial movement", err)
	}
	cur, err := r.GetBySourceForUpdate(ctx, m.Type, m.SourceType, m.SourceID)
	if err != nil {
		return nil, false, err
	}
	if cur == nil {
		return nil, false, fmt.Errorf("financial movement %s/%s/%s desapareció tras el insert", m.Type, m.SourceType, m.SourceID)
	}
	return cur, tag.RowsAffected() == 1, nil
}

// GetBySourceForUpdate bloquea la fila de la terna; (nil, nil) si no existe.
func (r *FinancialMovementRepo) GetBySourceForUpdate(ctx context.Context, t entity.FinancialType, st entity.SourceType, sourceID string) (*entity.FinancialMovement, error) {
	if !validID(sourceID) {
		return nil, nil
	}
	m, err := scanFinancial(r.q.QueryRow(ctx, `
		SELECT `+financialColumns+` FROM financial_movements
		WHERE movement_type = $1 AND source_type = $2 AND source_id = $3
		FOR UPDATE`, string(t), string(st), sourceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get financial movement by source: %w", err)
	}
	return m, nil
}

func (r *FinancialMovementRepo) GetByID(ctx context.Context, id string) (*entity.FinancialMovement, error) {
	if !validID(id) {
		return nil, nil
	}
	m, err := scanFinancial(r.q.QueryRow(ctx, `SELECT `+financialColumns+` FROM financial_movements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get financial movement: %w", err)
	}
	return m, nil
}

// Update escribe amount, status, notes, paid_at y paid_by.
func (r *FinancialMovementRepo) Update(ctx context.Context, m *entity.FinancialMovement) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE financial_movements
		SET amount = $2, status = $3, notes = $4, paid_at = $5, paid_by = $6
		WHERE id = $1`, m.ID, m.Amount, string(m.Status), m.Notes, m.PaidAt, nullable(m.PaidBy))
	if err != nil {
		return translate("update financial movement", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("movimiento financiero", m.ID)
	}
	return nil
}

func financialWhere(f repository.FinancialMovementFilter) *where {
	w := &where{}
	if f.Status != "" {
		w.add("status = ?", string(f.Status))
	}
	if f.Type != "" {
		w.add("movement_type = ?", string(f.Type))
	}
	if f.SourceType != "" {
		w.add("source_type = ?", string(f.SourceType))
	}
	w.timeRange("created_at", f.Range)
	return w
}

func (r *FinancialMovementRepo) List(ctx context.Context, f repository.FinancialMovementFilter) (*repository.Page[entity.FinancialMovement], error) {
	return listPage(ctx, r.q, "list financial movements", financialColumns, "financial_movements",
		financialWhere(f), f.Ordering, financialOrderColumns, f.Page, scanFinancial)
}

// ListAll sin paginar, para agregaciones.
func (r *FinancialMovementRepo) ListAll(ctx context.Context, f repository.FinancialMovementFilter) ([]*entity.FinancialMovement, error) {
	w := financialWhere(f)
	return queryAll(ctx, r.q, "list financial movements",
		`SELECT `+financialColumns+` FROM financial_movements`+w.String()+` ORDER BY created_at, id`, w.args, scanFinancial)
}
