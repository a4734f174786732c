package apptest

import (
	"cmp"
	"context"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/money"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

type financialRepo struct{ s *store }

func checkFinancialRow(m *entity.FinancialMovement) error {
	if m.Amount.IsNegative() {
		return integrity(domain.IntegrityCheck, "fin_mov_amount_gte_0")
	}
	if money.Exceeds(m.Amount, money.MaxAmount) {
		return outOfRange("financial_movements.amount")
	}
	if (m.Status == entity.FinancialPaid) != (m.PaidAt != nil) {
		return integrity(domain.IntegrityCheck, "fin_mov_paid_at_iff_paid")
	}
	if m.Status == entity.FinancialPaid && !m.Amount.IsPositive() {
		return integrity(domain.IntegrityCheck, "fin_mov_paid_amount_positive")
	}
	return nil
}

func (st *state) findBySource(t entity.FinancialType, src entity.SourceType, sourceID string) *entity.FinancialMovement {
	for _, m := range st.fin {
		if m.Type == t && m.SourceType == src && m.SourceID == sourceID {
			return m
		}
	}
	return nil
}

func (r financialRepo) GetOrCreateForUpdate(_ context.Context, m *entity.FinancialMovement) (*entity.FinancialMovement, bool, error) {
	if err := r.s.db.fault("financial.get_or_create"); err != nil {
		return nil, false, err
	}
	var out *entity.FinancialMovement
	var created bool
	err := r.s.do(func(st *state) error {
		if cur := st.findBySource(m.Type, m.SourceType, m.SourceID); cur != nil {
			out = cur.Clone()
			return nil
		}
		if err := checkFinancialRow(m); err != nil {
			return err
		}
		st.fin[m.ID] = m.Clone()
		out, created = m.Clone(), true
		return nil
	})
	return out, created, err
}

func (r financialRepo) GetBySourceForUpdate(_ context.Context, t entity.FinancialType, src entity.SourceType, sourceID string) (*entity.FinancialMovement, error) {
	var out *entity.FinancialMovement
	err := r.s.do(func(st *state) error {
		if cur := st.findBySource(t, src, sourceID); cur != nil {
			out = cur.Clone()
		}
		return nil
	})
	return out, err
}

func (r financialRepo) GetByID(_ context.Context, id string) (*entity.FinancialMovement, error) {
	var out *entity.FinancialMovement
	err := r.s.do(func(st *state) error {
		if m, ok := st.fin[id]; ok {
			out = m.Clone()
		}
		return nil
	})
	return out, err
}

func (r financialRepo) Update(_ context.Context, m *entity.FinancialMovement) error {
	if err := r.s.db.fault("financial.update"); err != nil {
		return err
	}
	return r.s.do(func(st *state) error {
		cur, ok := st.fin[m.ID]
		if !ok {
			return notFoundRow("movimiento financiero", m.ID)
		}
		if err := checkFinancialRow(m); err != nil {
			return err
		}
		next := m.Clone()
		next.Type, next.SourceType, next.SourceID, next.CreatedAt = cur.Type, cur.SourceType, cur.SourceID, cur.CreatedAt
		st.fin[m.ID] = next
		return nil
	})
}

var financialOrdering = map[string]comparator[entity.FinancialMovement]{
	"created_at": func(a, b *entity.FinancialMovement) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"paid_at":    func(a, b *entity.FinancialMovement) int { return compareTimePtr(a.PaidAt, b.PaidAt) },
	"amount":     func(a, b *entity.FinancialMovement) int { return a.Amount.Cmp(b.Amount) },
	"id":         func(a, b *entity.FinancialMovement) int { return cmp.Compare(a.ID, b.ID) },
}

func (r financialRepo) filter(f repository.FinancialMovementFilter) ([]*entity.FinancialMovement, error) {
	var items []*entity.FinancialMovement
	err := r.s.do(func(st *state) error {
		for _, m := range st.fin {
			if f.Status != "" && m.Status != f.Status {
				continue
			}
			if f.Type != "" && m.Type != f.Type {
				continue
			}
			if f.SourceType != "" && m.SourceType != f.SourceType {
				continue
			}
			if !f.Range.Contains(m.CreatedAt) {
				continue
			}
			items = append(items, m.Clone())
		}
		return nil
	})
	return items, err
}

func (r financialRepo) List(_ context.Context, f repository.FinancialMovementFilter) (*repository.Page[entity.FinancialMovement], error) {
	items, err := r.filter(f)
	if err != nil {
		return nil, err
	}
	sortBy(items, f.Ordering, financialOrdering, func(m *entity.FinancialMovement) string { return m.ID })
	return paginate(items, f.Page, f.Ordering), nil
}

func (r financialRepo) ListAll(_ context.Context, f repository.FinancialMovementFilter) ([]*entity.FinancialMovement, error) {
	items, err := r.filter(f)
	if err != nil {
		return nil, err
	}
	sortBy(items, repository.Ordering{Field: "created_at"}, financialOrdering, func(m *entity.FinancialMovement) string { return m.ID })
	return items, nil
}
