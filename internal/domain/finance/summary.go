package finance

import (
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/money"
)

// BuildSummary agrupa movimientos ya filtrados por tipo × estado (servicio de dominio puro).
// Los montos se suman con la variante que recorta negativos.
func BuildSummary(movements []*entity.FinancialMovement) entity.FinancialSummary {
	s := entity.FinancialSummary{
		Payables:    emptyBuckets(),
		Receivables: emptyBuckets(),
	}
	for _, m := range movements {
		if m == nil {
			continue
		}
		var group *entity.StatusBuckets
		switch m.Type {
		case entity.Payable:
			group = &s.Payables
		case entity.Receivable:
			group = &s.Receivables
		default:
			continue
		}
		var b *entity.SummaryBucket
		switch m.Status {
		case entity.FinancialOpen:
			b = &group.Open
		case entity.FinancialPaid:
			b = &group.Paid
		case entity.FinancialVoid:
			b = &group.Void
		default:
			continue
		}
		b.Count++
		b.Amount = money.NormalizeNonNegative(b.Amount.Add(money.NormalizeNonNegative(m.Amount)))
	}
	s.NetOpen = money.Normalize(s.Receivables.Open.Amount.Sub(s.Payables.Open.Amount))
	return s
}

func emptyBuckets() entity.StatusBuckets {
	return entity.StatusBuckets{
		Open: entity.SummaryBucket{Amount: money.Zero},
		Paid: entity.SummaryBucket{Amount: money.Zero},
		Void: entity.SummaryBucket{Amount: money.Zero},
	}
}
