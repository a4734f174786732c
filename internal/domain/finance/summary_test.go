package finance_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/finance"
	"github.com/jhoicas/erp-core/internal/domain/money"
)

func mov(t entity.FinancialType, s entity.FinancialStatus, amount string) *entity.FinancialMovement {
	return &entity.FinancialMovement{Type: t, Status: s, Amount: decimal.RequireFromString(amount)}
}

func TestBuildSummary(t *testing.T) {
	s := finance.BuildSummary([]*entity.FinancialMovement{
		mov(entity.Payable, entity.FinancialOpen, "10.00"),
		mov(entity.Payable, entity.FinancialOpen, "5.50"),
		mov(entity.Payable, entity.FinancialPaid, "7.00"),
		mov(entity.Receivable, entity.FinancialOpen, "40.00"),
		mov(entity.Receivable, entity.FinancialVoid, "3.00"),
		nil,
	})

	assert.Equal(t, 2, s.Payables.Open.Count)
	assert.Equal(t, "15.50", money.Format(s.Payables.Open.Amount))
	assert.Equal(t, 1, s.Payables.Paid.Count)
	assert.Equal(t, 0, s.Payables.Void.Count)
	assert.Equal(t, "0.00", money.Format(s.Payables.Void.Amount))
	assert.Equal(t, 1, s.Receivables.Open.Count)
	assert.Equal(t, 1, s.Receivables.Void.Count)
	assert.Equal(t, "24.50", money.Format(s.NetOpen))
}

func TestBuildSummary_NetOpenPuedeSerNegativo(t *testing.T) {
	s := finance.BuildSummary([]*entity.FinancialMovement{
		mov(entity.Payable, entity.FinancialOpen, "100.00"),
		mov(entity.Receivable, entity.FinancialOpen, "30.00"),
	})
	assert.Equal(t, "-70.00", money.Format(s.NetOpen))
}

func TestBuildSummary_MontosNegativosSeRecortan(t *testing.T) {
	s := finance.BuildSummary([]*entity.FinancialMovement{
		mov(entity.Receivable, entity.FinancialOpen, "-9.00"),
		mov(entity.Receivable, entity.FinancialOpen, "1.00"),
	})
	assert.Equal(t, 2, s.Receivables.Open.Count)
	assert.Equal(t, "1.00", money.Format(s.Receivables.Open.Amount))
}

func TestBuildSummary_Vacio(t *testing.T) {
	s := finance.BuildSummary(nil)
	assert.Equal(t, "0.00", money.Format(s.NetOpen))
	assert.Zero(t, s.Payables.Open.Count)
}
