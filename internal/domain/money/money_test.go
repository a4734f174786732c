package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/money"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "0.00"},
		{"no parseable", "abc", "0.00"},
		{"mitad hacia arriba", "2.345", "2.35"},
		{"mitad negativa lejos de cero", "-2.345", "-2.35"},
		{"entero", 7, "7.00"},
		{"float", 1.005, "1.01"},
		{"decimal", decimal.RequireFromString("10.1"), "10.10"},
		{"puntero nil", (*decimal.Decimal)(nil), "0.00"},
		{"con espacios", " 3.999 ", "4.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, money.Format(money.Normalize(tt.in)))
		})
	}
}

func TestNormalizeNonNegative_RecortaNegativos(t *testing.T) {
	assert.Equal(t, "0.00", money.Format(money.NormalizeNonNegative("-5")))
	assert.Equal(t, "5.00", money.Format(money.NormalizeNonNegative("5")))
	assert.Equal(t, "0.00", money.Format(money.NormalizeNonNegative(nil)))
}

func TestRequire_NoRecortaSinoFalla(t *testing.T) {
	_, err := money.Require("amount", decimal.RequireFromString("-0.01"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "amount", ve.Fields[0].Field)

	got, err := money.Require("amount", decimal.RequireFromString("0.004"))
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestRequirePositive(t *testing.T) {
	_, err := money.RequirePositive("unit_cost", decimal.Zero)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = money.RequirePositive("unit_cost", decimal.RequireFromString("0.004"))
	require.ErrorIs(t, err, domain.ErrInvalidInput, "redondea antes de comparar")

	got, err := money.RequirePositive("unit_cost", decimal.RequireFromString("0.005"))
	require.NoError(t, err)
	assert.Equal(t, "0.01", money.Format(got))
}

func TestParse(t *testing.T) {
	got, err := money.Parse("unit_price", "12.345")
	require.NoError(t, err)
	assert.Equal(t, "12.35", money.Format(got))

	_, err = money.Parse("unit_price", "")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = money.Parse("unit_price", "doce")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLineTotalYSum(t *testing.T) {
	line := money.LineTotal(5, decimal.RequireFromString("2.00"))
	assert.Equal(t, "10.00", money.Format(line))

	total := money.Sum(line, money.LineTotal(3, decimal.RequireFromString("1.333")))
	assert.Equal(t, "14.00", money.Format(total))

	assert.True(t, money.Equal(decimal.RequireFromString("1.001"), decimal.RequireFromString("1.00")))
}

func TestExceeds(t *testing.T) {
	assert.False(t, money.Exceeds(money.MaxUnit, money.MaxUnit))
	assert.True(t, money.Exceeds(decimal.RequireFromString("9999999999.995"), money.MaxUnit), "se compara ya redondeado")
	assert.False(t, money.Exceeds(decimal.RequireFromString("9999999999.994"), money.MaxUnit))
	assert.True(t, money.Exceeds(decimal.RequireFromString("1000000000000"), money.MaxAmount))
}
