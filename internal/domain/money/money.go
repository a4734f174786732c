// Package money normaliza montos a 2 decimales.
//
// Dos familias: Normalize/NormalizeNonNegative nunca fallan
// (agregaciones y resúmenes), Require/RequirePositive/Parse devuelven ValidationError
// (mutaciones de negocio).
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/domain"
)

// Places decimales de todo monto persistido.
const Places = 2

// Zero 0.00.
var Zero = decimal.New(0, -Places)

// Máximos representables en NUMERIC(12,2) (precios y costos unitarios) y NUMERIC(14,2) (montos del ledger).
var (
	MaxUnit   = decimal.RequireFromString("9999999999.99")
	MaxAmount = decimal.RequireFromString("999999999999.99")
)

// Exceeds true si d redondeado supera max.
func Exceeds(d, max decimal.Decimal) bool {
	return Round(d).GreaterThan(max)
}

// Round redondea a 2 decimales, mitad hacia arriba (lejos de cero).
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Normalize convierte v a monto redondeado. nil o valores no parseables valen 0.00.
// Conserva el signo.
func Normalize(v any) decimal.Decimal {
	d, ok := toDecimal(v)
	if !ok {
		return Zero
	}
	return Round(d)
}

// NormalizeNonNegative igual que Normalize pero recorta negativos a 0.00.
// Sólo para agregaciones; las validaciones de negocio usan Require.
func NormalizeNonNegative(v any) decimal.Decimal {
	d := Normalize(v)
	if d.IsNegative() {
		return Zero
	}
	return d
}

// Require redondea d y falla si es negativo.
func Require(field string, d decimal.Decimal) (decimal.Decimal, error) {
	r := Round(d)
	if r.IsNegative() {
		return Zero, domain.Invalid(field, fmt.Sprintf("%s debe ser >= 0", field))
	}
	return r, nil
}

// RequirePositive redondea d y falla si no es > 0.
func RequirePositive(field string, d decimal.Decimal) (decimal.Decimal, error) {
	r := Round(d)
	if !r.IsPositive() {
		return Zero, domain.Invalid(field, fmt.Sprintf("%s debe ser > 0", field))
	}
	return r, nil
}

// Parse interpreta raw estrictamente (entrada de usuario). Vacío o inválido es error.
func Parse(field, raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Zero, domain.Invalid(field, fmt.Sprintf("%s es requerido", field))
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, domain.Invalid(field, fmt.Sprintf("Decimal inválido: %s", raw))
	}
	return Round(d), nil
}

// LineTotal quantity × unit redondeado.
func LineTotal(quantity int, unit decimal.Decimal) decimal.Decimal {
	return Round(unit.Mul(decimal.NewFromInt(int64(quantity))))
}

// Sum suma y redondea el resultado.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return Round(total)
}

// Format representación fija "0.00".
func Format(d decimal.Decimal) string {
	return Round(d).StringFixed(Places)
}

// Equal compara montos ya redondeados.
func Equal(a, b decimal.Decimal) bool {
	return Round(a).Equal(Round(b))
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return x, true
	case *decimal.Decimal:
		if x == nil {
			return decimal.Zero, false
		}
		return *x, true
	case decimal.NullDecimal:
		return x.Decimal, x.Valid
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(x))
		return d, err == nil
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int32:
		return decimal.NewFromInt32(x), true
	case int64:
		return decimal.NewFromInt(x), true
	case float32:
		return decimal.NewFromFloat32(x), true
	case float64:
		return decimal.NewFromFloat(x), true
	case fmt.Stringer:
		d, err := decimal.NewFromString(strings.TrimSpace(x.String()))
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}
