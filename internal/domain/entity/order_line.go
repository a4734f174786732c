package entity

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/money"
)

// LineCheck vista común de una línea de compra o venta.
type LineCheck struct {
	ProductID string
	Quantity  int
	Unit      decimal.Decimal // unit_cost o unit_price
}

// ValidateOrderLines reglas compartidas por confirmar/recibir compras y confirmar ventas:
// al menos una línea, cantidad > 0, precio unitario > 0 y producto existente y activo.
// El total no puede superar money.MaxAmount porque se registra en el ledger financiero.
func ValidateOrderLines(lines []LineCheck, unitField string, products map[string]*Product) domain.FieldErrors {
	var fe domain.FieldErrors
	if len(lines) == 0 {
		fe.Add("lines", "La orden no tiene líneas.")
		return fe
	}
	total := decimal.Zero
	for i, ln := range lines {
		total = total.Add(money.LineTotal(ln.Quantity, ln.Unit))
		prefix := fmt.Sprintf("lines[%d]", i)
		p := products[ln.ProductID]
		label := ln.ProductID
		if p != nil {
			label = p.SKU
		}
		if ln.Quantity <= 0 {
			fe.Add(prefix+".quantity", "Cantidad inválida en la línea del producto '%s' (debe ser > 0).", label)
		}
		if _, err := money.RequirePositive(unitField, ln.Unit); err != nil {
			fe.Add(prefix+"."+unitField, "La línea del producto '%s' debe tener %s > 0 para calcular el monto.", label, unitField)
		}
		switch {
		case p == nil:
			fe.Add(prefix+".product_id", "Producto inexistente: %s", ln.ProductID)
		case !p.Active():
			fe.Add(prefix+".product_id", "El producto '%s' está inactivo. No se puede operar.", p.SKU)
		}
	}
	if money.Exceeds(total, money.MaxAmount) {
		fe.Add("total", "El total de la orden supera el máximo de %s.", money.MaxAmount)
	}
	return fe
}

// ValidateDraftLine valida el alta o edición de una línea en una orden DRAFT.
// El precio puede ser 0 en borrador; se exige > 0 al confirmar.
func ValidateDraftLine(quantity int, unit decimal.Decimal, unitField string, product *Product) domain.FieldErrors {
	var fe domain.FieldErrors
	if quantity <= 0 {
		fe.Add("quantity", "quantity debe ser > 0.")
	} else if quantity > MaxQuantity {
		fe.Add("quantity", "quantity admite hasta %d.", MaxQuantity)
	}
	if unit.IsNegative() {
		fe.Add(unitField, "%s debe ser >= 0.", unitField)
	} else if money.Exceeds(unit, money.MaxUnit) {
		fe.Add(unitField, "%s admite hasta %s.", unitField, money.MaxUnit)
	}
	if product == nil {
		fe.Add("product_id", "product_id es requerido")
	} else if !product.Active() {
		fe.Add("product_id", "El producto está inactivo.")
	}
	return fe
}

// RequiredByProduct agrupa cantidades por producto.
func RequiredByProduct(lines []LineCheck) map[string]int {
	out := make(map[string]int, len(lines))
	for _, ln := range lines {
		out[ln.ProductID] += ln.Quantity
	}
	return out
}

// ProductIDs ids distintos referenciados por las líneas.
func ProductIDs(lines []LineCheck) []string {
	seen := make(map[string]struct{}, len(lines))
	ids := make([]string, 0, len(lines))
	for _, ln := range lines {
		if _, ok := seen[ln.ProductID]; ok {
			continue
		}
		seen[ln.ProductID] = struct{}{}
		ids = append(ids, ln.ProductID)
	}
	return ids
}
