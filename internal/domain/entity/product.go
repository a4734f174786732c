package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/money"
)

// ProductStatus estado de catálogo del producto.
type ProductStatus string

const (
	ProductActive   ProductStatus = "ACTIVE"
	ProductInactive ProductStatus = "INACTIVE"
)

// Product producto del catálogo. Stock es el contador materializado que sólo
// modifica el ledger de movimientos (bajo lock); IsActive espeja Status.
type Product struct {
	ID           string
	SKU          string
	Name         string
	Description  string
	Stock        int
	PurchaseCost decimal.Decimal
	SalePrice    decimal.Decimal
	Status       ProductStatus
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Active true si el producto puede operarse.
func (p *Product) Active() bool {
	return p.Status == ProductActive && p.IsActive
}

// SetStatus cambia el estado manteniendo IsActive sincronizado.
func (p *Product) SetStatus(s ProductStatus) {
	p.Status = s
	p.IsActive = s == ProductActive
}

// ValidateProduct valida una escritura de catálogo. prev es nil en creación.
// El stock no se toca desde el catálogo.
func ValidateProduct(next, prev *Product) domain.FieldErrors {
	var fe domain.FieldErrors
	if strings.TrimSpace(next.SKU) == "" {
		fe.Add("sku", "sku es requerido")
	}
	if strings.TrimSpace(next.Name) == "" {
		fe.Add("name", "name es requerido")
	}
	if next.PurchaseCost.IsNegative() {
		fe.Add("purchase_cost", "purchase_cost debe ser >= 0")
	}
	if next.SalePrice.IsNegative() {
		fe.Add("sale_price", "sale_price debe ser >= 0")
	}
	if money.Exceeds(next.PurchaseCost, money.MaxUnit) {
		fe.Add("purchase_cost", "purchase_cost admite hasta %s", money.MaxUnit)
	}
	if money.Exceeds(next.SalePrice, money.MaxUnit) {
		fe.Add("sale_price", "sale_price admite hasta %s", money.MaxUnit)
	}
	switch next.Status {
	case ProductActive, ProductInactive:
		if next.IsActive != (next.Status == ProductActive) {
			fe.Add("is_active", "is_active debe coincidir con status")
		}
	default:
		fe.Add("status", "status inválido: %q", next.Status)
	}
	if next.Stock < 0 {
		fe.Add("stock", "stock no puede ser negativo")
	}
	if prev == nil {
		if next.Stock != 0 {
			fe.Add("stock", "el stock inicial es 0; usá movimientos de inventario")
		}
	} else if next.Stock != prev.Stock {
		fe.Add("stock", "el stock sólo cambia mediante movimientos de inventario")
	}
	return fe
}
