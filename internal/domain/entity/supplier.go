package entity

import (
	"strings"
	"time"

	"github.com/jhoicas/erp-core/internal/domain"
)

// Supplier proveedor de órdenes de compra.
type Supplier struct {
	ID        string
	Name      string
	TaxID     string
	Email     string
	Phone     string
	Address   string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func ValidateSupplier(next *Supplier) domain.FieldErrors {
	var fe domain.FieldErrors
	if strings.TrimSpace(next.Name) == "" {
		fe.Add("name", "name es requerido")
	}
	if len(next.Name) > 180 {
		fe.Add("name", "name admite hasta 180 caracteres")
	}
	return fe
}
