package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/money"
)

// SalesStatus estado de la orden de venta.
type SalesStatus string

const (
	SalesDraft     SalesStatus = "DRAFT"
	SalesConfirmed SalesStatus = "CONFIRMED"
	SalesCancelled SalesStatus = "CANCELLED" // terminal
)

func (s SalesStatus) Valid() bool {
	return s == SalesDraft || s == SalesConfirmed || s == SalesCancelled
}

// MaxReasonLength largo máximo de cancel_reason y de las notas derivadas.
const MaxReasonLength = 255

// SalesOrder orden de venta. CONFIRMED descuenta stock y genera la cuenta por cobrar;
// CANCELLED desde CONFIRMED repone el stock y anula la cuenta por cobrar.
type SalesOrder struct {
	ID           string
	CustomerName string
	CustomerDoc  string
	Note         string
	Status       SalesStatus
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ConfirmedBy  string
	ConfirmedAt  *time.Time
	CancelledBy  string
	CancelledAt  *time.Time
	CancelReason string
	Lines        []SalesOrderLine
}

// SalesOrderLine línea única por (orden, producto) con precio tomado al agregarla.
type SalesOrderLine struct {
	ID           string
	SalesOrderID string
	ProductID    string
	Quantity     int
	UnitPrice    decimal.Decimal
}

func (l SalesOrderLine) LineTotal() decimal.Decimal {
	return money.LineTotal(l.Quantity, l.UnitPrice)
}

// Total Σ(quantity × unit_price) a 2 decimales.
func (o *SalesOrder) Total() decimal.Decimal {
	totals := make([]decimal.Decimal, 0, len(o.Lines))
	for _, ln := range o.Lines {
		totals = append(totals, ln.LineTotal())
	}
	return money.Sum(totals...)
}

func (o *SalesOrder) LineChecks() []LineCheck {
	out := make([]LineCheck, 0, len(o.Lines))
	for _, ln := range o.Lines {
		out = append(out, LineCheck{ProductID: ln.ProductID, Quantity: ln.Quantity, Unit: ln.UnitPrice})
	}
	return out
}

func (o *SalesOrder) FindLine(productID string) *SalesOrderLine {
	for i := range o.Lines {
		if o.Lines[i].ProductID == productID {
			return &o.Lines[i]
		}
	}
	return nil
}

func (o *SalesOrder) transition(action string, allowed ...SalesStatus) *domain.TransitionError {
	names := make([]string, 0, len(allowed))
	for _, s := range allowed {
		names = append(names, string(s))
	}
	te := &domain.TransitionError{Entity: "orden de venta", ID: o.ID, Action: action, Current: string(o.Status), Allowed: names}
	if o.Status == SalesCancelled {
		te.Kind = domain.ErrAlreadyCancelled
	}
	return te
}

func (o *SalesOrder) EnsureDraft() error {
	if o.Status != SalesDraft {
		return o.transition("modificar líneas", SalesDraft)
	}
	return nil
}

// CheckConfirm pasada de verificación previa a confirmar: estado, líneas y stock
// disponible en products (ya bloqueados). No modifica nada.
func (o *SalesOrder) CheckConfirm(actor string, products map[string]*Product) error {
	if o.Status != SalesDraft {
		return o.transition("confirmar", SalesDraft)
	}
	if strings.TrimSpace(actor) == "" {
		return domain.Invalid("actor", "se requiere el usuario que confirma")
	}
	checks := o.LineChecks()
	if err := ValidateOrderLines(checks, "unit_price", products).Err("no se puede confirmar la venta", nil); err != nil {
		return err
	}
	required := RequiredByProduct(checks)
	for _, id := range ProductIDs(checks) {
		p := products[id]
		if p.Stock < required[id] {
			return &domain.InsufficientStockError{ProductID: p.ID, SKU: p.SKU, Available: p.Stock, Required: required[id]}
		}
	}
	return nil
}

// MarkConfirmed DRAFT → CONFIRMED; llamar después de CheckConfirm y de registrar las salidas.
func (o *SalesOrder) MarkConfirmed(actor string, at time.Time) {
	o.Status = SalesConfirmed
	o.ConfirmedBy = actor
	o.ConfirmedAt = &at
	o.UpdatedAt = at
}

// Cancel DRAFT|CONFIRMED → CANCELLED. Devuelve true si venía de CONFIRMED
// (el servicio debe reponer stock y anular la cuenta por cobrar).
func (o *SalesOrder) Cancel(actor, reason string, at time.Time) (bool, error) {
	if o.Status != SalesDraft && o.Status != SalesConfirmed {
		return false, o.transition("cancelar", SalesDraft, SalesConfirmed)
	}
	wasConfirmed := o.Status == SalesConfirmed
	if wasConfirmed && strings.TrimSpace(actor) == "" {
		return false, domain.Invalid("actor", "Para cancelar una venta CONFIRMED se requiere el usuario")
	}
	o.Status = SalesCancelled
	o.CancelledBy = actor
	o.CancelledAt = &at
	o.CancelReason = Truncate(strings.TrimSpace(reason), MaxReasonLength)
	o.UpdatedAt = at
	return wasConfirmed, nil
}

// ValidateSalesOrder coherencia antes de persistir. prev es nil en creación.
func ValidateSalesOrder(next, prev *SalesOrder) domain.FieldErrors {
	var fe domain.FieldErrors
	if strings.TrimSpace(next.CustomerName) == "" {
		fe.Add("customer_name", "customer_name es requerido")
	}
	if len([]rune(next.CustomerName)) > 255 {
		fe.Add("customer_name", "customer_name admite hasta 255 caracteres")
	}
	if len([]rune(next.CustomerDoc)) > 50 {
		fe.Add("customer_doc", "customer_doc admite hasta 50 caracteres")
	}
	if len([]rune(next.CancelReason)) > MaxReasonLength {
		fe.Add("cancel_reason", "cancel_reason admite hasta %d caracteres", MaxReasonLength)
	}
	if !next.Status.Valid() {
		fe.Add("status", "status inválido: %q", next.Status)
		return fe
	}
	if next.Status == SalesDraft && next.ConfirmedAt != nil {
		fe.Add("confirmed_at", "una venta DRAFT no puede tener datos de confirmación")
	}
	if next.Status == SalesConfirmed && (next.ConfirmedBy == "" || next.ConfirmedAt == nil) {
		fe.Add("confirmed_at", "una venta CONFIRMED debe tener confirmed_by y confirmed_at")
	}
	if next.Status == SalesCancelled && next.CancelledAt == nil {
		fe.Add("cancelled_at", "una venta CANCELLED debe tener cancelled_at")
	}
	if next.Status != SalesCancelled && (next.CancelledAt != nil || next.CancelledBy != "") {
		fe.Add("cancelled_at", "cancelled_by/cancelled_at solo pueden existir si la venta está CANCELLED")
	}
	if prev == nil {
		if next.Status != SalesDraft {
			fe.Add("status", "una venta nueva empieza en DRAFT")
		}
	} else if prev.Status == SalesCancelled && next.Status != SalesCancelled {
		fe.Add("status", "No se puede cambiar el status de una venta CANCELLED.")
	}
	return fe
}

// Truncate recorta s a n runas.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
