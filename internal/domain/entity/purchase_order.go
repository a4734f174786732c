package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/money"
)

// PurchaseStatus estado de la orden de compra.
type PurchaseStatus string

const (
	PurchaseDraft     PurchaseStatus = "DRAFT"
	PurchaseConfirmed PurchaseStatus = "CONFIRMED"
	PurchaseReceived  PurchaseStatus = "RECEIVED"  // terminal
	PurchaseCancelled PurchaseStatus = "CANCELLED" // terminal
)

func (s PurchaseStatus) Valid() bool {
	switch s {
	case PurchaseDraft, PurchaseConfirmed, PurchaseReceived, PurchaseCancelled:
		return true
	}
	return false
}

func (s PurchaseStatus) Terminal() bool {
	return s == PurchaseReceived || s == PurchaseCancelled
}

// PurchaseOrder orden de compra a proveedor.
// Las líneas sólo se editan en DRAFT; RECEIVED genera entradas de stock y la cuenta por pagar.
type PurchaseOrder struct {
	ID              string
	SupplierID      string
	SupplierInvoice string
	Note            string
	Status          PurchaseStatus
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ConfirmedBy     string
	ConfirmedAt     *time.Time
	ReceivedBy      string
	ReceivedAt      *time.Time
	CancelledBy     string
	CancelledAt     *time.Time
	Lines           []PurchaseOrderLine
}

// PurchaseOrderLine línea con costo unitario tomado al agregarla.
type PurchaseOrderLine struct {
	ID              string
	PurchaseOrderID string
	ProductID       string
	Quantity        int
	UnitCost        decimal.Decimal
}

// LineTotal quantity × unit_cost.
func (l PurchaseOrderLine) LineTotal() decimal.Decimal {
	return money.LineTotal(l.Quantity, l.UnitCost)
}

// Total Σ(quantity × unit_cost) a 2 decimales.
func (o *PurchaseOrder) Total() decimal.Decimal {
	totals := make([]decimal.Decimal, 0, len(o.Lines))
	for _, ln := range o.Lines {
		totals = append(totals, ln.LineTotal())
	}
	return money.Sum(totals...)
}

// LineChecks vista de las líneas para la validación compartida.
func (o *PurchaseOrder) LineChecks() []LineCheck {
	out := make([]LineCheck, 0, len(o.Lines))
	for _, ln := range o.Lines {
		out = append(out, LineCheck{ProductID: ln.ProductID, Quantity: ln.Quantity, Unit: ln.UnitCost})
	}
	return out
}

// FindLine línea por producto (las líneas son únicas por producto).
func (o *PurchaseOrder) FindLine(productID string) *PurchaseOrderLine {
	for i := range o.Lines {
		if o.Lines[i].ProductID == productID {
			return &o.Lines[i]
		}
	}
	return nil
}

func (o *PurchaseOrder) transition(action string, allowed ...PurchaseStatus) *domain.TransitionError {
	names := make([]string, 0, len(allowed))
	for _, s := range allowed {
		names = append(names, string(s))
	}
	te := &domain.TransitionError{Entity: "orden de compra", ID: o.ID, Action: action, Current: string(o.Status), Allowed: names}
	if o.Status == PurchaseCancelled {
		te.Kind = domain.ErrAlreadyCancelled
	}
	return te
}

// EnsureDraft falla si las líneas no pueden editarse.
func (o *PurchaseOrder) EnsureDraft() error {
	if o.Status != PurchaseDraft {
		return o.transition("modificar líneas", PurchaseDraft)
	}
	return nil
}

// Confirm DRAFT → CONFIRMED. No toca stock ni finanzas.
func (o *PurchaseOrder) Confirm(actor string, at time.Time, products map[string]*Product) error {
	if o.Status != PurchaseDraft {
		return o.transition("confirmar", PurchaseDraft)
	}
	if strings.TrimSpace(actor) == "" {
		return domain.Invalid("actor", "se requiere el usuario que confirma")
	}
	if err := ValidateOrderLines(o.LineChecks(), "unit_cost", products).Err("no se puede confirmar la orden de compra", nil); err != nil {
		return err
	}
	o.Status = PurchaseConfirmed
	o.ConfirmedBy = actor
	o.ConfirmedAt = &at
	o.ReceivedBy = ""
	o.ReceivedAt = nil
	o.UpdatedAt = at
	return nil
}

// Receive CONFIRMED → RECEIVED. Revalida líneas; las entradas de stock y la
// cuenta por pagar las escribe el servicio en la misma transacción.
func (o *PurchaseOrder) Receive(actor string, at time.Time, products map[string]*Product) error {
	if o.Status != PurchaseConfirmed {
		return o.transition("recibir", PurchaseConfirmed)
	}
	if strings.TrimSpace(actor) == "" {
		return domain.Invalid("actor", "se requiere el usuario que recibe")
	}
	if err := ValidateOrderLines(o.LineChecks(), "unit_cost", products).Err("no se puede recibir la orden de compra", nil); err != nil {
		return err
	}
	o.Status = PurchaseReceived
	o.ReceivedBy = actor
	o.ReceivedAt = &at
	if o.ConfirmedBy == "" {
		o.ConfirmedBy = actor
	}
	if o.ConfirmedAt == nil {
		o.ConfirmedAt = &at
	}
	o.UpdatedAt = at
	return nil
}

// Cancel DRAFT|CONFIRMED → CANCELLED. Nada que revertir: CONFIRMED no tocó stock ni finanzas.
func (o *PurchaseOrder) Cancel(actor string, at time.Time) error {
	if o.Status != PurchaseDraft && o.Status != PurchaseConfirmed {
		return o.transition("cancelar", PurchaseDraft, PurchaseConfirmed)
	}
	o.Status = PurchaseCancelled
	o.CancelledBy = actor
	o.CancelledAt = &at
	o.ReceivedBy = ""
	o.ReceivedAt = nil
	o.UpdatedAt = at
	return nil
}

// ValidatePurchaseOrder coherencia de estado y auditoría antes de persistir. prev es nil en creación.
func ValidatePurchaseOrder(next, prev *PurchaseOrder) domain.FieldErrors {
	var fe domain.FieldErrors
	if next.SupplierID == "" {
		fe.Add("supplier_id", "supplier_id es requerido")
	}
	if len([]rune(next.SupplierInvoice)) > 80 {
		fe.Add("supplier_invoice", "supplier_invoice admite hasta 80 caracteres")
	}
	if !next.Status.Valid() {
		fe.Add("status", "status inválido: %q", next.Status)
		return fe
	}
	confirmed := next.ConfirmedBy != "" && next.ConfirmedAt != nil
	received := next.ReceivedBy != "" || next.ReceivedAt != nil
	switch next.Status {
	case PurchaseDraft:
		if next.ConfirmedBy != "" || next.ConfirmedAt != nil {
			fe.Add("confirmed_at", "una orden DRAFT no puede tener datos de confirmación")
		}
	case PurchaseConfirmed:
		if !confirmed {
			fe.Add("confirmed_at", "Si la orden está CONFIRMED/RECEIVED debe tener confirmed_by y confirmed_at.")
		}
	case PurchaseReceived:
		if !confirmed {
			fe.Add("confirmed_at", "Si la orden está CONFIRMED/RECEIVED debe tener confirmed_by y confirmed_at.")
		}
		if next.ReceivedBy == "" || next.ReceivedAt == nil {
			fe.Add("received_at", "Si la orden está RECEIVED debe tener received_by y received_at.")
		}
	}
	if next.Status != PurchaseReceived && received {
		fe.Add("received_at", "received_by/received_at solo pueden existir si la orden está en RECEIVED.")
	}
	if prev == nil {
		if next.Status != PurchaseDraft {
			fe.Add("status", "una orden nueva empieza en DRAFT")
		}
	} else if prev.Status.Terminal() && next.Status != prev.Status {
		fe.Add("status", "No se puede cambiar el status de una orden %s.", prev.Status)
	}
	return fe
}
