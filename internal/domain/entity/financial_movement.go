package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/money"
)

type FinancialType string

const (
	Payable    FinancialType = "PAYABLE"
	Receivable FinancialType = "RECEIVABLE"
)

type SourceType string

const (
	SourcePurchase SourceType = "PURCHASE"
	SourceSale     SourceType = "SALE"
)

type FinancialStatus string

const (
	FinancialOpen FinancialStatus = "OPEN"
	FinancialPaid FinancialStatus = "PAID" // terminal
	FinancialVoid FinancialStatus = "VOID" // terminal
)

func (t FinancialType) Valid() bool   { return t == Payable || t == Receivable }
func (s SourceType) Valid() bool      { return s == SourcePurchase || s == SourceSale }
func (s FinancialStatus) Valid() bool { return s == FinancialOpen || s == FinancialPaid || s == FinancialVoid }

// Closed PAID o VOID.
func (s FinancialStatus) Closed() bool { return s == FinancialPaid || s == FinancialVoid }

// FinancialMovement cuenta por pagar o por cobrar, única por (tipo, origen, id de origen).
// PaidAt está definido si y sólo si Status es PAID.
type FinancialMovement struct {
	ID         string
	Type       FinancialType
	SourceType SourceType
	SourceID   string
	Amount     decimal.Decimal
	Status     FinancialStatus
	Notes      string
	CreatedAt  time.Time
	PaidAt     *time.Time
	PaidBy     string
}

// Clone copia independiente (para comparar contra prev).
func (m *FinancialMovement) Clone() *FinancialMovement {
	c := *m
	if m.PaidAt != nil {
		t := *m.PaidAt
		c.PaidAt = &t
	}
	return &c
}

// Pay OPEN → PAID.
func (m *FinancialMovement) Pay(actor string, at time.Time) error {
	switch m.Status {
	case FinancialVoid:
		return &domain.ConflictError{Entity: "movimiento financiero", ID: m.ID, Current: string(m.Status),
			Message: "No se puede pagar un movimiento VOID.", Kind: domain.ErrCannotPayVoided}
	case FinancialPaid:
		return &domain.ConflictError{Entity: "movimiento financiero", ID: m.ID, Current: string(m.Status),
			Message: "El movimiento ya está PAID.", Kind: domain.ErrAlreadyPaid}
	}
	if !money.Round(m.Amount).IsPositive() {
		return &domain.ValidationError{
			Message: "No se puede pagar un movimiento con amount <= 0.",
			Fields:  domain.FieldErrors{{Field: "amount", Message: "amount debe ser > 0 para pagar"}},
			Kind:    domain.ErrZeroAmountNotPayable,
		}
	}
	m.Status = FinancialPaid
	m.PaidAt = &at
	m.PaidBy = actor
	return nil
}

// Void OPEN → VOID. Devuelve false sin error si ya estaba VOID.
func (m *FinancialMovement) Void(reason string) (bool, error) {
	switch m.Status {
	case FinancialPaid:
		return false, &domain.ConflictError{Entity: "movimiento financiero", ID: m.ID, Current: string(m.Status),
			Message: "No se puede anular un movimiento ya pagado.", Kind: domain.ErrCannotVoidPaid}
	case FinancialVoid:
		return false, nil
	}
	m.Status = FinancialVoid
	m.PaidAt = nil
	m.PaidBy = ""
	if reason = strings.TrimSpace(reason); reason != "" {
		notes := "Anulado: " + reason
		if m.Notes != "" {
			notes = m.Notes + " | " + notes
		}
		m.Notes = Truncate(notes, MaxReasonLength)
	}
	return true, nil
}

// Reprice actualiza el monto sólo si está OPEN y difiere. Devuelve true si cambió.
func (m *FinancialMovement) Reprice(amount decimal.Decimal) bool {
	amount = money.Round(amount)
	if m.Status != FinancialOpen || money.Equal(m.Amount, amount) {
		return false
	}
	m.Amount = amount
	return true
}

// ValidateFinancialMovement invariantes de cada escritura. prev es nil en creación.
func ValidateFinancialMovement(next, prev *FinancialMovement) domain.FieldErrors {
	var fe domain.FieldErrors
	if !next.Type.Valid() {
		fe.Add("movement_type", "movement_type inválido: %q", next.Type)
	}
	if !next.SourceType.Valid() {
		fe.Add("source_type", "source_type inválido: %q", next.SourceType)
	}
	if next.SourceID == "" {
		fe.Add("source_id", "source_id es requerido")
	}
	if next.Amount.IsNegative() {
		fe.Add("amount", "amount debe ser >= 0")
	}
	if !next.Amount.Equal(money.Round(next.Amount)) {
		fe.Add("amount", "amount admite 2 decimales")
	}
	if money.Exceeds(next.Amount, money.MaxAmount) {
		fe.Add("amount", "amount admite hasta %s", money.MaxAmount)
	}
	if len([]rune(next.Notes)) > MaxReasonLength {
		fe.Add("notes", "notes admite hasta %d caracteres", MaxReasonLength)
	}
	switch next.Status {
	case FinancialPaid:
		if next.PaidAt == nil {
			fe.Add("paid_at", "un movimiento PAID debe tener paid_at")
		}
		if !next.Amount.IsPositive() {
			fe.Add("amount", "No se puede marcar como PAID un movimiento con amount <= 0.")
		}
	case FinancialOpen, FinancialVoid:
		if next.PaidAt != nil {
			fe.Add("paid_at", "Un movimiento %s no puede tener paid_at.", next.Status)
		}
	default:
		fe.Add("status", "status inválido: %q", next.Status)
	}

	if prev == nil {
		if next.Status != FinancialOpen {
			fe.Add("status", "un movimiento nuevo empieza en OPEN")
		}
		return fe
	}
	if prev.Status.Closed() {
		if next.Status != prev.Status {
			fe.Add("status", "No se puede cambiar el status de un movimiento cerrado.")
		}
		const msg = "No se puede modificar este campo en un movimiento cerrado (PAID/VOID)."
		if next.Type != prev.Type {
			fe.Add("movement_type", msg)
		}
		if next.SourceType != prev.SourceType {
			fe.Add("source_type", msg)
		}
		if next.SourceID != prev.SourceID {
			fe.Add("source_id", msg)
		}
		if !next.Amount.Equal(prev.Amount) {
			fe.Add("amount", msg)
		}
	}
	return fe
}

// FinancialMovementError convierte el resultado de ValidateFinancialMovement en error.
func FinancialMovementError(fe domain.FieldErrors, prev *FinancialMovement) error {
	if prev != nil && prev.Status.Closed() {
		return fe.Err("movimiento financiero cerrado", domain.ErrClosedMovement)
	}
	return fe.Err("movimiento financiero inválido", nil)
}

// SummaryBucket cantidad y monto de un grupo.
type SummaryBucket struct {
	Count  int
	Amount decimal.Decimal
}

// StatusBuckets grupos OPEN/PAID/VOID de un tipo.
type StatusBuckets struct {
	Open SummaryBucket
	Paid SummaryBucket
	Void SummaryBucket
}

// FinancialSummary resumen por tipo y estado; NetOpen = por cobrar abierto − por pagar abierto.
type FinancialSummary struct {
	Payables    StatusBuckets
	Receivables StatusBuckets
	NetOpen     decimal.Decimal
}
