package ports

import (
	"errors"

	"github.com/jhoicas/erp-core/internal/domain"
)

// TransitionRecorder puerto de salida para contar transiciones de estado de negocio.
// El adaptador de Prometheus lo implementa; los tests usan NopRecorder.
type TransitionRecorder interface {
	// Transition registra una transición aplicada (entity: purchase_order, sales_order,
	// financial_movement, stock_movement; action: confirm, receive, cancel, pay, void, in, out...).
	Transition(entity, action string)
	// Rejected registra una transición rechazada por reglas de negocio.
	Rejected(entity, action, reason string)
}

// NopRecorder descarta todo.
type NopRecorder struct{}

func (NopRecorder) Transition(string, string)       {}
func (NopRecorder) Rejected(string, string, string) {}

// RejectReason etiqueta corta del tipo de rechazo para métricas y logs.
func RejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidInput):
		return "validation"
	default:
		return "error"
	}
}

// IsBusinessError true si err es un rechazo de negocio esperado (no una falla de infraestructura).
func IsBusinessError(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound)
}
