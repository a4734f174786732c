package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")

	ErrInvalidTransition    = errors.New("transición de estado inválida")
	ErrAlreadyCancelled     = errors.New("la orden ya está cancelada")
	ErrAlreadyPaid          = errors.New("el movimiento ya está PAID")
	ErrCannotPayVoided      = errors.New("no se puede pagar un movimiento VOID")
	ErrZeroAmountNotPayable = errors.New("no se puede pagar un movimiento con amount <= 0")
	ErrCannotVoidPaid       = errors.New("no se puede anular un movimiento ya pagado")
	ErrImmutableMovement    = errors.New("no se permite editar un movimiento existente")
	ErrClosedMovement       = errors.New("movimiento financiero cerrado (PAID/VOID)")
)

// FieldError error asociado a un campo concreto.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors acumula errores de validación por campo.
type FieldErrors []FieldError

// Add agrega un error de campo.
func (fe *FieldErrors) Add(field, format string, args ...any) {
	*fe = append(*fe, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Err devuelve nil si no hay errores; si no, un *ValidationError con kind opcional.
func (fe FieldErrors) Err(message string, kind error) error {
	if len(fe) == 0 {
		return nil
	}
	return &ValidationError{Message: message, Fields: fe, Kind: kind}
}

// ValidationError entrada inválida o regla de negocio violada antes de escribir.
type ValidationError struct {
	Message string
	Fields  FieldErrors
	Kind    error // sentinel específico (ErrZeroAmountNotPayable, ErrImmutableMovement, ...)
}

// Invalid atajo para un ValidationError de un solo campo.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Message: message, Fields: FieldErrors{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	if e.Message == "" {
		return strings.Join(parts, "; ")
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func (e *ValidationError) Unwrap() []error {
	if e.Kind != nil {
		return []error{ErrInvalidInput, e.Kind}
	}
	return []error{ErrInvalidInput}
}

// InsufficientStockError una salida dejaría el stock negativo.
type InsufficientStockError struct {
	ProductID string
	SKU       string
	Available int
	Required  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Stock insuficiente para %s. Actual: %d. Intentaste egresar: %d.", e.SKU, e.Available, e.Required)
}

func (e *InsufficientStockError) Unwrap() []error {
	return []error{ErrInsufficientStock, ErrInvalidInput}
}

// ConflictError el registro ya está en un estado incompatible con la operación.
type ConflictError struct {
	Entity  string
	ID      string
	Current string
	Message string
	Kind    error
}

func (e *ConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s en estado %s", e.Entity, e.ID, e.Current)
}

func (e *ConflictError) Unwrap() []error {
	if e.Kind != nil {
		return []error{ErrConflict, e.Kind}
	}
	return []error{ErrConflict}
}

// TransitionError transición no permitida desde el estado actual.
// Es a la vez validación (nada se escribió) y conflicto con el estado.
type TransitionError struct {
	Entity  string
	ID      string
	Action  string
	Current string
	Allowed []string
	Kind    error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s %s: no se puede %s en estado %s (requiere %s)",
		e.Entity, e.ID, e.Action, e.Current, strings.Join(e.Allowed, " o "))
}

func (e *TransitionError) Unwrap() []error {
	errs := []error{ErrInvalidTransition, ErrConflict, ErrInvalidInput}
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	return errs
}

// NotFoundError el id referenciado no existe.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s no encontrado", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound atajo para *NotFoundError.
func NotFound(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// Tipos de violación de integridad reportados por el almacenamiento.
const (
	IntegrityUnique     = "unique"
	IntegrityCheck      = "check"
	IntegrityForeignKey = "foreign_key"
	IntegrityImmutable  = "immutable"
)

// IntegrityError violación de constraint traducida desde el almacenamiento.
type IntegrityError struct {
	Kind       string
	Constraint string
	Err        error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("violación de integridad (%s %s)", e.Kind, e.Constraint)
}

func (e *IntegrityError) Unwrap() []error {
	errs := []error{ErrInvalidInput}
	switch e.Kind {
	case IntegrityUnique:
		errs = append(errs, ErrDuplicate)
	case IntegrityImmutable:
		errs = append(errs, ErrImmutableMovement)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
