package entity

import (
	"fmt"
	"math"
	"time"

	"github.com/jhoicas/erp-core/internal/domain"
)

// MovementType dirección del movimiento de inventario.
type MovementType string

const (
	MovementIn  MovementType = "IN"  // entrada
	MovementOut MovementType = "OUT" // salida
)

func (t MovementType) Valid() bool {
	return t == MovementIn || t == MovementOut
}

// StockMovement registro inmutable del ledger de inventario.
// Las correcciones se hacen con un movimiento compensatorio.
type StockMovement struct {
	ID        string
	ProductID string
	Type      MovementType
	Quantity  int
	Note      string
	CreatedBy string
	CreatedAt time.Time
}

// MaxNoteLength largo máximo de Note.
const MaxNoteLength = 255

// MaxQuantity tope de cantidades y stock (columnas INTEGER).
const MaxQuantity = math.MaxInt32

// ValidateStockMovement valida una escritura. prev != nil significa edición, siempre rechazada.
func ValidateStockMovement(next, prev *StockMovement) domain.FieldErrors {
	var fe domain.FieldErrors
	if prev != nil {
		fe.Add("id", "No se permite editar un movimiento existente. Creá uno nuevo.")
		return fe
	}
	if next.ProductID == "" {
		fe.Add("product_id", "product_id es requerido")
	}
	if !next.Type.Valid() {
		fe.Add("movement_type", "movement_type debe ser IN u OUT")
	}
	if next.Quantity <= 0 {
		fe.Add("quantity", "quantity debe ser > 0")
	} else if next.Quantity > MaxQuantity {
		fe.Add("quantity", "quantity admite hasta %d", MaxQuantity)
	}
	if len([]rune(next.Note)) > MaxNoteLength {
		fe.Add("note", "note admite hasta %d caracteres", MaxNoteLength)
	}
	return fe
}

// StockMovementError convierte el resultado de ValidateStockMovement en error.
func StockMovementError(fe domain.FieldErrors, editing bool) error {
	if editing {
		return fe.Err("movimiento de inventario inmutable", domain.ErrImmutableMovement)
	}
	return fe.Err("movimiento de inventario inválido", nil)
}

// ApplyTo calcula el stock resultante de aplicar m sobre p y lo asigna.
// Una salida que deja stock negativo devuelve *InsufficientStockError sin modificar p;
// una entrada que supera MaxQuantity devuelve *ValidationError.
func (m *StockMovement) ApplyTo(p *Product) error {
	next := int64(p.Stock)
	switch m.Type {
	case MovementIn:
		next += int64(m.Quantity)
	case MovementOut:
		next -= int64(m.Quantity)
	}
	if next > MaxQuantity {
		return domain.Invalid("quantity", fmt.Sprintf("El stock de %s superaría el máximo de %d.", p.SKU, MaxQuantity))
	}
	if next < 0 {
		return &domain.InsufficientStockError{
			ProductID: p.ID,
			SKU:       p.SKU,
			Available: p.Stock,
			Required:  m.Quantity,
		}
	}
	p.Stock = int(next)
	return nil
}

// StockAudit compara el stock materializado contra la suma del ledger.
type StockAudit struct {
	ProductID  string
	SKU        string
	Stock      int
	TotalIn    int
	TotalOut   int
	Calculated int
	Drift      int
}

// InSync true si el contador coincide con el ledger.
func (a StockAudit) InSync() bool { return a.Drift == 0 }
