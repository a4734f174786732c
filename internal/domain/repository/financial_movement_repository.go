package repository

import (
	"context"

	"github.com/jhoicas/erp-core/internal/domain/entity"
)

// FinancialMovementFilter filtros de listado y resumen financiero.
type FinancialMovementFilter struct {
	Status     entity.FinancialStatus
	Type       entity.FinancialType
	SourceType entity.SourceType
	Range      TimeRange // sobre created_at
	Page       PageRequest
	Ordering   Ordering
}

// FinancialMovementRepository puerto de persistencia del ledger financiero.
type FinancialMovementRepository interface {
	// GetOrCreateForUpdate inserta m si no existe otro con la misma terna
	// (tipo, origen, id de origen) y devuelve la fila vigente bloqueada.
	// created indica si la fila devuelta es la recién insertada.
	GetOrCreateForUpdate(ctx context.Context, m *entity.FinancialMovement) (current *entity.FinancialMovement, created bool, err error)
	// GetBySourceForUpdate (nil, nil) si no existe.
	GetBySourceForUpdate(ctx context.Context, t entity.FinancialType, st entity.SourceType, sourceID string) (*entity.FinancialMovement, error)
	GetByID(ctx context.Context, id string) (*entity.FinancialMovement, error)
	// Update escribe amount, status, notes, paid_at y paid_by.
	Update(ctx context.Context, m *entity.FinancialMovement) error
	List(ctx context.Context, f FinancialMovementFilter) (*Page[entity.FinancialMovement], error)
	// ListAll sin paginar, para agregaciones.
	ListAll(ctx context.Context, f FinancialMovementFilter) ([]*entity.FinancialMovement, error)
}
