package finance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	domainfinance "github.com/jhoicas/erp-core/internal/domain/finance"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

var listOrdering = []string{"created_at", "paid_at", "amount", "id"}

// ListFilter filtros crudos del listado (querystring).
type ListFilter struct {
	Status       string
	MovementType string
	SourceType   string
	From         string
	To           string
	Page         string
	PageSize     string
	Ordering     string
}

// Report resumen financiero con los filtros aplicados.
type Report struct {
	AsOf    time.Time
	Filter  repository.FinancialMovementFilter
	Summary entity.FinancialSummary
}

// Get movimiento por id.
func (s *Service) Get(ctx context.Context, id string) (*entity.FinancialMovement, error) {
	m, err := s.tx.Reader().FinancialMovements().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get financial movement: %w", err)
	}
	if m == nil {
		return nil, domain.NotFound("movimiento financiero", id)
	}
	return m, nil
}

// List listado paginado. Orden por defecto -created_at; fuera de la lista blanca es ValidationError.
func (s *Service) List(ctx context.Context, f ListFilter) (*repository.Page[entity.FinancialMovement], error) {
	rf, err := parseFilter(f.Status, f.MovementType, f.SourceType, f.From, f.To)
	if err != nil {
		return nil, err
	}
	if rf.Page, err = repository.ParsePage(f.Page, f.PageSize); err != nil {
		return nil, err
	}
	if rf.Ordering, err = repository.ParseOrdering(f.Ordering, listOrdering, "-created_at"); err != nil {
		return nil, err
	}
	page, err := s.tx.Reader().FinancialMovements().List(ctx, rf)
	if err != nil {
		return nil, fmt.Errorf("list financial movements: %w", err)
	}
	return page, nil
}

// Summary agrega los movimientos filtrados en buckets tipo × estado.
func (s *Service) Summary(ctx context.Context, f ListFilter) (*Report, error) {
	rf, err := parseFilter(f.Status, f.MovementType, f.SourceType, f.From, f.To)
	if err != nil {
		return nil, err
	}
	items, err := s.tx.Reader().FinancialMovements().ListAll(ctx, rf)
	if err != nil {
		return nil, fmt.Errorf("list financial movements: %w", err)
	}
	return &Report{AsOf: s.now(), Filter: rf, Summary: domainfinance.BuildSummary(items)}, nil
}

func parseFilter(status, movementType, sourceType, from, to string) (repository.FinancialMovementFilter, error) {
	var rf repository.FinancialMovementFilter
	if v := upper(status); v != "" {
		rf.Status = entity.FinancialStatus(v)
		if !rf.Status.Valid() {
			return rf, domain.Invalid("status", "status inválido. Permitidos: OPEN, PAID, VOID")
		}
	}
	if v := upper(movementType); v != "" {
		rf.Type = entity.FinancialType(v)
		if !rf.Type.Valid() {
			return rf, domain.Invalid("movement_type", "movement_type inválido. Permitidos: PAYABLE, RECEIVABLE")
		}
	}
	if v := upper(sourceType); v != "" {
		rf.SourceType = entity.SourceType(v)
		if !rf.SourceType.Valid() {
			return rf, domain.Invalid("source_type", "source_type inválido. Permitidos: PURCHASE, SALE")
		}
	}
	var err error
	rf.Range, err = repository.ParseTimeRange(from, to)
	return rf, err
}

func upper(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }
