package purchasing

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

var listOrdering = []string{"created_at", "id", "status"}

// ListFilter filtros crudos del listado.
type ListFilter struct {
	Status   string
	From     string
	To       string
	Page     string
	PageSize string
	Ordering string
}

// Get orden con líneas.
func (s *Service) Get(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return loadOrder(ctx, s.tx.Reader(), id)
}

// List órdenes paginadas, por defecto -created_at.
func (s *Service) List(ctx context.Context, f ListFilter) (*repository.Page[entity.PurchaseOrder], error) {
	var rf repository.OrderFilter
	if v := strings.ToUpper(strings.TrimSpace(f.Status)); v != "" {
		if !entity.PurchaseStatus(v).Valid() {
			return nil, domain.Invalid("status", "status inválido. Permitidos: DRAFT, CONFIRMED, RECEIVED, CANCELLED")
		}
		rf.Status = v
	}
	var err error
	if rf.Range, err = repository.ParseTimeRange(f.From, f.To); err != nil {
		return nil, err
	}
	if rf.Page, err = repository.ParsePage(f.Page, f.PageSize); err != nil {
		return nil, err
	}
	if rf.Ordering, err = repository.ParseOrdering(f.Ordering, listOrdering, "-created_at"); err != nil {
		return nil, err
	}
	page, err := s.tx.Reader().PurchaseOrders().List(ctx, rf)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	return page, nil
}
