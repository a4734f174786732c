// Package sales máquina de estados de órdenes de venta:
// DRAFT → CONFIRMED, con CANCELLED desde DRAFT (liviano) o CONFIRMED (reversa completa).
package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/application/inventory"
	"github.com/jhoicas/erp-core/internal/application/ports"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/money"
	"github.com/jhoicas/erp-core/internal/domain/repository"
	"github.com/jhoicas/erp-core/pkg/logger"
)

// StockLedger movimientos de stock dentro de la transacción de la venta.
type StockLedger interface {
	ApplyInTx(ctx context.Context, st repository.Store, in inventory.RecordMovementInput) (*entity.StockMovement, error)
}

// ReceivableLedger cuenta por cobrar de la venta.
type ReceivableLedger interface {
	EnsureReceivable(ctx context.Context, st repository.Store, salesOrderID string, amount decimal.Decimal) (*entity.FinancialMovement, error)
	VoidReceivable(ctx context.Context, st repository.Store, salesOrderID, reason string) (*entity.FinancialMovement, error)
}

// Service casos de uso de órdenes de venta.
type Service struct {
	tx     repository.TxRunner
	stock  StockLedger
	ledger ReceivableLedger
	log    *logger.Logger
	rec    ports.TransitionRecorder
	now    func() time.Time
}

// NewService construye el servicio. rec puede ser nil.
func NewService(tx repository.TxRunner, stock StockLedger, ledger ReceivableLedger, log *logger.Logger, rec ports.TransitionRecorder) *Service {
	if rec == nil {
		rec = ports.NopRecorder{}
	}
	return &Service{
		tx:     tx,
		stock:  stock,
		ledger: ledger,
		log:    log.Named("sales"),
		rec:    rec,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock reemplaza el reloj (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateSalesOrderInput cabecera de una venta nueva.
type CreateSalesOrderInput struct {
	CustomerName string
	CustomerDoc  string
	Note         string
}

// Create crea la venta en DRAFT.
func (s *Service) Create(ctx context.Context, actor string, in CreateSalesOrderInput) (*entity.SalesOrder, error) {
	now := s.now()
	so := &entity.SalesOrder{
		ID:           uuid.New().String(),
		CustomerName: strings.TrimSpace(in.CustomerName),
		CustomerDoc:  strings.TrimSpace(in.CustomerDoc),
		Note:         strings.TrimSpace(in.Note),
		Status:       entity.SalesDraft,
		CreatedBy:    actor,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := entity.ValidateSalesOrder(so, nil).Err("venta inválida", nil); err != nil {
		return nil, err
	}
	err := s.tx.Run(ctx, repository.LockSet{}, func(ctx context.Context, st repository.Store) error {
		if err := st.SalesOrders().Create(ctx, so); err != nil {
			return fmt.Errorf("create sales order: %w", err)
		}
		return nil
	})
	if err != nil {
		s.fail("create", so.ID, err)
		return nil, err
	}
	s.rec.Transition("sales_order", "create")
	s.log.Info().Str("sales_order_id", so.ID).Str("customer", so.CustomerName).Str("actor", actor).Msg("venta creada")
	return so, nil
}

// Confirm DRAFT → CONFIRMED. Bloquea la venta y sus productos, verifica todo antes de escribir
// (stock agregado por producto) y luego registra salidas, estado y cuenta por cobrar.
func (s *Service) Confirm(ctx context.Context, id, actor string) (*entity.SalesOrder, error) {
	var out *entity.SalesOrder
	err := s.tx.Run(ctx, repository.LockSet{SalesOrders: []string{id}}, func(ctx context.Context, st repository.Store) error {
		so, err := loadOrder(ctx, st, id)
		if err != nil {
			return err
		}
		// sin líneas: falla la verificación sin bloquear nada más
		ids := entity.ProductIDs(so.LineChecks())
		if err := st.Lock(ctx, repository.LockSet{Products: ids}); err != nil {
			return err
		}
		products, err := st.Products().GetMany(ctx, ids)
		if err != nil {
			return fmt.Errorf("get products: %w", err)
		}
		if err := so.CheckConfirm(actor, products); err != nil {
			return err
		}

		note := entity.Truncate(fmt.Sprintf("Venta SO#%s - %s", so.ID, so.CustomerName), entity.MaxNoteLength)
		for _, ln := range so.Lines {
			if _, err := s.stock.ApplyInTx(ctx, st, inventory.RecordMovementInput{
				ProductID: ln.ProductID,
				Type:      entity.MovementOut,
				Quantity:  ln.Quantity,
				Note:      note,
				Actor:     actor,
			}); err != nil {
				return err
			}
		}

		prev := *so
		so.MarkConfirmed(actor, s.now())
		if err := entity.ValidateSalesOrder(so, &prev).Err("venta inválida", nil); err != nil {
			return err
		}
		if err := st.SalesOrders().Update(ctx, so); err != nil {
			return fmt.Errorf("update sales order: %w", err)
		}
		if _, err := s.ledger.EnsureReceivable(ctx, st, so.ID, so.Total()); err != nil {
			return err
		}
		out = so
		return nil
	})
	if err != nil {
		s.fail("confirm", id, err)
		return nil, err
	}
	s.done("confirm", out)
	return out, nil
}

// Cancel DRAFT|CONFIRMED → CANCELLED. Desde CONFIRMED exige actor, repone cada línea con
// una entrada y anula la cuenta por cobrar, todo en la misma transacción.
func (s *Service) Cancel(ctx context.Context, id, actor, reason string) (*entity.SalesOrder, error) {
	var out *entity.SalesOrder
	err := s.tx.Run(ctx, repository.LockSet{SalesOrders: []string{id}}, func(ctx context.Context, st repository.Store) error {
		so, err := loadOrder(ctx, st, id)
		if err != nil {
			return err
		}
		prev := *so
		wasConfirmed, err := so.Cancel(actor, reason, s.now())
		if err != nil {
			return err
		}
		if err := entity.ValidateSalesOrder(so, &prev).Err("venta inválida", nil); err != nil {
			return err
		}

		if wasConfirmed {
			ids := entity.ProductIDs(so.LineChecks())
			if err := st.Lock(ctx, repository.LockSet{Products: ids}); err != nil {
				return err
			}
			note := fmt.Sprintf("Cancelación SO#%s - %s", so.ID, so.CustomerName)
			if so.CancelReason != "" {
				note += " - " + so.CancelReason
			}
			note = entity.Truncate(note, entity.MaxNoteLength)
			for _, ln := range so.Lines {
				if _, err := s.stock.ApplyInTx(ctx, st, inventory.RecordMovementInput{
					ProductID: ln.ProductID,
					Type:      entity.MovementIn,
					Quantity:  ln.Quantity,
					Note:      note,
					Actor:     actor,
				}); err != nil {
					return err
				}
			}
		}

		if err := st.SalesOrders().Update(ctx, so); err != nil {
			return fmt.Errorf("update sales order: %w", err)
		}
		if wasConfirmed {
			if _, err := s.ledger.VoidReceivable(ctx, st, so.ID, so.CancelReason); err != nil {
				return err
			}
		}
		out = so
		return nil
	})
	if err != nil {
		s.fail("cancel", id, err)
		return nil, err
	}
	s.done("cancel", out)
	return out, nil
}

func loadOrder(ctx context.Context, st repository.Store, id string) (*entity.SalesOrder, error) {
	so, err := st.SalesOrders().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get sales order: %w", err)
	}
	if so == nil {
		return nil, domain.NotFound("orden de venta", id)
	}
	return so, nil
}

func (s *Service) done(action string, so *entity.SalesOrder) {
	s.rec.Transition("sales_order", action)
	s.log.Info().
		Str("sales_order_id", so.ID).
		Str("action", action).
		Str("status", string(so.Status)).
		Str("total", money.Format(so.Total())).
		Msg("venta actualizada")
}

func (s *Service) fail(action, id string, err error) {
	if ports.IsBusinessError(err) {
		s.rec.Rejected("sales_order", action, ports.RejectReason(err))
		s.log.Debug().Err(err).Str("sales_order_id", id).Str("action", action).Msg("operación rechazada")
		return
	}
	s.log.Error().Err(err).Str("sales_order_id", id).Str("action", action).Msg("error en venta")
}
