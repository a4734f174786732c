// Package purchasing máquina de estados de órdenes de compra:
// DRAFT → CONFIRMED → RECEIVED, con CANCELLED desde DRAFT o CONFIRMED.
package purchasing

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

// StockLedger entradas de stock dentro de la transacción de la orden.
type StockLedger interface {
	ApplyInTx(ctx context.Context, st repository.Store, in inventory.RecordMovementInput) (*entity.StockMovement, error)
}

// PayableLedger cuenta por pagar de la orden recibida.
type PayableLedger interface {
	EnsurePayable(ctx context.Context, st repository.Store, purchaseOrderID string, amount decimal.Decimal) (*entity.FinancialMovement, error)
}

// Service casos de uso de órdenes de compra.
type Service struct {
	tx     repository.TxRunner
	stock  StockLedger
	ledger PayableLedger
	log    *logger.Logger
	rec    ports.TransitionRecorder
	now    func() time.Time
}

// NewService construye el servicio. rec puede ser nil.
func NewService(tx repository.TxRunner, stock StockLedger, ledger PayableLedger, log *logger.Logger, rec ports.TransitionRecorder) *Service {
	if rec == nil {
		rec = ports.NopRecorder{}
	}
	return &Service{
		tx:     tx,
		stock:  stock,
		ledger: ledger,
		log:    log.Named("purchasing"),
		rec:    rec,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock reemplaza el reloj (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreatePurchaseOrderInput cabecera de una orden nueva.
type CreatePurchaseOrderInput struct {
	SupplierID      string
	SupplierInvoice string
	Note            string
}

// Create crea la orden en DRAFT. El proveedor debe existir y estar activo.
func (s *Service) Create(ctx context.Context, actor string, in CreatePurchaseOrderInput) (*entity.PurchaseOrder, error) {
	now := s.now()
	po := &entity.PurchaseOrder{
		ID:              uuid.New().String(),
		SupplierID:      strings.TrimSpace(in.SupplierID),
		SupplierInvoice: strings.TrimSpace(in.SupplierInvoice),
		Note:            strings.TrimSpace(in.Note),
		Status:          entity.PurchaseDraft,
		CreatedBy:       actor,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := entity.ValidatePurchaseOrder(po, nil).Err("orden de compra inválida", nil); err != nil {
		return nil, err
	}
	err := s.tx.Run(ctx, repository.LockSet{}, func(ctx context.Context, st repository.Store) error {
		sup, err := st.Suppliers().GetByID(ctx, po.SupplierID)
		if err != nil {
			return fmt.Errorf("get supplier: %w", err)
		}
		if sup == nil {
			return domain.NotFound("proveedor", po.SupplierID)
		}
		if !sup.IsActive {
			return domain.Invalid("supplier_id", "El proveedor está inactivo.")
		}
		if err := st.PurchaseOrders().Create(ctx, po); err != nil {
			return fmt.Errorf("create purchase order: %w", err)
		}
		return nil
	})
	if err != nil {
		s.fail("create", po.ID, err)
		return nil, err
	}
	s.rec.Transition("purchase_order", "create")
	s.log.Info().Str("purchase_order_id", po.ID).Str("supplier_id", po.SupplierID).Str("actor", actor).Msg("orden de compra creada")
	return po, nil
}

// Confirm DRAFT → CONFIRMED. No toca stock ni finanzas.
func (s *Service) Confirm(ctx context.Context, id, actor string) (*entity.PurchaseOrder, error) {
	return s.transition(ctx, id, "confirm", func(ctx context.Context, st repository.Store, po *entity.PurchaseOrder) error {
		products, err := st.Products().GetMany(ctx, entity.ProductIDs(po.LineChecks()))
		if err != nil {
			return fmt.Errorf("get products: %w", err)
		}
		return po.Confirm(actor, s.now(), products)
	})
}

// Receive CONFIRMED → RECEIVED. Entradas de stock por línea, cambio de estado y cuenta por pagar
// ocurren en una sola transacción: si algo falla no queda ninguna escritura.
func (s *Service) Receive(ctx context.Context, id, actor string) (*entity.PurchaseOrder, error) {
	return s.transition(ctx, id, "receive", func(ctx context.Context, st repository.Store, po *entity.PurchaseOrder) error {
		ids := entity.ProductIDs(po.LineChecks())
		if err := st.Lock(ctx, repository.LockSet{Products: ids}); err != nil {
			return err
		}
		products, err := st.Products().GetMany(ctx, ids)
		if err != nil {
			return fmt.Errorf("get products: %w", err)
		}
		if err := po.Receive(actor, s.now(), products); err != nil {
			return err
		}

		supplierName := po.SupplierID
		if sup, err := st.Suppliers().GetByID(ctx, po.SupplierID); err != nil {
			return fmt.Errorf("get supplier: %w", err)
		} else if sup != nil {
			supplierName = sup.Name
		}
		note := entity.Truncate(fmt.Sprintf("Recepción PO#%s - %s", po.ID, supplierName), entity.MaxNoteLength)
		for _, ln := range po.Lines {
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
		return nil
	}, func(ctx context.Context, st repository.Store, po *entity.PurchaseOrder) error {
		_, err := s.ledger.EnsurePayable(ctx, st, po.ID, po.Total())
		return err
	})
}

// Cancel DRAFT|CONFIRMED → CANCELLED. No hay nada que revertir.
func (s *Service) Cancel(ctx context.Context, id, actor string) (*entity.PurchaseOrder, error) {
	return s.transition(ctx, id, "cancel", func(_ context.Context, _ repository.Store, po *entity.PurchaseOrder) error {
		return po.Cancel(actor, s.now())
	})
}

// transition bloquea la orden, aplica mutate, valida contra el estado previo, persiste
// y ejecuta after (escrituras que dependen de la orden ya actualizada).
func (s *Service) transition(
	ctx context.Context,
	id, action string,
	mutate func(ctx context.Context, st repository.Store, po *entity.PurchaseOrder) error,
	after ...func(ctx context.Context, st repository.Store, po *entity.PurchaseOrder) error,
) (*entity.PurchaseOrder, error) {
	var out *entity.PurchaseOrder
	err := s.tx.Run(ctx, repository.LockSet{PurchaseOrders: []string{id}}, func(ctx context.Context, st repository.Store) error {
		po, err := loadOrder(ctx, st, id)
		if err != nil {
			return err
		}
		prev := *po
		if err := mutate(ctx, st, po); err != nil {
			return err
		}
		if err := entity.ValidatePurchaseOrder(po, &prev).Err("orden de compra inválida", nil); err != nil {
			return err
		}
		if err := st.PurchaseOrders().Update(ctx, po); err != nil {
			return fmt.Errorf("update purchase order: %w", err)
		}
		for _, fn := range after {
			if err := fn(ctx, st, po); err != nil {
				return err
			}
		}
		out = po
		return nil
	})
	if err != nil {
		s.fail(action, id, err)
		return nil, err
	}
	s.rec.Transition("purchase_order", action)
	s.log.Info().
		Str("purchase_order_id", out.ID).
		Str("action", action).
		Str("status", string(out.Status)).
		Str("total", money.Format(out.Total())).
		Msg("orden de compra actualizada")
	return out, nil
}

func loadOrder(ctx context.Context, st repository.Store, id string) (*entity.PurchaseOrder, error) {
	po, err := st.PurchaseOrders().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	if po == nil {
		return nil, domain.NotFound("orden de compra", id)
	}
	return po, nil
}

func (s *Service) fail(action, id string, err error) {
	if ports.IsBusinessError(err) {
		s.rec.Rejected("purchase_order", action, ports.RejectReason(err))
		s.log.Debug().Err(err).Str("purchase_order_id", id).Str("action", action).Msg("operación rechazada")
		return
	}
	s.log.Error().Err(err).Str("purchase_order_id", id).Str("action", action).Msg("error en orden de compra")
}
