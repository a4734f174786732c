package finance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/application/ports"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/money"
	"github.com/jhoicas/erp-core/internal/domain/repository"
	"github.com/jhoicas/erp-core/pkg/logger"
)

// Service ledger financiero: cuentas por pagar/cobrar, una por documento de origen.
type Service struct {
	tx  repository.TxRunner
	log *logger.Logger
	rec ports.TransitionRecorder
	now func() time.Time
}

// NewService construye el servicio. rec puede ser nil.
func NewService(tx repository.TxRunner, log *logger.Logger, rec ports.TransitionRecorder) *Service {
	if rec == nil {
		rec = ports.NopRecorder{}
	}
	return &Service{tx: tx, log: log.Named("finance"), rec: rec, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock reemplaza el reloj (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// EnsurePayable get-or-create de la cuenta por pagar de una orden de compra, en la transacción del caller.
// Si ya existe y está OPEN se re-precia; PAID/VOID nunca se recalculan.
func (s *Service) EnsurePayable(ctx context.Context, st repository.Store, purchaseOrderID string, amount decimal.Decimal) (*entity.FinancialMovement, error) {
	return s.ensure(ctx, st, entity.Payable, entity.SourcePurchase, purchaseOrderID, amount,
		fmt.Sprintf("Auto: compra RECIBIDA (OC #%s)", purchaseOrderID))
}

// EnsureReceivable simétrico a EnsurePayable para órdenes de venta.
func (s *Service) EnsureReceivable(ctx context.Context, st repository.Store, salesOrderID string, amount decimal.Decimal) (*entity.FinancialMovement, error) {
	return s.ensure(ctx, st, entity.Receivable, entity.SourceSale, salesOrderID, amount,
		fmt.Sprintf("Auto: venta CONFIRMADA (OV #%s)", salesOrderID))
}

func (s *Service) ensure(
	ctx context.Context,
	st repository.Store,
	t entity.FinancialType,
	src entity.SourceType,
	sourceID string,
	amount decimal.Decimal,
	note string,
) (*entity.FinancialMovement, error) {
	amount, err := money.Require("amount", amount)
	if err != nil {
		return nil, err
	}
	draft := &entity.FinancialMovement{
		ID:         uuid.New().String(),
		Type:       t,
		SourceType: src,
		SourceID:   sourceID,
		Amount:     amount,
		Status:     entity.FinancialOpen,
		Notes:      entity.Truncate(note, entity.MaxReasonLength),
		CreatedAt:  s.now(),
	}
	if err := entity.FinancialMovementError(entity.ValidateFinancialMovement(draft, nil), nil); err != nil {
		return nil, err
	}

	cur, created, err := st.FinancialMovements().GetOrCreateForUpdate(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("get or create financial movement: %w", err)
	}
	if created {
		s.rec.Transition("financial_movement", "open")
		s.log.Info().
			Str("financial_movement_id", cur.ID).
			Str("movement_type", string(t)).
			Str("source_id", sourceID).
			Str("amount", money.Format(cur.Amount)).
			Msg("movimiento financiero creado")
		return cur, nil
	}

	prev := cur.Clone()
	if !cur.Reprice(amount) {
		return cur, nil
	}
	if err := entity.FinancialMovementError(entity.ValidateFinancialMovement(cur, prev), prev); err != nil {
		return nil, err
	}
	if err := st.FinancialMovements().Update(ctx, cur); err != nil {
		return nil, fmt.Errorf("update financial movement: %w", err)
	}
	s.log.Info().
		Str("financial_movement_id", cur.ID).
		Str("previous_amount", money.Format(prev.Amount)).
		Str("amount", money.Format(cur.Amount)).
		Msg("movimiento financiero re-preciado")
	return cur, nil
}

// VoidReceivable anula la cuenta por cobrar de una venta en la transacción del caller.
// Sin cuenta por cobrar devuelve (nil, nil); si ya estaba VOID la devuelve sin cambios.
func (s *Service) VoidReceivable(ctx context.Context, st repository.Store, salesOrderID, reason string) (*entity.FinancialMovement, error) {
	cur, err := st.FinancialMovements().GetBySourceForUpdate(ctx, entity.Receivable, entity.SourceSale, salesOrderID)
	if err != nil {
		return nil, fmt.Errorf("get financial movement by source: %w", err)
	}
	if cur == nil {
		return nil, nil
	}
	prev := cur.Clone()
	changed, err := cur.Void(reason)
	if err != nil {
		return nil, err
	}
	if !changed {
		return cur, nil
	}
	if err := entity.FinancialMovementError(entity.ValidateFinancialMovement(cur, prev), prev); err != nil {
		return nil, err
	}
	if err := st.FinancialMovements().Update(ctx, cur); err != nil {
		return nil, fmt.Errorf("update financial movement: %w", err)
	}
	s.rec.Transition("financial_movement", "void")
	s.log.Info().Str("financial_movement_id", cur.ID).Str("source_id", salesOrderID).Msg("cuenta por cobrar anulada")
	return cur, nil
}

// Pay OPEN → PAID en su propia transacción, con la fila bloqueada para evitar doble pago.
func (s *Service) Pay(ctx context.Context, movementID, actor string) (*entity.FinancialMovement, error) {
	if strings.TrimSpace(actor) == "" {
		return nil, domain.Invalid("actor", "se requiere el usuario que paga")
	}
	var out *entity.FinancialMovement
	err := s.tx.Run(ctx, repository.LockSet{FinancialMovements: []string{movementID}}, func(ctx context.Context, st repository.Store) error {
		cur, err := st.FinancialMovements().GetByID(ctx, movementID)
		if err != nil {
			return fmt.Errorf("get financial movement: %w", err)
		}
		if cur == nil {
			return domain.NotFound("movimiento financiero", movementID)
		}
		prev := cur.Clone()
		if err := cur.Pay(actor, s.now()); err != nil {
			return err
		}
		if err := entity.FinancialMovementError(entity.ValidateFinancialMovement(cur, prev), prev); err != nil {
			return err
		}
		if err := st.FinancialMovements().Update(ctx, cur); err != nil {
			return fmt.Errorf("update financial movement: %w", err)
		}
		out = cur
		return nil
	})
	if err != nil {
		if ports.IsBusinessError(err) {
			s.rec.Rejected("financial_movement", "pay", ports.RejectReason(err))
			s.log.Debug().Err(err).Str("financial_movement_id", movementID).Msg("pago rechazado")
		} else {
			s.log.Error().Err(err).Str("financial_movement_id", movementID).Msg("error pagando movimiento")
		}
		return nil, err
	}
	s.rec.Transition("financial_movement", "pay")
	s.log.Info().
		Str("financial_movement_id", out.ID).
		Str("actor", actor).
		Str("amount", money.Format(out.Amount)).
		Msg("movimiento financiero pagado")
	return out, nil
}

// Noop ledger vacío para cuando el módulo de finanzas está deshabilitado.
type Noop struct{}

func (Noop) EnsurePayable(context.Context, repository.Store, string, decimal.Decimal) (*entity.FinancialMovement, error) {
	return nil, nil
}

func (Noop) EnsureReceivable(context.Context, repository.Store, string, decimal.Decimal) (*entity.FinancialMovement, error) {
	return nil, nil
}

func (Noop) VoidReceivable(context.Context, repository.Store, string, string) (*entity.FinancialMovement, error) {
	return nil, nil
}
