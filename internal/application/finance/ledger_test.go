package finance_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-core/internal/application/apptest"
	"github.com/jhoicas/erp-core/internal/application/finance"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/money"
	"github.com/jhoicas/erp-core/internal/domain/repository"
	"github.com/jhoicas/erp-core/pkg/logger"
)

var start = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*finance.Service, *apptest.DB) {
	t.Helper()
	db := apptest.New()
	return finance.NewService(db, logger.Nop(), nil).WithClock(apptest.Clock(start)), db
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// inTx ejecuta fn en una transacción sin locks previos y devuelve su resultado.
func inTx(t *testing.T, db *apptest.DB, fn func(ctx context.Context, st repository.Store) (*entity.FinancialMovement, error)) (*entity.FinancialMovement, error) {
	t.Helper()
	var out *entity.FinancialMovement
	err := db.Run(context.Background(), repository.LockSet{}, func(ctx context.Context, st repository.Store) error {
		m, err := fn(ctx, st)
		out = m
		return err
	})
	return out, err
}

// ──────────────────────────────────────────────────────────────────────────────
// Ensure
// ──────────────────────────────────────────────────────────────────────────────

func TestEnsurePayable_CreaUnaSolaVez(t *testing.T) {
	svc, db := newService(t)

	first, err := inTx(t, db, func(ctx context.Context, st repository.Store) (*entity.FinancialMovement, error) {
		return svc.EnsurePayable(ctx, st, "po-1", dec("10.005"))
	})
	require.NoError(t, err)
	assert.Equal(t, entity.Payable, first.Type)
	assert.Equal(t, entity.SourcePurchase, first.SourceType)
	assert.Equal(t, entity.FinancialOpen, first.Status)
	assert.Equal(t, "10.01", money.Format(first.Amount))
	assert.Equal(t, "Auto: compra RECIBIDA (OC #po-1)", first.Notes)

	second, err := inTx(t, db, func(ctx context.Context, st repository.Store) (*entity.FinancialMovement, error) {
		return svc.EnsurePayable(ctx, st, "po-1", dec("10.01"))
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, db.FinancialMovements(), 1)
}

func TestEnsureReceivable_RepreciaSoloOpen(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	m, err := inTx(t, db, func(ctx context.Context, st repository.Store) (*entity.FinancialMovement, error) {
		return svc.EnsureReceivable(ctx, st, "so-1", dec("20.00"))
	})
	require.NoError(t, err)

	m, err = inTx(t, db, func(ctx context.Context, st repository.Store) (*entity.FinancialMovement, error) {
		return svc.EnsureReceivable(ctx, st, "so-1", dec("25.50"))
	})
	require.NoError(t, err)
	assert.Equal(t, "25.50", money.Format(m.Amount))

	_, err = svc.Pay(ctx, m.ID, "caja")
	require.NoError(t, err)

	m, err = inTx(t, db, func(ctx context.Context, st repository.Store) (*entity.FinancialMovement, error) {
		return svc.EnsureReceivable(ctx, st, "so-1", dec("99.00"))
	})
	require.NoError(t, err)
	assert.Equal(t, entity.FinancialPaid, m.Status)
	assert.Equal(t, "25.50", money.Format(m.Amount), "un movimiento pagado no se recalcula")
}

func TestEnsure_MontoNegativoRechazado(t *testing.T) {
	svc, db := newService(t)
	_, err := inTx(t, db, func(ctx context.Context, st repository.Store) (*entity.FinancialMovement, error) {
		return svc.EnsurePayable(ctx, st, "po-1", dec("-1"))
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, db.FinancialMovements())
}

// ──────────────────────────────────────────────────────────────────────────────
// Void
// ──────────────────────────────────────────────────────────────────────────────

func TestVoidReceivable(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	m, err := inTx(t, db, func(ctx context.Context, st repository.Store) (*entity.FinancialMovement, error) {
		return svc.VoidReceivable(ctx, st, "so-x", "nada")
	})
	require.NoError(t, err)
	assert.Nil(t, m, "sin cuenta por cobrar no hay nada que anular")

	_, err = inTx(t, db, func(ctx context.Context, st repository.Store) (*entity.FinancialMovement, error) {
		return svc.EnsureReceivable(ctx, st, "so-1", dec("8.00"))
	})
	require.NoError(t, err)

	m, err = inTx(t, db, func(ctx context.Context, st repository.Store) (*entity.FinancialMovement, error) {
		return svc.VoidReceivable(ctx, st, "so-1", "cliente desistió")
	})
	require.NoError(t, err)
	assert.Equal(t, entity.FinancialVoid, m.Status)
	assert.Nil(t, m.PaidAt)
	assert.True(t, strings.HasSuffix(m.Notes, "| Anulado: cliente desistió"), m.Notes)

	again, err := inTx(t, db, func(ctx context.Context, st repository.Store) (*entity.FinancialMovement, error) {
		return svc.VoidReceivable(ctx, st, "so-1", "otra vez")
	})
	require.NoError(t, err)
	assert.Equal(t, m.Notes, again.Notes, "anular dos veces no cambia nada")

	_, err = svc.Pay(ctx, m.ID, "caja")
	require.ErrorIs(t, err, domain.ErrCannotPayVoided)
}

func TestVoidReceivable_PagadaNoSeAnula(t *testing.T) {
	svc, db := newService(t)
	m, err := inTx(t, db, func(ctx context.Context, st repository.Store) (*entity.FinancialMovement, error) {
		return svc.EnsureReceivable(ctx, st, "so-1", dec("8.00"))
	})
	require.NoError(t, err)
	_, err = svc.Pay(context.Background(), m.ID, "caja")
	require.NoError(t, err)

	_, err = inTx(t, db, func(ctx context.Context, st repository.Store) (*entity.FinancialMovement, error) {
		return svc.VoidReceivable(ctx, st, "so-1", "tarde")
	})
	require.ErrorIs(t, err, domain.ErrCannotVoidPaid)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// ──────────────────────────────────────────────────────────────────────────────
// Pay
// ──────────────────────────────────────────────────────────────────────────────

func TestPay_DosVecesEsConflicto(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	m, err := inTx(t, db, func(ctx context.Context, st repository.Store) (*entity.FinancialMovement, error) {
		return svc.EnsurePayable(ctx, st, "po-1", dec("10.00"))
	})
	require.NoError(t, err)

	paid, err := svc.Pay(ctx, m.ID, "tesoreria")
	require.NoError(t, err)
	assert.Equal(t, entity.FinancialPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, "tesoreria", paid.PaidBy)

	_, err = svc.Pay(ctx, m.ID, "tesoreria")
	require.ErrorIs(t, err, domain.ErrAlreadyPaid)
	var ce *domain.ConflictError
	assert.ErrorAs(t, err, &ce)
}

func TestPay_MontoCeroNoSePaga(t *testing.T) {
	svc, db := newService(t)
	m, err := inTx(t, db, func(ctx context.Context, st repository.Store) (*entity.FinancialMovement, error) {
		return svc.EnsurePayable(ctx, st, "po-0", dec("0"))
	})
	require.NoError(t, err)

	_, err = svc.Pay(context.Background(), m.ID, "tesoreria")
	require.ErrorIs(t, err, domain.ErrZeroAmountNotPayable)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPay_Errores(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Pay(context.Background(), "nope", "tesoreria")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Pay(context.Background(), "nope", " ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPay_FallaDePersistenciaNoDejaPagado(t *testing.T) {
	svc, db := newService(t)
	m, err := inTx(t, db, func(ctx context.Context, st repository.Store) (*entity.FinancialMovement, error) {
		return svc.EnsurePayable(ctx, st, "po-1", dec("3.00"))
	})
	require.NoError(t, err)
	boom := errors.New("timeout")
	db.FailOn("financial.update", boom)

	_, err = svc.Pay(context.Background(), m.ID, "tesoreria")
	require.ErrorIs(t, err, boom)
	got, err := svc.Get(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.FinancialOpen, got.Status)
}

func TestPay_ConcurrenteUnSoloGanador(t *testing.T) {
	svc, db := newService(t)
	m, err := inTx(t, db, func(ctx context.Context, st repository.Store) (*entity.FinancialMovement, error) {
		return svc.EnsurePayable(ctx, st, "po-1", dec("3.00"))
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var wins, conflicts int
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Pay(context.Background(), m.ID, "tesoreria")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, domain.ErrAlreadyPaid):
				conflicts++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
	assert.Equal(t, 4, conflicts)
}

// ──────────────────────────────────────────────────────────────────────────────
// Noop
// ──────────────────────────────────────────────────────────────────────────────

func TestNoop(t *testing.T) {
	var n finance.Noop
	m, err := n.EnsurePayable(context.Background(), nil, "po", dec("1"))
	assert.NoError(t, err)
	assert.Nil(t, m)
	m, err = n.VoidReceivable(context.Background(), nil, "so", "x")
	assert.NoError(t, err)
	assert.Nil(t, m)
}
