package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-core/internal/application/apptest"
	"github.com/jhoicas/erp-core/internal/application/inventory"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
	"github.com/jhoicas/erp-core/pkg/logger"
)

var start = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*inventory.Service, *apptest.DB, *apptest.Recorder) {
	t.Helper()
	db := apptest.New()
	rec := &apptest.Recorder{}
	svc := inventory.NewService(db, logger.Nop(), rec).WithClock(apptest.Clock(start))
	return svc, db, rec
}

func in(productID string, qty int) inventory.RecordMovementInput {
	return inventory.RecordMovementInput{ProductID: productID, Type: entity.MovementIn, Quantity: qty, Actor: "bodega"}
}

func out(productID string, qty int) inventory.RecordMovementInput {
	return inventory.RecordMovementInput{ProductID: productID, Type: entity.MovementOut, Quantity: qty, Actor: "bodega"}
}

func TestRecordMovement_EntradaYSalidaInsuficiente(t *testing.T) {
	svc, db, rec := newService(t)
	db.SeedProduct(apptest.Product("p1", "A1", 0, "1.00", "2.00"))
	ctx := context.Background()

	m, err := svc.RecordMovement(ctx, in("p1", 10))
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, 10, db.Product("p1").Stock)

	_, err = svc.RecordMovement(ctx, out("p1", 15))
	require.Error(t, err)
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, 10, ise.Available)
	assert.Equal(t, 15, ise.Required)
	assert.Contains(t, err.Error(), "Actual: 10. Intentaste egresar: 15.")

	assert.Equal(t, 10, db.Product("p1").Stock)
	assert.Len(t, db.Movements(), 1)
	assert.Equal(t, []string{"stock_movement:in", "stock_movement:record:insufficient_stock"}, rec.Snapshot())
}

func TestRecordMovement_SalidaExactaDejaCero(t *testing.T) {
	svc, db, _ := newService(t)
	db.SeedProduct(apptest.Product("p1", "A1", 4, "1.00", "2.00"))

	_, err := svc.RecordMovement(context.Background(), out("p1", 4))
	require.NoError(t, err)
	assert.Equal(t, 0, db.Product("p1").Stock)
}

func TestRecordMovement_Rechazos(t *testing.T) {
	tests := []struct {
		name  string
		input inventory.RecordMovementInput
		is    error
	}{
		{"cantidad cero", in("p1", 0), domain.ErrInvalidInput},
		{"cantidad negativa", out("p1", -2), domain.ErrInvalidInput},
		{"tipo inválido", inventory.RecordMovementInput{ProductID: "p1", Type: "ADJ", Quantity: 1}, domain.ErrInvalidInput},
		{"producto inexistente", in("nope", 1), domain.ErrNotFound},
		{"producto inactivo", in("p2", 1), domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, db, _ := newService(t)
			db.SeedProduct(apptest.Product("p1", "A1", 5, "1.00", "2.00"))
			inactive := apptest.Product("p2", "B1", 5, "1.00", "2.00")
			inactive.SetStatus(entity.ProductInactive)
			db.SeedProduct(inactive)

			_, err := svc.RecordMovement(context.Background(), tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.is)
			assert.Empty(t, db.Movements())
			assert.Equal(t, 5, db.Product("p1").Stock)
		})
	}
}

func TestRecordMovement_EntradaQueDesbordaElStock(t *testing.T) {
	svc, db, _ := newService(t)
	db.SeedProduct(apptest.Product("p1", "A1", entity.MaxQuantity-1, "1.00", "2.00"))

	_, err := svc.RecordMovement(context.Background(), in("p1", 2))
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "quantity", ve.Fields[0].Field)
	assert.Empty(t, db.Movements())
	assert.Equal(t, entity.MaxQuantity-1, db.Product("p1").Stock)

	_, err = svc.RecordMovement(context.Background(), in("p1", 1))
	require.NoError(t, err)
	assert.Equal(t, entity.MaxQuantity, db.Product("p1").Stock)
}

func TestRecordMovement_FallaAlActualizarStockRevierte(t *testing.T) {
	svc, db, _ := newService(t)
	db.SeedProduct(apptest.Product("p1", "A1", 0, "1.00", "2.00"))
	boom := errors.New("conexión perdida")
	db.FailOn("products.update_stock", boom)

	_, err := svc.RecordMovement(context.Background(), in("p1", 3))
	require.ErrorIs(t, err, boom)
	assert.Empty(t, db.Movements(), "el movimiento no debe quedar sin su efecto en stock")
	assert.Equal(t, 0, db.Product("p1").Stock)
	assert.Equal(t, 1, db.Rollbacks)
}

func TestRecordMovement_SalidasConcurrentesNuncaNegativo(t *testing.T) {
	svc, db, _ := newService(t)
	db.SeedProduct(apptest.Product("p1", "A1", 10, "1.00", "2.00"))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var ok, rejected int
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordMovement(context.Background(), out("p1", 3))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, domain.ErrInsufficientStock) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, ok)
	assert.Equal(t, 5, rejected)
	assert.Equal(t, 1, db.Product("p1").Stock)
	assert.Len(t, db.Movements(), 3)
}

func TestApplyInTx_ErrorAbortaTransaccionDelCaller(t *testing.T) {
	svc, db, _ := newService(t)
	db.SeedProduct(apptest.Product("p1", "A1", 2, "1.00", "2.00"))
	db.SeedProduct(apptest.Product("p2", "B1", 0, "1.00", "2.00"))

	err := db.Run(context.Background(), repository.LockSet{Products: []string{"p1", "p2"}}, func(ctx context.Context, st repository.Store) error {
		if _, err := svc.ApplyInTx(ctx, st, out("p1", 2)); err != nil {
			return err
		}
		_, err := svc.ApplyInTx(ctx, st, out("p2", 1))
		return err
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 2, db.Product("p1").Stock)
	assert.Empty(t, db.Movements())
}

func TestListMovements_FiltrosYOrden(t *testing.T) {
	svc, db, _ := newService(t)
	db.SeedProduct(apptest.Product("p1", "A1", 0, "1.00", "2.00"))
	db.SeedProduct(apptest.Product("p2", "B1", 0, "1.00", "2.00"))
	ctx := context.Background()
	for _, q := range []int{5, 1, 3} {
		_, err := svc.RecordMovement(ctx, in("p1", q))
		require.NoError(t, err)
	}
	_, err := svc.RecordMovement(ctx, in("p2", 7))
	require.NoError(t, err)
	_, err = svc.RecordMovement(ctx, out("p1", 2))
	require.NoError(t, err)

	page, err := svc.ListMovements(ctx, inventory.MovementFilter{ProductID: "p1", Type: "in", Ordering: "quantity"})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, []int{1, 3, 5}, []int{page.Items[0].Quantity, page.Items[1].Quantity, page.Items[2].Quantity})

	page, err = svc.ListMovements(ctx, inventory.MovementFilter{PageSize: "2"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, "-created_at", page.Ordering)
	assert.Equal(t, entity.MovementOut, page.Items[0].Type, "más reciente primero")

	_, err = svc.ListMovements(ctx, inventory.MovementFilter{Ordering: "note"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.ListMovements(ctx, inventory.MovementFilter{Page: "0"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.ListMovements(ctx, inventory.MovementFilter{Type: "SIDEWAYS"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStockAudit(t *testing.T) {
	svc, db, _ := newService(t)
	db.SeedProduct(apptest.Product("p1", "A1", 0, "1.00", "2.00"))
	db.SeedProduct(apptest.Product("p2", "B1", 4, "1.00", "2.00"))
	ctx := context.Background()
	_, err := svc.RecordMovement(ctx, in("p1", 8))
	require.NoError(t, err)
	_, err = svc.RecordMovement(ctx, out("p1", 3))
	require.NoError(t, err)

	audit, err := svc.StockAudit(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, audit.InSync())
	assert.Equal(t, 8, audit.TotalIn)
	assert.Equal(t, 3, audit.TotalOut)
	assert.Equal(t, 5, audit.Stock)

	// stock sembrado sin movimientos
	audit, err = svc.StockAudit(ctx, "p2")
	require.NoError(t, err)
	assert.False(t, audit.InSync())
	assert.Equal(t, 4, audit.Drift)

	_, err = svc.StockAudit(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
