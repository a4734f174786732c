package purchasing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-core/internal/application/apptest"
	"github.com/jhoicas/erp-core/internal/application/finance"
	"github.com/jhoicas/erp-core/internal/application/inventory"
	"github.com/jhoicas/erp-core/internal/application/purchasing"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/money"
	"github.com/jhoicas/erp-core/internal/domain/repository"
	"github.com/jhoicas/erp-core/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

var start = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	db  *apptest.DB
	rec *apptest.Recorder
	svc *purchasing.Service
	fin *finance.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := apptest.New()
	rec := &apptest.Recorder{}
	clock := apptest.Clock(start)
	log := logger.Nop()
	stock := inventory.NewService(db, log, rec).WithClock(clock)
	fin := finance.NewService(db, log, rec).WithClock(clock)
	db.SeedSupplier(apptest.Supplier("sup-1", "Distribuidora Sur"))
	db.SeedProduct(apptest.Product("p1", "A1", 0, "2.00", "3.00"))
	db.SeedProduct(apptest.Product("p2", "B1", 0, "1.50", "2.50"))
	db.SeedProduct(apptest.Product("p3", "C1", 0, "0.75", "1.00"))
	return &fixture{
		db:  db,
		rec: rec,
		svc: purchasing.NewService(db, stock, fin, log, rec).WithClock(clock),
		fin: fin,
	}
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func (f *fixture) draft(t *testing.T, lines ...purchasing.AddLineInput) *entity.PurchaseOrder {
	t.Helper()
	ctx := context.Background()
	po, err := f.svc.Create(ctx, "compras", purchasing.CreatePurchaseOrderInput{SupplierID: "sup-1", SupplierInvoice: "F-001"})
	require.NoError(t, err)
	for _, ln := range lines {
		po, err = f.svc.AddLine(ctx, po.ID, ln)
		require.NoError(t, err)
	}
	return po
}

func line(productID string, qty int, cost string) purchasing.AddLineInput {
	in := purchasing.AddLineInput{ProductID: productID, Quantity: qty}
	if cost != "" {
		in.UnitCost = dec(cost)
	}
	return in
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo completo
// ──────────────────────────────────────────────────────────────────────────────

func TestReceive_StockYCuentaPorPagar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	po := f.draft(t, line("p1", 5, "2.00"))

	po, err := f.svc.Confirm(ctx, po.ID, "jefe")
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseConfirmed, po.Status)
	assert.Empty(t, f.db.Movements(), "confirmar no toca stock")
	assert.Empty(t, f.db.FinancialMovements(), "confirmar no toca finanzas")

	po, err = f.svc.Receive(ctx, po.ID, "bodega")
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseReceived, po.Status)
	assert.Equal(t, "bodega", po.ReceivedBy)
	assert.Equal(t, "jefe", po.ConfirmedBy)

	movs := f.db.Movements()
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementIn, movs[0].Type)
	assert.Equal(t, 5, movs[0].Quantity)
	assert.Equal(t, "Recepción PO#"+po.ID+" - Distribuidora Sur", movs[0].Note)
	assert.Equal(t, 5, f.db.Product("p1").Stock)

	fin := f.db.FinancialMovements()
	require.Len(t, fin, 1)
	assert.Equal(t, entity.Payable, fin[0].Type)
	assert.Equal(t, entity.SourcePurchase, fin[0].SourceType)
	assert.Equal(t, po.ID, fin[0].SourceID)
	assert.Equal(t, entity.FinancialOpen, fin[0].Status)
	assert.Equal(t, "10.00", money.Format(fin[0].Amount))

	paid, err := f.fin.Pay(ctx, fin[0].ID, "tesoreria")
	require.NoError(t, err)
	assert.Equal(t, entity.FinancialPaid, paid.Status)
	_, err = f.fin.Pay(ctx, fin[0].ID, "tesoreria")
	assert.ErrorIs(t, err, domain.ErrAlreadyPaid)
}

func TestReceive_DosVecesNoDuplica(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	po := f.draft(t, line("p1", 2, "1.00"))
	_, err := f.svc.Confirm(ctx, po.ID, "jefe")
	require.NoError(t, err)
	_, err = f.svc.Receive(ctx, po.ID, "bodega")
	require.NoError(t, err)

	_, err = f.svc.Receive(ctx, po.ID, "bodega")
	var te *domain.TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "RECEIVED", te.Current)
	assert.Len(t, f.db.Movements(), 1)
	assert.Len(t, f.db.FinancialMovements(), 1)
	assert.Equal(t, 2, f.db.Product("p1").Stock)
}

func TestReceive_FallaFinancieraRevierteTodo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	po := f.draft(t, line("p1", 5, "2.00"), line("p2", 1, "1.00"))
	_, err := f.svc.Confirm(ctx, po.ID, "jefe")
	require.NoError(t, err)

	boom := errors.New("deadlock detected")
	f.db.FailOn("financial.get_or_create", boom)
	_, err = f.svc.Receive(ctx, po.ID, "bodega")
	require.ErrorIs(t, err, boom)

	got, err := f.svc.Get(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseConfirmed, got.Status)
	assert.Nil(t, got.ReceivedAt)
	assert.Empty(t, f.db.Movements())
	assert.Equal(t, 0, f.db.Product("p1").Stock)
	assert.Empty(t, f.db.FinancialMovements())

	// reintento exitoso
	_, err = f.svc.Receive(ctx, po.ID, "bodega")
	require.NoError(t, err)
	assert.Len(t, f.db.Movements(), 2)
	assert.Len(t, f.db.FinancialMovements(), 1)
}

func TestReceive_ProductoInactivoRechaza(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	po := f.draft(t, line("p1", 1, "1.00"), line("p2", 1, "1.00"))
	_, err := f.svc.Confirm(ctx, po.ID, "jefe")
	require.NoError(t, err)

	p2 := f.db.Product("p2")
	p2.SetStatus(entity.ProductInactive)
	f.db.SeedProduct(p2)

	_, err = f.svc.Receive(ctx, po.ID, "bodega")
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "lines[1].product_id", ve.Fields[0].Field)
	assert.Empty(t, f.db.Movements())
}

func TestReceive_LocksEnOrdenCanonico(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	po := f.draft(t, line("p3", 1, "1.00"), line("p1", 1, "1.00"), line("p2", 1, "1.00"))
	_, err := f.svc.Confirm(ctx, po.ID, "jefe")
	require.NoError(t, err)

	f.db.ResetLockLog()
	_, err = f.svc.Receive(ctx, po.ID, "bodega")
	require.NoError(t, err)
	assert.Equal(t, []repository.LockKey{
		{Kind: repository.LockPurchaseOrder, ID: po.ID},
		{Kind: repository.LockProduct, ID: "p1"},
		{Kind: repository.LockProduct, ID: "p2"},
		{Kind: repository.LockProduct, ID: "p3"},
	}, f.db.LockLog)
}

// ──────────────────────────────────────────────────────────────────────────────
// Transiciones inválidas
// ──────────────────────────────────────────────────────────────────────────────

func TestConfirm_SinLineasOCostoCero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty := f.draft(t)
	_, err := f.svc.Confirm(ctx, empty.ID, "jefe")
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "lines", ve.Fields[0].Field)

	zero := f.draft(t, line("p1", 1, "0"))
	_, err = f.svc.Confirm(ctx, zero.ID, "jefe")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "lines[0].unit_cost", ve.Fields[0].Field)

	got, err := f.svc.Get(ctx, zero.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseDraft, got.Status)
}

func TestReceive_DesdeDraftRechazado(t *testing.T) {
	f := newFixture(t)
	po := f.draft(t, line("p1", 1, "1.00"))
	_, err := f.svc.Receive(context.Background(), po.ID, "bodega")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Contains(t, f.rec.Snapshot(), "purchase_order:receive:invalid_transition")
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft := f.draft(t, line("p1", 1, "1.00"))
	got, err := f.svc.Cancel(ctx, draft.ID, "jefe")
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseCancelled, got.Status)

	_, err = f.svc.Cancel(ctx, draft.ID, "jefe")
	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)
	_, err = f.svc.Confirm(ctx, draft.ID, "jefe")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	confirmed := f.draft(t, line("p1", 1, "1.00"))
	_, err = f.svc.Confirm(ctx, confirmed.ID, "jefe")
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, confirmed.ID, "jefe")
	require.NoError(t, err)
	assert.Empty(t, f.db.Movements())

	received := f.draft(t, line("p1", 1, "1.00"))
	_, err = f.svc.Confirm(ctx, received.ID, "jefe")
	require.NoError(t, err)
	_, err = f.svc.Receive(ctx, received.ID, "bodega")
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, received.ID, "jefe")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación y líneas
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_Proveedor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inactive := apptest.Supplier("sup-2", "Cerrado")
	inactive.IsActive = false
	f.db.SeedSupplier(inactive)

	_, err := f.svc.Create(ctx, "compras", purchasing.CreatePurchaseOrderInput{SupplierID: "nope"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.Create(ctx, "compras", purchasing.CreatePurchaseOrderInput{SupplierID: "sup-2"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.svc.Create(ctx, "compras", purchasing.CreatePurchaseOrderInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAddLine_UpsertPorProducto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	po := f.draft(t, line("p1", 2, ""))
	require.Len(t, po.Lines, 1)
	assert.Equal(t, "2.00", money.Format(po.Lines[0].UnitCost), "toma el purchase_cost del producto")

	po, err := f.svc.AddLine(ctx, po.ID, line("p1", 3, ""))
	require.NoError(t, err)
	require.Len(t, po.Lines, 1)
	assert.Equal(t, 5, po.Lines[0].Quantity)
	assert.Equal(t, "2.00", money.Format(po.Lines[0].UnitCost))

	po, err = f.svc.AddLine(ctx, po.ID, line("p1", 1, "1.755"))
	require.NoError(t, err)
	assert.Equal(t, 6, po.Lines[0].Quantity)
	assert.Equal(t, "1.76", money.Format(po.Lines[0].UnitCost))
}

func TestAddLine_CantidadAcumuladaConTope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	po := f.draft(t, line("p1", entity.MaxQuantity-1, ""))

	_, err := f.svc.AddLine(ctx, po.ID, line("p1", 2, ""))
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "quantity", ve.Fields[0].Field)

	got, err := f.svc.Get(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MaxQuantity-1, got.Lines[0].Quantity)

	_, err = f.svc.AddLine(ctx, po.ID, line("p2", 1, "10000000000"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLineas_Edicion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	po := f.draft(t, line("p1", 2, "1.00"), line("p2", 1, "1.00"))
	lineID := po.Lines[0].ID

	qty := 7
	po, err := f.svc.UpdateLine(ctx, po.ID, lineID, purchasing.UpdateLineInput{Quantity: &qty, UnitCost: dec("4.00")})
	require.NoError(t, err)
	assert.Equal(t, "29.00", money.Format(po.Total()))

	bad := 0
	_, err = f.svc.UpdateLine(ctx, po.ID, lineID, purchasing.UpdateLineInput{Quantity: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	po, err = f.svc.RemoveLine(ctx, po.ID, lineID)
	require.NoError(t, err)
	assert.Len(t, po.Lines, 1)

	_, err = f.svc.RemoveLine(ctx, po.ID, lineID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.AddLine(ctx, po.ID, line("p1", -1, ""))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.svc.AddLine(ctx, po.ID, line("p1", 1, "-1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.svc.AddLine(ctx, po.ID, line("ghost", 1, ""))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Confirm(ctx, po.ID, "jefe")
	require.NoError(t, err)
	_, err = f.svc.AddLine(ctx, po.ID, line("p3", 1, ""))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "sólo DRAFT admite cambios de líneas")
}

func TestList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.draft(t, line("p1", 1, "1.00"))
	f.draft(t)
	_, err := f.svc.Confirm(ctx, a.ID, "jefe")
	require.NoError(t, err)

	page, err := f.svc.List(ctx, purchasing.ListFilter{Status: "confirmed"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, a.ID, page.Items[0].ID)

	page, err = f.svc.List(ctx, purchasing.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	_, err = f.svc.List(ctx, purchasing.ListFilter{Status: "PAID"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.svc.List(ctx, purchasing.ListFilter{Ordering: "supplier"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
