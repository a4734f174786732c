package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-core/internal/application/apptest"
	"github.com/jhoicas/erp-core/internal/application/catalog"
	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/application/finance"
	"github.com/jhoicas/erp-core/internal/application/inventory"
	"github.com/jhoicas/erp-core/internal/application/purchasing"
	"github.com/jhoicas/erp-core/internal/application/sales"
	"github.com/jhoicas/erp-core/internal/infrastructure/metrics"
	apphttp "github.com/jhoicas/erp-core/internal/interfaces/http"
	"github.com/jhoicas/erp-core/pkg/logger"
)

type testAPI struct {
	t   *testing.T
	app *fiber.App
	db  *apptest.DB
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db := apptest.New()
	log := logger.Nop()
	m := metrics.New("erp_test")
	clock := apptest.Clock(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))
	stock := inventory.NewService(db, log, m).WithClock(clock)
	fin := finance.NewService(db, log, m).WithClock(clock)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Catalog:    catalog.NewService(db, log).WithClock(clock),
		Inventory:  stock,
		Purchasing: purchasing.NewService(db, stock, fin, log, m).WithClock(clock),
		Sales:      sales.NewService(db, stock, fin, log, m).WithClock(clock),
		Finance:    fin,
		Metrics:    m,
		Log:        log,
		JWTSecret:  testJWTSecret,
	})
	db.SeedSupplier(apptest.Supplier("s1", "Distribuidora Sur"))
	db.SeedProduct(apptest.Product("p1", "TOR-1", 0, "1.50", "4.00"))
	return &testAPI{t: t, app: app, db: db}
}

// call ejecuta la petición con el rol dado y decodifica la respuesta en out (si no es nil).
func (a *testAPI) call(role, method, path string, body any, out any) int {
	a.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(a.t, role))
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestAPI_CompraRecibidaGeneraCuentaPorPagar(t *testing.T) {
	api := newTestAPI(t)

	var po dto.PurchaseOrderResponse
	require.Equal(t, http.StatusCreated, api.call("compras", http.MethodPost, "/api/purchase-orders",
		map[string]any{"supplier_id": "s1"}, &po))
	assert.Equal(t, "DRAFT", po.Status)
	assert.Equal(t, testUserID, po.CreatedBy)

	require.Equal(t, http.StatusOK, api.call("compras", http.MethodPost, "/api/purchase-orders/"+po.ID+"/lines",
		map[string]any{"product_id": "p1", "quantity": 10}, &po))
	assert.Equal(t, "15.00", po.Total)

	require.Equal(t, http.StatusOK, api.call("compras", http.MethodPost, "/api/purchase-orders/"+po.ID+"/confirm", nil, &po))
	require.Equal(t, http.StatusOK, api.call("bodeguero", http.MethodPost, "/api/purchase-orders/"+po.ID+"/receive", nil, &po))
	assert.Equal(t, "RECEIVED", po.Status)
	assert.Equal(t, 10, api.db.Product("p1").Stock)

	var e dto.ErrorResponse
	assert.Equal(t, http.StatusConflict, api.call("compras", http.MethodPost, "/api/purchase-orders/"+po.ID+"/receive", nil, &e))
	assert.Equal(t, "INVALID_TRANSITION", e.Code)

	var page dto.PageResponse[dto.FinancialMovementResponse]
	require.Equal(t, http.StatusOK, api.call("finanzas", http.MethodGet, "/api/finance/movements?movement_type=PAYABLE", nil, &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "15.00", page.Items[0].Amount)
	assert.Equal(t, po.ID, page.Items[0].SourceID)

	var paid dto.FinancialMovementResponse
	require.Equal(t, http.StatusOK, api.call("finanzas", http.MethodPost, "/api/finance/movements/"+page.Items[0].ID+"/pay", nil, &paid))
	assert.Equal(t, "PAID", paid.Status)
	assert.Equal(t, testUserID, paid.PaidBy)
	assert.Equal(t, http.StatusConflict, api.call("finanzas", http.MethodPost, "/api/finance/movements/"+paid.ID+"/pay", nil, &e))
	assert.Equal(t, "CONFLICT", e.Code)

	var summary dto.SummaryResponse
	require.Equal(t, http.StatusOK, api.call("finanzas", http.MethodGet, "/api/finance/summary", nil, &summary))
	assert.Equal(t, 1, summary.Payable.Paid.Count)
	assert.Equal(t, "15.00", summary.Payable.Paid.Amount)
	assert.Equal(t, "0.00", summary.NetOpen)
}

func TestAPI_VentaSinStockEs422(t *testing.T) {
	api := newTestAPI(t)

	var so dto.SalesOrderResponse
	require.Equal(t, http.StatusCreated, api.call("ventas", http.MethodPost, "/api/sales-orders",
		map[string]any{"customer_name": "Ferretería Norte"}, &so))
	require.Equal(t, http.StatusOK, api.call("ventas", http.MethodPost, "/api/sales-orders/"+so.ID+"/lines",
		map[string]any{"product_id": "p1", "quantity": 2}, &so))

	var e dto.ErrorResponse
	assert.Equal(t, http.StatusUnprocessableEntity, api.call("ventas", http.MethodPost, "/api/sales-orders/"+so.ID+"/confirm", nil, &e))
	assert.Equal(t, "INSUFFICIENT_STOCK", e.Code)
	assert.Contains(t, e.Message, "TOR-1")

	var mov dto.StockMovementResponse
	require.Equal(t, http.StatusCreated, api.call("bodeguero", http.MethodPost, "/api/inventory/movements",
		map[string]any{"product_id": "p1", "movement_type": "in", "quantity": 5}, &mov))
	assert.Equal(t, "IN", mov.MovementType)

	require.Equal(t, http.StatusOK, api.call("ventas", http.MethodPost, "/api/sales-orders/"+so.ID+"/confirm", nil, &so))
	assert.Equal(t, "CONFIRMED", so.Status)

	require.Equal(t, http.StatusOK, api.call("ventas", http.MethodPost, "/api/sales-orders/"+so.ID+"/cancel",
		map[string]any{"reason": "cliente desistió"}, &so))
	assert.Equal(t, "CANCELLED", so.Status)

	var audit dto.StockAuditResponse
	require.Equal(t, http.StatusOK, api.call("bodeguero", http.MethodGet, "/api/inventory/products/p1/audit", nil, &audit))
	assert.Equal(t, 5, audit.Stock)
	assert.Equal(t, 7, audit.TotalIn)
	assert.Equal(t, 2, audit.TotalOut)
	assert.True(t, audit.InSync)
}

func TestAPI_ValidacionYErrores(t *testing.T) {
	api := newTestAPI(t)
	var e dto.ErrorResponse

	assert.Equal(t, http.StatusBadRequest, api.call("bodeguero", http.MethodPost, "/api/inventory/movements",
		map[string]any{"product_id": "p1", "movement_type": "MOVE", "quantity": 0}, &e))
	assert.Equal(t, "VALIDATION", e.Code)
	fields := map[string]bool{}
	for _, f := range e.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields["movement_type"])
	assert.True(t, fields["quantity"])

	assert.Equal(t, http.StatusBadRequest, api.call("bodeguero", http.MethodPost, "/api/inventory/movements",
		map[string]any{"product_id": "p1", "movement_type": "IN", "quantity": 3000000000}, &e))
	assert.Equal(t, "VALIDATION", e.Code)
	require.Len(t, e.Fields, 1)
	assert.Equal(t, "quantity", e.Fields[0].Field)

	assert.Equal(t, http.StatusBadRequest, api.call("compras", http.MethodPost, "/api/products",
		map[string]any{"sku": "CARO-1", "name": "Caro", "sale_price": "100000000000"}, &e))
	assert.Equal(t, "VALIDATION", e.Code)

	assert.Equal(t, http.StatusNotFound, api.call("compras", http.MethodGet, "/api/products/nope", nil, &e))
	assert.Equal(t, "NOT_FOUND", e.Code)

	assert.Equal(t, http.StatusConflict, api.call("compras", http.MethodPost, "/api/products",
		map[string]any{"sku": "TOR-1", "name": "Duplicado"}, &e))
	assert.Equal(t, "DUPLICATE", e.Code)

	assert.Equal(t, http.StatusBadRequest, api.call("finanzas", http.MethodGet, "/api/finance/movements?status=PENDING", nil, &e))
	assert.Equal(t, "VALIDATION", e.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/suppliers", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, "compras"))
	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_Roles(t *testing.T) {
	api := newTestAPI(t)

	assert.Equal(t, http.StatusUnauthorized, api.call("", http.MethodGet, "/api/products", nil, nil))
	assert.Equal(t, http.StatusOK, api.call("ventas", http.MethodGet, "/api/products", nil, nil))
	assert.Equal(t, http.StatusForbidden, api.call("ventas", http.MethodPost, "/api/purchase-orders", map[string]any{"supplier_id": "s1"}, nil))
	assert.Equal(t, http.StatusForbidden, api.call("compras", http.MethodGet, "/api/finance/summary", nil, nil))
	assert.Equal(t, http.StatusOK, api.call("admin", http.MethodGet, "/api/finance/summary", nil, nil))
}

func TestAPI_HealthYMetrics(t *testing.T) {
	api := newTestAPI(t)
	assert.Equal(t, http.StatusOK, api.call("", http.MethodGet, "/health", nil, nil))
	api.call("ventas", http.MethodGet, "/api/products", nil, nil)

	resp, err := api.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `erp_test_http_requests_total{method="GET",route="/api/products`)
	assert.Contains(t, string(body), `erp_test_http_requests_total{method="GET",route="/health",status="200"} 1`)
}
