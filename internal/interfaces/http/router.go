package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/erp-core/internal/application/catalog"
	"github.com/jhoicas/erp-core/internal/application/finance"
	"github.com/jhoicas/erp-core/internal/application/inventory"
	"github.com/jhoicas/erp-core/internal/application/purchasing"
	"github.com/jhoicas/erp-core/internal/application/sales"
	"github.com/jhoicas/erp-core/internal/infrastructure/metrics"
	"github.com/jhoicas/erp-core/pkg/logger"
)

// Pinger verifica la conexión a la base de datos para /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Catalog    *catalog.Service
	Inventory  *inventory.Service
	Purchasing *purchasing.Service
	Sales      *sales.Service
	Finance    *finance.Service
	DB         Pinger
	Metrics    *metrics.Metrics
	Log        *logger.Logger
	JWTSecret  string
}

// Router registra middlewares globales y las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	if deps.Metrics != nil {
		app.Use(MetricsMiddleware(deps.Metrics))
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if deps.DB != nil {
			if err := deps.DB.Ping(c.UserContext()); err != nil {
				log.Error().Err(err).Msg("health: base de datos no disponible")
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "database": "down"})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Rutas protegidas: Bearer Token con rol; las lecturas no piden rol específico
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret), RequireRole())

	// Catálogo
	catalogHandler := NewCatalogHandler(deps.Catalog, log)
	products := api.Group("/products")
	products.Get("/", catalogHandler.ListProducts)
	products.Get("/:id", catalogHandler.GetProduct)
	products.Post("/", RequireRole(RoleCompras), catalogHandler.CreateProduct)
	products.Put("/:id", RequireRole(RoleCompras), catalogHandler.UpdateProduct)

	suppliers := api.Group("/suppliers")
	suppliers.Get("/", catalogHandler.ListSuppliers)
	suppliers.Get("/:id", catalogHandler.GetSupplier)
	suppliers.Post("/", RequireRole(RoleCompras), catalogHandler.CreateSupplier)
	suppliers.Put("/:id", RequireRole(RoleCompras), catalogHandler.UpdateSupplier)

	// Inventario
	inventoryHandler := NewInventoryHandler(deps.Inventory, log)
	inv := api.Group("/inventory")
	inv.Post("/movements", RequireRole(RoleBodeguero), inventoryHandler.RecordMovement)
	inv.Get("/movements", inventoryHandler.ListMovements)
	inv.Get("/products/:id/audit", RequireRole(RoleBodeguero, RoleFinanzas), inventoryHandler.StockAudit)

	// Compras
	poHandler := NewPurchaseOrderHandler(deps.Purchasing, log)
	buyer := RequireRole(RoleCompras)
	po := api.Group("/purchase-orders")
	po.Get("/", poHandler.List)
	po.Get("/:id", poHandler.Get)
	po.Post("/", buyer, poHandler.Create)
	po.Post("/:id/lines", buyer, poHandler.AddLine)
	po.Put("/:id/lines/:lineId", buyer, poHandler.UpdateLine)
	po.Delete("/:id/lines/:lineId", buyer, poHandler.RemoveLine)
	po.Post("/:id/confirm", buyer, poHandler.Confirm)
	po.Post("/:id/receive", RequireRole(RoleCompras, RoleBodeguero), poHandler.Receive)
	po.Post("/:id/cancel", buyer, poHandler.Cancel)

	// Ventas
	soHandler := NewSalesOrderHandler(deps.Sales, log)
	seller := RequireRole(RoleVentas)
	so := api.Group("/sales-orders")
	so.Get("/", soHandler.List)
	so.Get("/:id", soHandler.Get)
	so.Post("/", seller, soHandler.Create)
	so.Post("/:id/lines", seller, soHandler.AddLine)
	so.Put("/:id/lines/:lineId", seller, soHandler.UpdateLine)
	so.Delete("/:id/lines/:lineId", seller, soHandler.RemoveLine)
	so.Post("/:id/confirm", seller, soHandler.Confirm)
	so.Post("/:id/cancel", seller, soHandler.Cancel)

	// Finanzas
	finHandler := NewFinanceHandler(deps.Finance, log)
	cashier := RequireRole(RoleFinanzas)
	fin := api.Group("/finance", cashier)
	fin.Get("/movements", finHandler.List)
	fin.Get("/movements/:id", finHandler.Get)
	fin.Post("/movements/:id/pay", finHandler.Pay)
	fin.Get("/summary", finHandler.Summary)
}
