package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/erp-core/internal/application/catalog"
	"github.com/jhoicas/erp-core/internal/application/finance"
	"github.com/jhoicas/erp-core/internal/application/inventory"
	"github.com/jhoicas/erp-core/internal/application/ports"
	"github.com/jhoicas/erp-core/internal/application/purchasing"
	"github.com/jhoicas/erp-core/internal/application/sales"
	"github.com/jhoicas/erp-core/internal/infrastructure/metrics"
	"github.com/jhoicas/erp-core/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/erp-core/internal/interfaces/http"
	"github.com/jhoicas/erp-core/pkg/config"
	"github.com/jhoicas/erp-core/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if cfg.DB.AutoMigrate {
		m, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
		if err != nil {
			log.Fatal().Err(err).Msg("inicializar migraciones")
		}
		if err := m.Up(); err != nil {
			log.Fatal().Err(err).Msg("aplicar migraciones")
		}
		_ = m.Close()
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	var (
		m   *metrics.Metrics
		rec ports.TransitionRecorder = ports.NopRecorder{}
	)
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Prefix)
		rec = m
	}

	txRunner := postgres.NewTxRunner(pool)
	stock := inventory.NewService(txRunner, log.Named("inventory"), rec)
	ledger := finance.NewService(txRunner, log.Named("finance"), rec)
	payables, receivables := orderLedgers(cfg.Finance, ledger)
	if !cfg.Finance.Enabled {
		log.Warn().Msg("finanzas deshabilitado: compras y ventas no generan cuentas por pagar/cobrar")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	if cfg.App.SwaggerFile != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.App.SwaggerFile,
			Path:     "docs",
			Title:    "ERP Core API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Catalog:    catalog.NewService(txRunner, log.Named("catalog")),
		Inventory:  stock,
		Purchasing: purchasing.NewService(txRunner, stock, payables, log.Named("purchasing"), rec),
		Sales:      sales.NewService(txRunner, stock, receivables, log.Named("sales"), rec),
		Finance:    ledger,
		DB:         txRunner,
		Metrics:    m,
		Log:        log,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// orderLedgers con finanzas deshabilitado las órdenes usan finance.Noop; las rutas /api/finance siguen leyendo el ledger.
func orderLedgers(cfg config.FinanceConfig, svc *finance.Service) (purchasing.PayableLedger, sales.ReceivableLedger) {
	if !cfg.Enabled {
		return finance.Noop{}, finance.Noop{}
	}
	return svc, svc
}
