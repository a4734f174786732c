package postgres

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/erp-core/pkg/config"
	"github.com/jhoicas/erp-core/pkg/logger"
)

// Base compartida por todos los tests del paquete: TEST_DATABASE_URL (.env.test) o un contenedor efímero.
var (
	sharedOnce      sync.Once
	sharedPool      *pgxpool.Pool
	sharedDSN       string
	sharedErr       error
	sharedContainer testcontainers.Container
)

func TestMain(m *testing.M) {
	code := m.Run()
	if sharedPool != nil {
		sharedPool.Close()
	}
	if sharedContainer != nil {
		_ = sharedContainer.Terminate(context.Background())
	}
	os.Exit(code)
}

func startDB() {
	_ = godotenv.Load("../../../.env.test")
	ctx := context.Background()
	sharedDSN = os.Getenv("TEST_DATABASE_URL")
	if sharedDSN == "" {
		c, err := tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("erp_test"),
			tcpostgres.WithUsername("postgres"),
			tcpostgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		if err != nil {
			sharedErr = err
			return
		}
		sharedContainer = c
		if sharedDSN, err = c.ConnectionString(ctx, "sslmode=disable"); err != nil {
			sharedErr = err
			return
		}
	}
	m, err := NewMigrator(sharedDSN, logger.Nop())
	if err != nil {
		sharedErr = err
		return
	}
	defer m.Close()
	if sharedErr = m.Up(); sharedErr != nil {
		return
	}
	sharedPool, sharedErr = NewPool(ctx, config.DBConfig{DatabaseURL: sharedDSN, MaxConns: 10, MinConns: 1})
}

// testPool base migrada y vacía; omite el test si no hay PostgreSQL disponible.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("integración con PostgreSQL omitida con -short")
	}
	sharedOnce.Do(startDB)
	if sharedErr != nil {
		t.Skipf("sin PostgreSQL de pruebas: %v", sharedErr)
	}
	_, err := sharedPool.Exec(context.Background(), `
		TRUNCATE financial_movements, sales_order_lines, sales_orders, purchase_order_lines,
		         purchase_orders, stock_movements, products, suppliers`)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return sharedPool
}
