// seed_catalog carga productos desde un CSV exportado de hoja de cálculo.
//
// Uso: go run ./cmd/seed_catalog [-latin1] [-actor usuario] ruta/productos.csv
// Columnas (cabecera obligatoria, separador , o ;): sku, name, purchase_cost, sale_price, stock.
// stock es opcional; si es > 0 se registra como movimiento IN "Carga inicial".
// Los SKU ya existentes se omiten.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/erp-core/internal/application/catalog"
	"github.com/jhoicas/erp-core/internal/application/inventory"
	"github.com/jhoicas/erp-core/internal/application/ports"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/money"
	"github.com/jhoicas/erp-core/internal/domain/repository"
	"github.com/jhoicas/erp-core/internal/infrastructure/postgres"
	"github.com/jhoicas/erp-core/pkg/config"
	"github.com/jhoicas/erp-core/pkg/logger"
)

type row struct {
	line  int
	input catalog.CreateProductInput
	stock int
}

func main() {
	latin1 := flag.Bool("latin1", false, "el archivo está en ISO-8859-1 (exportación de Excel)")
	actor := flag.String("actor", "seed", "usuario registrado en los movimientos de carga inicial")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Uso: seed_catalog [-latin1] [-actor usuario] productos.csv")
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	rows, err := parseRows(f, *latin1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level}).Named("seed_catalog")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	tx := postgres.NewTxRunner(pool)
	created, skipped, err := load(ctx, tx, catalog.NewService(tx, log), inventory.NewService(tx, log, ports.NopRecorder{}), rows, *actor)
	if err != nil {
		log.Error().Err(err).Int("creados", created).Msg("carga interrumpida")
		pool.Close()
		os.Exit(1)
	}
	fmt.Printf("Productos creados: %d, omitidos (SKU existente): %d\n", created, skipped)
}

// parseRows lee la cabecera, detecta el separador y convierte cada fila.
func parseRows(r io.Reader, latin1 bool) ([]row, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := strings.TrimPrefix(string(raw), "\ufeff")
	header, _, _ := strings.Cut(text, "\n")

	cr := csv.NewReader(strings.NewReader(text))
	if strings.Count(header, ";") > strings.Count(header, ",") {
		cr.Comma = ';'
	}
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("archivo vacío")
	}

	col := map[string]int{}
	for i, h := range records[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, req := range []string{"sku", "name", "purchase_cost", "sale_price"} {
		if _, ok := col[req]; !ok {
			return nil, fmt.Errorf("falta la columna %q", req)
		}
	}
	get := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	out := make([]row, 0, len(records)-1)
	for n, rec := range records[1:] {
		line := n + 2
		if get(rec, "sku") == "" {
			continue
		}
		cost, err := parseAmount("purchase_cost", get(rec, "purchase_cost"))
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		price, err := parseAmount("sale_price", get(rec, "sale_price"))
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		stock := 0
		if s := get(rec, "stock"); s != "" {
			if stock, err = strconv.Atoi(s); err != nil || stock < 0 {
				return nil, fmt.Errorf("línea %d: stock %q inválido", line, s)
			}
		}
		out = append(out, row{
			line: line,
			input: catalog.CreateProductInput{
				SKU:          get(rec, "sku"),
				Name:         get(rec, "name"),
				PurchaseCost: cost,
				SalePrice:    price,
			},
			stock: stock,
		})
	}
	return out, nil
}

// parseAmount acepta coma decimal ("12,50") además de punto. Vacío vale 0.
func parseAmount(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return money.Zero, nil
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return money.Parse(field, s)
}

// load crea cada producto junto con su movimiento de carga inicial en una sola transacción.
func load(ctx context.Context, tx repository.TxRunner, cat *catalog.Service, stock *inventory.Service, rows []row, actor string) (created, skipped int, err error) {
	for _, r := range rows {
		err := tx.Run(ctx, repository.LockSet{}, func(ctx context.Context, st repository.Store) error {
			p, err := cat.CreateProductInTx(ctx, st, r.input)
			if err != nil {
				return err
			}
			if r.stock == 0 {
				return nil
			}
			if err := st.Lock(ctx, repository.LockSet{Products: []string{p.ID}}); err != nil {
				return err
			}
			if _, err := stock.ApplyInTx(ctx, st, inventory.RecordMovementInput{
				ProductID: p.ID,
				Type:      entity.MovementIn,
				Quantity:  r.stock,
				Note:      "Carga inicial",
				Actor:     actor,
			}); err != nil {
				return fmt.Errorf("stock inicial: %w", err)
			}
			return nil
		})
		if errors.Is(err, domain.ErrDuplicate) {
			skipped++
			continue
		}
		if err != nil {
			return created, skipped, fmt.Errorf("línea %d (%s): %w", r.line, r.input.SKU, err)
		}
		created++
	}
	return created, skipped, nil
}
