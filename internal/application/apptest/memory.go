// Package apptest implementa repository.TxRunner en memoria para tests de servicios y handlers.
//
// Cada Run toma un mutex global (serializa como un lock de tabla), trabaja sobre el estado
// vivo y, si fn falla, restaura una copia profunda tomada al inicio. Reproduce las constraints
// del esquema que los servicios dan por garantizadas: SKU único, terna financiera única,
// línea única por (orden, producto), stock >= 0, paid_at ⇔ PAID.
package apptest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/money"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

// DB base en memoria.
type DB struct {
	mu sync.Mutex
	st state

	faultsMu sync.Mutex
	faults   map[string]*fault

	// LockLog secuencia de locks adquiridos (para verificar orden canónico).
	LockLog []repository.LockKey
	// Commits y Rollbacks contadores de transacciones terminadas.
	Commits   int
	Rollbacks int
}

type state struct {
	products  map[string]*entity.Product
	suppliers map[string]*entity.Supplier
	movements []*entity.StockMovement
	pos       map[string]*entity.PurchaseOrder // sin líneas
	poLines   []*entity.PurchaseOrderLine
	sos       map[string]*entity.SalesOrder
	soLines   []*entity.SalesOrderLine
	fin       map[string]*entity.FinancialMovement
}

// New base vacía.
func New() *DB {
	return &DB{
		st: state{
			products:  map[string]*entity.Product{},
			suppliers: map[string]*entity.Supplier{},
			pos:       map[string]*entity.PurchaseOrder{},
			sos:       map[string]*entity.SalesOrder{},
			fin:       map[string]*entity.FinancialMovement{},
		},
		faults: map[string]*fault{},
	}
}

var _ repository.TxRunner = (*DB)(nil)

type fault struct {
	skip int
	err  error
}

// FailOn hace que la próxima llamada a op devuelva err (una sola vez).
// Ops: "products.update_stock", "stock_movements.create", "financial.get_or_create",
// "financial.update", "purchase_orders.update", "sales_orders.update".
func (db *DB) FailOn(op string, err error) {
	db.FailAfter(op, 0, err)
}

// FailAfter deja pasar skip llamadas a op y hace fallar la siguiente.
func (db *DB) FailAfter(op string, skip int, err error) {
	db.faultsMu.Lock()
	defer db.faultsMu.Unlock()
	db.faults[op] = &fault{skip: skip, err: err}
}

func (db *DB) fault(op string) error {
	db.faultsMu.Lock()
	defer db.faultsMu.Unlock()
	f, ok := db.faults[op]
	if !ok {
		return nil
	}
	if f.skip > 0 {
		f.skip--
		return nil
	}
	delete(db.faults, op)
	return f.err
}

// Run ejecuta fn en una transacción simulada.
func (db *DB) Run(ctx context.Context, locks repository.LockSet, fn func(ctx context.Context, s repository.Store) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	snapshot := db.st.clone()
	s := &store{db: db, inTx: true}
	defer func() {
		if p := recover(); p != nil {
			db.st = snapshot
			db.Rollbacks++
			panic(p)
		}
		if err != nil {
			db.st = snapshot
			db.Rollbacks++
			return
		}
		db.Commits++
	}()

	if err := s.lock(locks); err != nil {
		return err
	}
	return fn(ctx, s)
}

// Reader lecturas fuera de transacción.
func (db *DB) Reader() repository.Store {
	return &store{db: db}
}

// ──────────────────────────────────────────────────────────────────────────────
// Siembra e inspección directa (sólo tests)
// ──────────────────────────────────────────────────────────────────────────────

// SeedProduct inserta un producto tal cual (incluido stock inicial).
func (db *DB) SeedProduct(p *entity.Product) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.st.products[p.ID] = cloneProduct(p)
}

// SeedSupplier inserta un proveedor tal cual.
func (db *DB) SeedSupplier(s *entity.Supplier) {
	db.mu.Lock()
	defer db.mu.Unlock()
	c := *s
	db.st.suppliers[s.ID] = &c
}

// Product copia actual del producto (nil si no existe).
func (db *DB) Product(id string) *entity.Product {
	db.mu.Lock()
	defer db.mu.Unlock()
	if p, ok := db.st.products[id]; ok {
		return cloneProduct(p)
	}
	return nil
}

// Movements copia del ledger de inventario en orden de creación.
func (db *DB) Movements() []*entity.StockMovement {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]*entity.StockMovement, 0, len(db.st.movements))
	for _, m := range db.st.movements {
		c := *m
		out = append(out, &c)
	}
	return out
}

// FinancialMovements copia del ledger financiero.
func (db *DB) FinancialMovements() []*entity.FinancialMovement {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]*entity.FinancialMovement, 0, len(db.st.fin))
	for _, m := range db.st.fin {
		out = append(out, m.Clone())
	}
	return out
}

// ResetLockLog limpia el registro de locks.
func (db *DB) ResetLockLog() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.LockLog = nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Store
// ──────────────────────────────────────────────────────────────────────────────

type store struct {
	db   *DB
	inTx bool
}

// do ejecuta f con el mutex tomado si no estamos dentro de Run.
func (s *store) do(f func(st *state) error) error {
	if !s.inTx {
		s.db.mu.Lock()
		defer s.db.mu.Unlock()
	}
	return f(&s.db.st)
}

func (s *store) Products() repository.ProductRepository { return productRepo{s} }
func (s *store) Suppliers() repository.SupplierRepository { return supplierRepo{s} }
func (s *store) StockMovements() repository.StockMovementRepository { return movementRepo{s} }
func (s *store) PurchaseOrders() repository.PurchaseOrderRepository { return purchaseRepo{s} }
func (s *store) SalesOrders() repository.SalesOrderRepository { return salesRepo{s} }
func (s *store) FinancialMovements() repository.FinancialMovementRepository {
	return financialRepo{s}
}

func (s *store) Lock(ctx context.Context, locks repository.LockSet) error {
	if !s.inTx {
		return errors.New("apptest: Lock fuera de transacción")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.lock(locks)
}

func (s *store) lock(locks repository.LockSet) error {
	if locks.Empty() {
		return nil
	}
	for _, k := range locks.Keys() {
		var ok bool
		var entityName string
		switch k.Kind {
		case repository.LockPurchaseOrder:
			_, ok = s.db.st.pos[k.ID]
			entityName = "orden de compra"
		case repository.LockSalesOrder:
			_, ok = s.db.st.sos[k.ID]
			entityName = "orden de venta"
		case repository.LockProduct:
			_, ok = s.db.st.products[k.ID]
			entityName = "producto"
		case repository.LockFinancialMovement:
			_, ok = s.db.st.fin[k.ID]
			entityName = "movimiento financiero"
		}
		if !ok {
			return domain.NotFound(entityName, k.ID)
		}
		s.db.LockLog = append(s.db.LockLog, k)
	}
	return nil
}

func integrity(kind, constraint string) error {
	return &domain.IntegrityError{Kind: kind, Constraint: constraint}
}

// outOfRange emula el desborde (22003) de columnas INTEGER y NUMERIC(p,2).
func outOfRange(column string) error {
	return integrity(domain.IntegrityCheck, column)
}

func priceOutOfRange(d decimal.Decimal) bool { return money.Exceeds(d, money.MaxUnit) }

func notFoundRow(entityName, id string) error {
	return fmt.Errorf("apptest: %w", domain.NotFound(entityName, id))
}
