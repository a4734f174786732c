package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

var _ repository.Store = (*Store)(nil)

// Store repositorios sobre un mismo Querier (pool o tx).
type Store struct {
	q    Querier
	inTx bool
}

func (s *Store) Products() repository.ProductRepository   { return NewProductRepository(s.q) }
func (s *Store) Suppliers() repository.SupplierRepository { return NewSupplierRepository(s.q) }
func (s *Store) StockMovements() repository.StockMovementRepository {
	return NewStockMovementRepository(s.q)
}
func (s *Store) PurchaseOrders() repository.PurchaseOrderRepository {
	return NewPurchaseOrderRepository(s.q)
}
func (s *Store) SalesOrders() repository.SalesOrderRepository { return NewSalesOrderRepository(s.q) }
func (s *Store) FinancialMovements() repository.FinancialMovementRepository {
	return NewFinancialMovementRepository(s.q)
}

// lockTarget tabla y nombre de entidad por tipo de lock.
var lockTarget = map[repository.LockKind]struct {
	table  string
	entity string
}{
	repository.LockPurchaseOrder:     {"purchase_orders", "orden de compra"},
	repository.LockSalesOrder:        {"sales_orders", "orden de venta"},
	repository.LockProduct:           {"products", "producto"},
	repository.LockFinancialMovement: {"financial_movements", "movimiento financiero"},
}

// Lock SELECT ... FOR UPDATE por tipo en orden canónico (una consulta por tipo, filas por id ascendente).
func (s *Store) Lock(ctx context.Context, locks repository.LockSet) error {
	if !s.inTx {
		return errors.New("postgres: Lock requiere una transacción")
	}
	if locks.Empty() {
		return nil
	}
	c := locks.Canonical()
	for _, group := range []struct {
		kind repository.LockKind
		ids  []string
	}{
		{repository.LockPurchaseOrder, c.PurchaseOrders},
		{repository.LockSalesOrder, c.SalesOrders},
		{repository.LockProduct, c.Products},
		{repository.LockFinancialMovement, c.FinancialMovements},
	} {
		if len(group.ids) == 0 {
			continue
		}
		if err := s.lockRows(ctx, group.kind, group.ids); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) lockRows(ctx context.Context, kind repository.LockKind, ids []string) error {
	target := lockTarget[kind]
	query := fmt.Sprintf(`SELECT id::text FROM %s WHERE id = ANY($1::uuid[]) ORDER BY id FOR UPDATE`, target.table)
	rows, err := s.q.Query(ctx, query, validIDs(ids))
	if err != nil {
		return fmt.Errorf("lock %s: %w", kind, err)
	}
	defer rows.Close()
	found := make(map[string]struct{}, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("lock %s: %w", kind, err)
		}
		found[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("lock %s: %w", kind, err)
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return domain.NotFound(target.entity, id)
		}
	}
	return nil
}
