package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/erp-core/internal/domain/repository"
)

var _ repository.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción READ COMMITTED, bloquea locks en orden canónico, ejecuta fn
// con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, locks repository.LockSet, fn func(ctx context.Context, s repository.Store) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	s := &Store{q: tx, inTx: true}
	if err := s.Lock(ctx, locks); err != nil {
		return err
	}
	if err := fn(ctx, s); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Reader repos sobre el pool, para lecturas sin transacción.
func (r *TxRunner) Reader() repository.Store {
	return &Store{q: r.pool}
}

// Ping verifica la conexión (health check).
func (r *TxRunner) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
