package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/ricemill-ledger/internal/application/inventory"
	"github.com/jhoicas/ricemill-ledger/internal/application/sales"
	"github.com/jhoicas/ricemill-ledger/internal/application/threshing"
	"github.com/jhoicas/ricemill-ledger/internal/domain/repository"
)

var (
	_ inventory.TxRunner = (*TxRunner)(nil)
	_ sales.TxRunner     = (*TxRunner)(nil)
	_ threshing.TxRunner = (*TxRunner)(nil)
)

// TxRunner runs callbacks inside a PostgreSQL transaction. Each transaction sets
// a local lock_timeout so a blocked SELECT ... FOR UPDATE fails with 55P03
// instead of waiting forever; that and serialization failures surface as
// retryable domain errors.
type TxRunner struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewTxRunner builds the runner. A non-positive lockTimeout leaves the server default.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, lockTimeout: lockTimeout}
}

// Run implements inventory.TxRunner.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos) error) error {
	return r.run(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, ledgerRepos(tx))
	})
}

// RunSale implements sales.TxRunner.
func (r *TxRunner) RunSale(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos, sales repository.SaleRepository) error) error {
	return r.run(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, ledgerRepos(tx), NewSaleRepository(tx))
	})
}

// RunThreshing implements threshing.TxRunner.
func (r *TxRunner) RunThreshing(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos, records repository.ThreshingRepository) error) error {
	return r.run(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, ledgerRepos(tx), NewThreshingRepository(tx))
	})
}

func (r *TxRunner) run(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return mapError(fmt.Errorf("begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if r.lockTimeout > 0 {
		ms := fmt.Sprintf("%dms", r.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, `SELECT set_config('lock_timeout', $1, true)`, ms); err != nil {
			return fmt.Errorf("set lock_timeout: %w", err)
		}
	}

	if err := fn(ctx, tx); err != nil {
		return mapError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

func ledgerRepos(tx pgx.Tx) inventory.Repos {
	return inventory.Repos{
		Batches:    NewBatchRepository(tx),
		Warehouses: NewWarehouseRepository(tx),
		Balances:   NewBalanceRepository(tx),
		Movements:  NewStockMovementRepository(tx),
		Processing: NewProcessingRecordRepository(tx),
	}
}
