package inventory

import (
	"context"

	"github.com/jhoicas/ricemill-ledger/internal/domain/repository"
)

// Repos are the repositories bound to one database transaction.
type Repos struct {
	Batches    repository.BatchRepository
	Warehouses repository.WarehouseRepository
	Balances   repository.BalanceRepository
	Movements  repository.StockMovementRepository
	Processing repository.ProcessingRecordRepository
}

// TxRunner runs fn inside a database transaction with repositories bound to it.
// A non-nil error from fn rolls the transaction back; nil commits it.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error
}

// ChangeNotifier is told after a stock mutation has committed.
type ChangeNotifier interface {
	StockChanged(ctx context.Context)
}
