package threshing

import (
	"context"

	"github.com/jhoicas/ricemill-ledger/internal/application/inventory"
	"github.com/jhoicas/ricemill-ledger/internal/domain/repository"
)

// TxRunner runs fn in one transaction covering the ledger and the threshing table.
type TxRunner interface {
	RunThreshing(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos, records repository.ThreshingRepository) error) error
}

// Ledger is the slice of the inventory engine a completed run needs.
type Ledger interface {
	Execute(ctx context.Context, op string, txFn func(ctx context.Context) error) error
	ProcessInTx(ctx context.Context, repos inventory.Repos, in inventory.ProcessInput) (*inventory.ProcessResult, error)
}
