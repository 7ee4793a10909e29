package sales

import (
	"context"

	"github.com/jhoicas/ricemill-ledger/internal/application/inventory"
	"github.com/jhoicas/ricemill-ledger/internal/domain/repository"
)

// TxRunner runs fn in one transaction that covers both the ledger and the sales table.
type TxRunner interface {
	RunSale(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos, sales repository.SaleRepository) error) error
}

// Ledger is the slice of the inventory engine a sale needs. OutboundInTx uses the
// caller's repositories, so a failed outbound rolls back the sale row with it.
type Ledger interface {
	Execute(ctx context.Context, op string, txFn func(ctx context.Context) error) error
	OutboundInTx(ctx context.Context, repos inventory.Repos, in inventory.OutboundInput) (*inventory.MovementResult, error)
}
