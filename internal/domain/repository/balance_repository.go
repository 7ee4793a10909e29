package repository

import (
	"context"

	"github.com/jhoicas/ricemill-ledger/internal/domain/entity"
)

// BalanceRepository is the write port over inventory balances. It is only used
// inside a ledger transaction.
type BalanceRepository interface {
	// GetForUpdate reads the row and holds an exclusive lock on it until the
	// transaction ends. Returns (nil, nil) if the row does not exist.
	GetForUpdate(ctx context.Context, key entity.BalanceKey) (*entity.InventoryBalance, error)
	// InsertIfAbsent creates a zero row for the key; a concurrent insert of the same key is not an error.
	InsertIfAbsent(ctx context.Context, b *entity.InventoryBalance) error
	// Update persists Quantity when the stored version still equals b.Version,
	// then bumps b.Version. A stale version fails with a Conflict error.
	Update(ctx context.Context, b *entity.InventoryBalance) error
}
