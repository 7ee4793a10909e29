package repository

import (
	"context"

	"github.com/jhoicas/ricemill-ledger/internal/domain/entity"
)

// StockMovementRepository is the append-only port for the movement ledger.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
}
