package repository

import (
	"context"

	"github.com/jhoicas/ricemill-ledger/internal/domain/entity"
)

// BatchRepository is the persistence port for the batch catalog.
// Lookups return (nil, nil) when nothing matches.
type BatchRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Batch, error)
	FindByTypeAndCode(ctx context.Context, productType entity.ProductType, code string) (*entity.Batch, error)
	// CreateIfAbsent inserts b unless (type, code) already exists and returns the stored row.
	CreateIfAbsent(ctx context.Context, b *entity.Batch) (*entity.Batch, error)
	ListByType(ctx context.Context, productType entity.ProductType, limit, offset int) ([]*entity.Batch, error)
}
