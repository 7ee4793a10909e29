package repository

import (
	"context"
	"time"

	"github.com/jhoicas/ricemill-ledger/internal/domain/entity"
)

// ThreshingRepository is the persistence port for threshing records. Soft-deleted
// rows are invisible to every read.
type ThreshingRepository interface {
	Create(ctx context.Context, record *entity.ThreshingRecord) error
	GetByID(ctx context.Context, id string) (*entity.ThreshingRecord, error)
	// GetForUpdate reads a live record and holds its row lock until the transaction ends.
	GetForUpdate(ctx context.Context, id string) (*entity.ThreshingRecord, error)
	GetByBatchNumber(ctx context.Context, batchNumber string) (*entity.ThreshingRecord, error)
	Update(ctx context.Context, record *entity.ThreshingRecord) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, status entity.ThreshingStatus, limit, offset int) ([]*entity.ThreshingRecord, error)
	CountByBatchPrefix(ctx context.Context, prefix string) (int64, error)
	Summary(ctx context.Context, from, to time.Time) (*entity.ThreshingSummary, error)
}
