package repository

import (
	"context"

	"github.com/jhoicas/ricemill-ledger/internal/domain/entity"
)

// ProcessingRecordRepository is the append-only port for paddy to rice conversions.
type ProcessingRecordRepository interface {
	Create(ctx context.Context, record *entity.ProcessingRecord) error
	GetByID(ctx context.Context, id string) (*entity.ProcessingRecord, error)
}
