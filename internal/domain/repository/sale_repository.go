package repository

import (
	"context"

	"github.com/jhoicas/ricemill-ledger/internal/domain/entity"
)

// SaleRepository is the persistence port for sales.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	CountByInvoicePrefix(ctx context.Context, prefix string) (int64, error)
}
