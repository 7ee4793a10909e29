package analytics

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ricemill-ledger/internal/domain/entity"
)

// SummaryCache holds the stock totals per product type between ledger mutations.
// A miss or a cache failure returns ok == false; callers then read the database.
type SummaryCache interface {
	GetSummary(ctx context.Context) (totals map[entity.ProductType]decimal.Decimal, ok bool)
	SetSummary(ctx context.Context, totals map[entity.ProductType]decimal.Decimal)
}

type noCache struct{}

func (noCache) GetSummary(context.Context) (map[entity.ProductType]decimal.Decimal, bool) {
	return nil, false
}

func (noCache) SetSummary(context.Context, map[entity.ProductType]decimal.Decimal) {}
