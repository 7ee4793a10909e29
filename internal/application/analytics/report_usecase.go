// Package analytics serves the read side of the ledger: balances, movement
// history, processing records and the dashboard.
package analytics

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ricemill-ledger/internal/application/dto"
	"github.com/jhoicas/ricemill-ledger/internal/domain"
	"github.com/jhoicas/ricemill-ledger/internal/domain/entity"
	"github.com/jhoicas/ricemill-ledger/internal/domain/inventory"
	"github.com/jhoicas/ricemill-ledger/internal/domain/repository"
)

const maxLowStockRows = 100

// ReportUseCase answers stock and movement queries. None of them lock rows.
type ReportUseCase struct {
	reports    repository.StockReportRepository
	batches    repository.BatchRepository
	processing repository.ProcessingRecordRepository
	cache      SummaryCache
}

// NewReportUseCase builds the use case. cache may be nil.
func NewReportUseCase(
	reports repository.StockReportRepository,
	batches repository.BatchRepository,
	processing repository.ProcessingRecordRepository,
	cache SummaryCache,
) *ReportUseCase {
	if cache == nil {
		cache = noCache{}
	}
	return &ReportUseCase{reports: reports, batches: batches, processing: processing, cache: cache}
}

// Balance returns one balance row by id.
func (uc *ReportUseCase) Balance(ctx context.Context, id string) (*dto.BalanceResponse, error) {
	v, err := uc.reports.GetBalance(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.NotFound("balance %s not found", id)
	}
	out := dto.FromBalanceView(v)
	return &out, nil
}

// Balances lists a warehouse's rows, or every row when warehouseID is empty.
func (uc *ReportUseCase) Balances(ctx context.Context, warehouseID, productType string, page dto.PageRequest) (*dto.BalanceListResponse, error) {
	t, err := optionalType(productType)
	if err != nil {
		return nil, err
	}
	page.Normalize()
	list, err := uc.reports.ListBalancesByWarehouse(ctx, warehouseID, t, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return &dto.BalanceListResponse{
		Items: dto.FromBalanceViews(list),
		Page:  page.Of(len(list)),
	}, nil
}

// BalancesByBatch lists where a batch is held.
func (uc *ReportUseCase) BalancesByBatch(ctx context.Context, batchID string) ([]dto.BalanceResponse, error) {
	list, err := uc.reports.ListBalancesByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	return dto.FromBalanceViews(list), nil
}

// Summary returns total stock per product type, from the cache when it is current.
func (uc *ReportUseCase) Summary(ctx context.Context) (*dto.StockSummaryResponse, error) {
	totals, ok := uc.cache.GetSummary(ctx)
	if !ok {
		var err error
		totals, err = uc.reports.SumByProductType(ctx)
		if err != nil {
			return nil, err
		}
		uc.cache.SetSummary(ctx, totals)
	}
	return &dto.StockSummaryResponse{
		Paddy: totals[entity.ProductTypePaddy],
		Rice:  totals[entity.ProductTypeRice],
		Unit:  entity.UnitKG,
	}, nil
}

// LowStock lists rows whose quantity is below threshold, zero rows included.
func (uc *ReportUseCase) LowStock(ctx context.Context, threshold decimal.Decimal) ([]dto.BalanceResponse, error) {
	if threshold.IsNegative() {
		return nil, domain.InvalidInput("threshold cannot be negative")
	}
	list, err := uc.reports.ListLowStock(ctx, threshold, maxLowStockRows)
	if err != nil {
		return nil, err
	}
	return dto.FromBalanceViews(list), nil
}

// Movements filters the movement history, newest first.
func (uc *ReportUseCase) Movements(ctx context.Context, q dto.MovementQuery) (*dto.MovementListResponse, error) {
	t, err := optionalType(q.ProductType)
	if err != nil {
		return nil, err
	}
	mt := entity.MovementType(q.MovementType)
	if mt != "" && !mt.Valid() {
		return nil, domain.InvalidInput("unknown movement type %q", q.MovementType)
	}
	if q.From != nil && q.To != nil && q.From.After(*q.To) {
		return nil, domain.InvalidInput("from must not be after to")
	}
	q.Normalize()
	list, err := uc.reports.ListMovements(ctx, repository.MovementFilter{
		ProductType:  t,
		MovementType: mt,
		WarehouseID:  q.WarehouseID,
		BatchID:      q.BatchID,
		ReferenceNo:  q.ReferenceNo,
		From:         q.From,
		To:           q.To,
		Limit:        q.Limit,
		Offset:       q.Offset,
	})
	if err != nil {
		return nil, err
	}
	return &dto.MovementListResponse{
		Items: dto.FromMovements(list),
		Page:  q.Of(len(list)),
	}, nil
}

// RecentMovements returns the latest movements by performed time.
func (uc *ReportUseCase) RecentMovements(ctx context.Context, limit int) ([]dto.MovementResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	list, err := uc.reports.RecentMovements(ctx, limit)
	if err != nil {
		return nil, err
	}
	return dto.FromMovements(list), nil
}

// ProcessingRecord returns one paddy to rice conversion.
func (uc *ReportUseCase) ProcessingRecord(ctx context.Context, id string) (*dto.ProcessingRecordResponse, error) {
	r, err := uc.processing.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.NotFound("processing record %s not found", id)
	}
	out := dto.FromProcessingRecord(r)
	return &out, nil
}

// Batch looks a batch up by product type and code. The code is normalized first.
func (uc *ReportUseCase) Batch(ctx context.Context, productType, code string) (*dto.BatchResponse, error) {
	t, ok := entity.ParseProductType(productType)
	if !ok {
		return nil, domain.InvalidInput("unknown product type %q", productType)
	}
	code = inventory.NormalizeBatchCode(code)
	b, err := uc.batches.FindByTypeAndCode(ctx, t, code)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.NotFound("%s batch %s not found", t, code)
	}
	return dto.FromBatch(b), nil
}

// Batches lists the batches of one product type.
func (uc *ReportUseCase) Batches(ctx context.Context, productType string, page dto.PageRequest) ([]dto.BatchResponse, error) {
	t, ok := entity.ParseProductType(productType)
	if !ok {
		return nil, domain.InvalidInput("unknown product type %q", productType)
	}
	page.Normalize()
	list, err := uc.batches.ListByType(ctx, t, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	out := make([]dto.BatchResponse, 0, len(list))
	for _, b := range list {
		out = append(out, *dto.FromBatch(b))
	}
	return out, nil
}

func optionalType(s string) (entity.ProductType, error) {
	if s == "" {
		return "", nil
	}
	t, ok := entity.ParseProductType(s)
	if !ok {
		return "", domain.InvalidInput("unknown product type %q", s)
	}
	return t, nil
}
