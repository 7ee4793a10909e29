// Package threshing tracks mill runs over paddy batches. A run that reaches
// COMPLETED converts its paddy into a rice batch through the ledger, once.
package threshing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ricemill-ledger/internal/application/dto"
	"github.com/jhoicas/ricemill-ledger/internal/application/inventory"
	"github.com/jhoicas/ricemill-ledger/internal/domain"
	"github.com/jhoicas/ricemill-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/ricemill-ledger/internal/domain/inventory"
	"github.com/jhoicas/ricemill-ledger/internal/domain/repository"
	"github.com/jhoicas/ricemill-ledger/pkg/config"
	"github.com/jhoicas/ricemill-ledger/pkg/logger"
)

const (
	opCreate = "threshing_create"
	opStatus = "threshing_status"
	opDelete = "threshing_delete"

	defaultSummaryWindow = 30 * 24 * time.Hour
)

// UseCase manages threshing records.
type UseCase struct {
	tx      TxRunner
	ledger  Ledger
	records repository.ThreshingRepository
	log     *logger.Logger
	minEff  decimal.Decimal
	maxEff  decimal.Decimal
	prefix  string
	now     func() time.Time
}

// NewUseCase builds the use case. records serves reads outside a transaction.
func NewUseCase(tx TxRunner, ledger Ledger, records repository.ThreshingRepository, cfg config.ThreshingConfig, log *logger.Logger) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	prefix := cfg.BatchPrefix
	if prefix == "" {
		prefix = "TH"
	}
	return &UseCase{
		tx:      tx,
		ledger:  ledger,
		records: records,
		log:     log.Named("threshing"),
		minEff:  decimal.NewFromFloat(cfg.MinEfficiency),
		maxEff:  decimal.NewFromFloat(cfg.MaxEfficiency),
		prefix:  prefix,
		now:     time.Now,
	}
}

// WithClock overrides time.Now. Used by tests.
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// Create stores a new run. Efficiency and wastage are computed here and never
// recomputed. A run created as COMPLETED is processed in the same transaction.
func (uc *UseCase) Create(ctx context.Context, actor string, in dto.CreateThreshingRequest) (*dto.ThreshingResponse, error) {
	status := entity.ThreshingPending
	if in.Status != "" {
		status = entity.ThreshingStatus(in.Status)
	}
	if err := uc.validate(actor, status, in); err != nil {
		return nil, err
	}
	efficiency := domaininv.YieldPercent(in.InputQty, in.OutputQty)
	uc.checkBand(efficiency)

	now := uc.now()
	var rec *entity.ThreshingRecord
	err := uc.ledger.Execute(ctx, opCreate, func(ctx context.Context) error {
		return uc.tx.RunThreshing(ctx, func(ctx context.Context, repos inventory.Repos, records repository.ThreshingRepository) error {
			number, err := uc.nextBatchNumber(ctx, records, now)
			if err != nil {
				return err
			}
			r := &entity.ThreshingRecord{
				ID:            uuid.New().String(),
				BatchNumber:   number,
				PaddyBatchID:  in.PaddyBatchID,
				WarehouseID:   in.WarehouseID,
				Variety:       in.Variety,
				InputQty:      in.InputQty,
				OutputQty:     in.OutputQty,
				WastageQty:    domaininv.Wastage(in.InputQty, in.OutputQty),
				Efficiency:    efficiency,
				ThreshingDate: in.ThreshingDate,
				Operator:      in.Operator,
				MachineID:     in.MachineID,
				Status:        status,
				Notes:         in.Notes,
				CreatedBy:     actor,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if status == entity.ThreshingCompleted {
				if err := uc.complete(ctx, repos, r, actor); err != nil {
					return err
				}
			}
			if err := records.Create(ctx, r); err != nil {
				return err
			}
			rec = r
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("batch_number", rec.BatchNumber).
		Str("status", string(rec.Status)).
		Str("efficiency", rec.Efficiency.StringFixed(2)).
		Str("performed_by", actor).
		Msg("threshing record created")
	return dto.FromThreshing(rec), nil
}

// UpdateStatus moves a run to another status. Reaching COMPLETED runs the
// paddy to rice conversion; a completed run cannot leave that status.
func (uc *UseCase) UpdateStatus(ctx context.Context, actor, id string, status entity.ThreshingStatus) (*dto.ThreshingResponse, error) {
	if !status.Valid() {
		return nil, domain.InvalidInput("unknown threshing status %q", status)
	}
	if actor == "" {
		return nil, domain.InvalidInput("performed_by is required")
	}
	var rec *entity.ThreshingRecord
	err := uc.ledger.Execute(ctx, opStatus, func(ctx context.Context) error {
		return uc.tx.RunThreshing(ctx, func(ctx context.Context, repos inventory.Repos, records repository.ThreshingRepository) error {
			r, err := records.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if r == nil {
				return domain.NotFound("threshing record %s not found", id)
			}
			if r.Status == status {
				rec = r
				return nil
			}
			if r.Status == entity.ThreshingCompleted {
				return domain.InvalidOperation("threshing record %s is completed and cannot change status", r.BatchNumber)
			}
			if status == entity.ThreshingCompleted {
				if err := uc.complete(ctx, repos, r, actor); err != nil {
					return err
				}
			}
			r.Status = status
			r.UpdatedAt = uc.now()
			if err := records.Update(ctx, r); err != nil {
				return err
			}
			rec = r
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("batch_number", rec.BatchNumber).Str("status", string(rec.Status)).
		Str("performed_by", actor).Msg("threshing status updated")
	return dto.FromThreshing(rec), nil
}

// Delete soft-deletes a run that has not completed.
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	return uc.ledger.Execute(ctx, opDelete, func(ctx context.Context) error {
		return uc.tx.RunThreshing(ctx, func(ctx context.Context, _ inventory.Repos, records repository.ThreshingRepository) error {
			r, err := records.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if r == nil {
				return domain.NotFound("threshing record %s not found", id)
			}
			if r.Status == entity.ThreshingCompleted {
				return domain.InvalidOperation("threshing record %s is completed and cannot be deleted", r.BatchNumber)
			}
			return records.SoftDelete(ctx, id, uc.now())
		})
	})
}

// GetByID returns a run or NotFound.
func (uc *UseCase) GetByID(ctx context.Context, id string) (*dto.ThreshingResponse, error) {
	r, err := uc.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.NotFound("threshing record %s not found", id)
	}
	return dto.FromThreshing(r), nil
}

// GetByBatchNumber returns a run by its TH-YYYYMMDD-NNNN number or NotFound.
func (uc *UseCase) GetByBatchNumber(ctx context.Context, batchNumber string) (*dto.ThreshingResponse, error) {
	r, err := uc.records.GetByBatchNumber(ctx, batchNumber)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.NotFound("threshing record %s not found", batchNumber)
	}
	return dto.FromThreshing(r), nil
}

// List pages through runs, optionally filtered by status.
func (uc *UseCase) List(ctx context.Context, q dto.ThreshingQuery) (*dto.ThreshingListResponse, error) {
	q.Normalize()
	list, err := uc.records.List(ctx, entity.ThreshingStatus(q.Status), q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ThreshingResponse, 0, len(list))
	for _, r := range list {
		items = append(items, *dto.FromThreshing(r))
	}
	return &dto.ThreshingListResponse{
		Items: items,
		Page:  q.Of(len(items)),
	}, nil
}

// Summary aggregates runs by threshing date. The range defaults to the last 30 days.
func (uc *UseCase) Summary(ctx context.Context, q dto.ThreshingSummaryQuery) (*dto.ThreshingSummaryResponse, error) {
	to := uc.now()
	if q.To != nil {
		to = *q.To
	}
	from := to.Add(-defaultSummaryWindow)
	if q.From != nil {
		from = *q.From
	}
	if from.After(to) {
		return nil, domain.InvalidInput("from must not be after to")
	}
	s, err := uc.records.Summary(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &dto.ThreshingSummaryResponse{
		From:              from,
		To:                to,
		TotalRecords:      s.TotalRecords,
		TotalInput:        s.TotalInput,
		TotalOutput:       s.TotalOutput,
		TotalWastage:      s.TotalWastage,
		AverageEfficiency: s.AverageEfficiency,
	}, nil
}

func (uc *UseCase) validate(actor string, status entity.ThreshingStatus, in dto.CreateThreshingRequest) error {
	switch {
	case !status.Valid():
		return domain.InvalidInput("unknown threshing status %q", status)
	case in.PaddyBatchID == "" || in.WarehouseID == "":
		return domain.InvalidInput("paddy_batch_id and warehouse_id are required")
	case !in.InputQty.IsPositive():
		return domain.InvalidInput("input_qty must be greater than zero")
	case !in.OutputQty.IsPositive():
		return domain.InvalidInput("output_qty must be greater than zero")
	case in.ThreshingDate.IsZero():
		return domain.InvalidInput("threshing_date is required")
	case actor == "":
		return domain.InvalidInput("performed_by is required")
	case in.OutputQty.GreaterThan(in.InputQty):
		return domain.InvalidOperation("output quantity cannot exceed input quantity")
	case in.ThreshingDate.After(endOfDay(uc.now())):
		return domain.InvalidOperation("threshing date cannot be in the future")
	}
	if err := domaininv.CheckQuantity("input_qty", in.InputQty); err != nil {
		return err
	}
	return domaininv.CheckQuantity("output_qty", in.OutputQty)
}

func (uc *UseCase) checkBand(efficiency decimal.Decimal) {
	switch {
	case efficiency.LessThan(uc.minEff):
		uc.log.Warn().Str("efficiency", efficiency.StringFixed(2)).Str("minimum", uc.minEff.String()).
			Msg("low threshing efficiency")
	case efficiency.GreaterThan(uc.maxEff):
		uc.log.Warn().Str("efficiency", efficiency.StringFixed(2)).Str("maximum", uc.maxEff.String()).
			Msg("unusually high threshing efficiency")
	}
}

// complete converts the run's paddy into a rice batch named after the run.
func (uc *UseCase) complete(ctx context.Context, repos inventory.Repos, r *entity.ThreshingRecord, actor string) error {
	res, err := uc.ledger.ProcessInTx(ctx, repos, inventory.ProcessInput{
		WarehouseID:     r.WarehouseID,
		InputBatchID:    r.PaddyBatchID,
		OutputBatchCode: r.BatchNumber,
		OutputBatchDate: r.ThreshingDate,
		OutputVariety:   r.Variety,
		InputQty:        r.InputQty,
		OutputQty:       r.OutputQty,
		WasteQty:        r.WastageQty,
		ReferenceNo:     r.BatchNumber,
		Notes:           r.Notes,
		PerformedBy:     actor,
	})
	if err != nil {
		return err
	}
	r.RiceBatchID = res.OutputBatch.ID
	r.ProcessingRecordID = res.Record.ID
	return nil
}

// nextBatchNumber returns <prefix>-YYYYMMDD-NNNN, numbered per creation day.
func (uc *UseCase) nextBatchNumber(ctx context.Context, records repository.ThreshingRepository, day time.Time) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", uc.prefix, day.Format("20060102"))
	n, err := records.CountByBatchPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, n+1), nil
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
