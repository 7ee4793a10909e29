package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/ricemill-ledger/internal/domain/entity"
	"github.com/jhoicas/ricemill-ledger/internal/domain/repository"
)

var _ repository.ProcessingRecordRepository = (*ProcessingRecordRepo)(nil)

const processingColumns = `id, input_batch_id, output_batch_id, warehouse_id, input_qty, output_qty,
	waste_qty, yield_percent, reference_no, notes, performed_by, performed_at`

type ProcessingRecordRepo struct {
	q Querier
}

func NewProcessingRecordRepository(q Querier) *ProcessingRecordRepo {
	return &ProcessingRecordRepo{q: q}
}

func (r *ProcessingRecordRepo) Create(ctx context.Context, p *entity.ProcessingRecord) error {
	query := `
		INSERT INTO processing_records (` + processingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.InputBatchID, p.OutputBatchID, p.WarehouseID, p.InputQty, p.OutputQty,
		p.WasteQty, p.YieldPercent, p.ReferenceNo, p.Notes, p.PerformedBy, p.PerformedAt,
	)
	if err != nil {
		return fmt.Errorf("insert processing record: %w", err)
	}
	return nil
}

func (r *ProcessingRecordRepo) GetByID(ctx context.Context, id string) (*entity.ProcessingRecord, error) {
	query := `SELECT ` + processingColumns + ` FROM processing_records WHERE id = $1`
	var p entity.ProcessingRecord
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.InputBatchID, &p.OutputBatchID, &p.WarehouseID, &p.InputQty, &p.OutputQty,
		&p.WasteQty, &p.YieldPercent, &p.ReferenceNo, &p.Notes, &p.PerformedBy, &p.PerformedAt,
	)
	if err != nil {
		if isMissing(err) {
			return nil, nil
		}
		return nil, lookupFailed(err, "processing record", id)
	}
	return &p, nil
}
