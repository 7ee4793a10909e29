package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ricemill-ledger/internal/domain"
	"github.com/jhoicas/ricemill-ledger/internal/domain/entity"
	"github.com/jhoicas/ricemill-ledger/internal/domain/repository"
)

var _ repository.ThreshingRepository = (*ThreshingRepo)(nil)

const threshingColumns = `id, batch_number, paddy_batch_id, warehouse_id, variety, input_qty, output_qty,
	wastage_qty, efficiency, threshing_date, operator, machine_id, status,
	rice_batch_id, processing_record_id, notes, created_by, created_at, updated_at, deleted_at`

// ThreshingRepo persists threshing runs. Deleted rows stay in the table with
// deleted_at set and are hidden from every read except numbering.
type ThreshingRepo struct {
	q Querier
}

func NewThreshingRepository(q Querier) *ThreshingRepo {
	return &ThreshingRepo{q: q}
}

func (r *ThreshingRepo) Create(ctx context.Context, t *entity.ThreshingRecord) error {
	query := `
		INSERT INTO threshing_records (` + threshingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.BatchNumber, t.PaddyBatchID, t.WarehouseID, t.Variety, t.InputQty, t.OutputQty,
		t.WastageQty, t.Efficiency, t.ThreshingDate, t.Operator, t.MachineID, t.Status,
		nullString(t.RiceBatchID), nullString(t.ProcessingRecordID), t.Notes, t.CreatedBy,
		t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert threshing record: %w", err)
	}
	return nil
}

func (r *ThreshingRepo) GetByID(ctx context.Context, id string) (*entity.ThreshingRecord, error) {
	query := `SELECT ` + threshingColumns + ` FROM threshing_records WHERE id = $1 AND deleted_at IS NULL`
	return r.one(ctx, query, id)
}

// GetForUpdate locks the live row until the transaction ends. A second status
// change or delete of the same run waits here and then sees the first one's result.
func (r *ThreshingRepo) GetForUpdate(ctx context.Context, id string) (*entity.ThreshingRecord, error) {
	query := `SELECT ` + threshingColumns + ` FROM threshing_records WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`
	return r.one(ctx, query, id)
}

func (r *ThreshingRepo) GetByBatchNumber(ctx context.Context, batchNumber string) (*entity.ThreshingRecord, error) {
	query := `SELECT ` + threshingColumns + ` FROM threshing_records WHERE batch_number = $1 AND deleted_at IS NULL`
	return r.one(ctx, query, batchNumber)
}

// Update writes the status and the links set on completion.
func (r *ThreshingRepo) Update(ctx context.Context, t *entity.ThreshingRecord) error {
	query := `
		UPDATE threshing_records
		SET status = $2, rice_batch_id = $3, processing_record_id = $4, notes = $5, updated_at = $6
		WHERE id = $1 AND deleted_at IS NULL`
	cmd, err := r.q.Exec(ctx, query,
		t.ID, t.Status, nullString(t.RiceBatchID), nullString(t.ProcessingRecordID), t.Notes, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update threshing record: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("threshing record %s not found", t.ID)
	}
	return nil
}

func (r *ThreshingRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE threshing_records SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		id, at)
	if err != nil {
		return fmt.Errorf("delete threshing record: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("threshing record %s not found", id)
	}
	return nil
}

// List pages through live records; an empty status matches all.
func (r *ThreshingRepo) List(ctx context.Context, status entity.ThreshingStatus, limit, offset int) ([]*entity.ThreshingRecord, error) {
	query := `
		SELECT ` + threshingColumns + `
		FROM threshing_records
		WHERE deleted_at IS NULL AND ($1::text = '' OR status = $1::text)
		ORDER BY batch_number
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list threshing records: %w", err)
	}
	defer rows.Close()
	var list []*entity.ThreshingRecord
	for rows.Next() {
		t, err := scanThreshing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan threshing record: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// CountByBatchPrefix includes deleted rows so a number is never handed out twice.
func (r *ThreshingRepo) CountByBatchPrefix(ctx context.Context, prefix string) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM threshing_records WHERE batch_number LIKE $1::text || '%'`, prefix).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count threshing records: %w", err)
	}
	return n, nil
}

// Summary aggregates live records whose threshing date falls in [from, to].
func (r *ThreshingRepo) Summary(ctx context.Context, from, to time.Time) (*entity.ThreshingSummary, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(input_qty), 0),
		       COALESCE(SUM(output_qty), 0),
		       COALESCE(SUM(wastage_qty), 0),
		       COALESCE(ROUND(AVG(efficiency), 2), 0)
		FROM threshing_records
		WHERE deleted_at IS NULL AND threshing_date BETWEEN $1::date AND $2::date`
	var s entity.ThreshingSummary
	err := r.q.QueryRow(ctx, query, from, to).Scan(
		&s.TotalRecords, &s.TotalInput, &s.TotalOutput, &s.TotalWastage, &s.AverageEfficiency,
	)
	if err != nil {
		return nil, fmt.Errorf("threshing summary: %w", err)
	}
	return &s, nil
}

func (r *ThreshingRepo) one(ctx context.Context, query string, arg string) (*entity.ThreshingRecord, error) {
	t, err := scanThreshing(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if isMissing(err) {
			return nil, nil
		}
		return nil, lookupFailed(err, "threshing record", arg)
	}
	return t, nil
}

func scanThreshing(row pgx.Row) (*entity.ThreshingRecord, error) {
	var (
		t                 entity.ThreshingRecord
		riceBatch, record *string
	)
	err := row.Scan(&t.ID, &t.BatchNumber, &t.PaddyBatchID, &t.WarehouseID, &t.Variety, &t.InputQty, &t.OutputQty,
		&t.WastageQty, &t.Efficiency, &t.ThreshingDate, &t.Operator, &t.MachineID, &t.Status,
		&riceBatch, &record, &t.Notes, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt)
	if err != nil {
		return nil, err
	}
	t.RiceBatchID = derefString(riceBatch)
	t.ProcessingRecordID = derefString(record)
	return &t, nil
}
