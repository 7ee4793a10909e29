package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ricemill-ledger/internal/domain/entity"
	"github.com/jhoicas/ricemill-ledger/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

const batchColumns = `id, product_type, code, batch_date, variety, moisture, supplier_id, notes, created_at, updated_at`

// BatchRepo is the BatchRepository adapter (pool or tx).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository builds the adapter. Pass a pool or a tx.
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

// GetByID returns the batch or nil.
func (r *BatchRepo) GetByID(ctx context.Context, id string) (*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = $1`
	return r.one(ctx, id, query, id)
}

// FindByTypeAndCode returns the batch or nil.
func (r *BatchRepo) FindByTypeAndCode(ctx context.Context, t entity.ProductType, code string) (*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE product_type = $1 AND code = $2`
	return r.one(ctx, code, query, t, code)
}

// CreateIfAbsent inserts b unless (product_type, code) exists, then returns the
// stored row. A concurrent insert of the same code makes ON CONFLICT wait for the
// other transaction, so the follow-up read sees the winner.
func (r *BatchRepo) CreateIfAbsent(ctx context.Context, b *entity.Batch) (*entity.Batch, error) {
	query := `
		INSERT INTO batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT ON CONSTRAINT uq_batches_type_code DO NOTHING`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.ProductType, b.Code, b.BatchDate, b.Variety, b.Moisture,
		nullString(b.SupplierID), b.Notes, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert batch: %w", err)
	}
	stored, err := r.FindByTypeAndCode(ctx, b.ProductType, b.Code)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("batch %s/%s missing after insert", b.ProductType, b.Code)
	}
	return stored, nil
}

// ListByType pages through the batches of one type, newest first.
func (r *BatchRepo) ListByType(ctx context.Context, t entity.ProductType, limit, offset int) ([]*entity.Batch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM batches WHERE product_type = $1
		ORDER BY batch_date DESC, code
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, t, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	var list []*entity.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func (r *BatchRepo) one(ctx context.Context, ref, query string, args ...any) (*entity.Batch, error) {
	b, err := scanBatch(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isMissing(err) {
			return nil, nil
		}
		return nil, lookupFailed(err, "batch", ref)
	}
	return b, nil
}

func scanBatch(row pgx.Row) (*entity.Batch, error) {
	var (
		b        entity.Batch
		supplier *string
	)
	err := row.Scan(&b.ID, &b.ProductType, &b.Code, &b.BatchDate, &b.Variety, &b.Moisture,
		&supplier, &b.Notes, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.SupplierID = derefString(supplier)
	return &b, nil
}
