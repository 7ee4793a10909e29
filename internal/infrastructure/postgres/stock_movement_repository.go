package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ricemill-ledger/internal/domain/entity"
	"github.com/jhoicas/ricemill-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, movement_type, product_type, batch_id, quantity, unit,
	warehouse_from_id, warehouse_to_id, supplier_id, customer_id,
	reference_no, reason, performed_by, performed_at`

// StockMovementRepo appends rows to the movement ledger. Rows are never updated.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository builds the adapter over a tx.
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create appends one movement.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.MovementType, m.ProductType, m.BatchID, m.Quantity, m.Unit,
		nullString(m.WarehouseFromID), nullString(m.WarehouseToID),
		nullString(m.SupplierID), nullString(m.CustomerID),
		m.ReferenceNo, m.Reason, m.PerformedBy, m.PerformedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var (
		m                          entity.StockMovement
		from, to, supplier, client *string
	)
	err := row.Scan(&m.ID, &m.MovementType, &m.ProductType, &m.BatchID, &m.Quantity, &m.Unit,
		&from, &to, &supplier, &client,
		&m.ReferenceNo, &m.Reason, &m.PerformedBy, &m.PerformedAt)
	if err != nil {
		return nil, err
	}
	m.WarehouseFromID = derefString(from)
	m.WarehouseToID = derefString(to)
	m.SupplierID = derefString(supplier)
	m.CustomerID = derefString(client)
	return &m, nil
}

func collectMovements(rows pgx.Rows) ([]*entity.StockMovement, error) {
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
