package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ricemill-ledger/internal/domain"
	"github.com/jhoicas/ricemill-ledger/internal/domain/entity"
	"github.com/jhoicas/ricemill-ledger/internal/domain/repository"
)

var _ repository.BalanceRepository = (*BalanceRepo)(nil)

const balanceColumns = `id, warehouse_id, batch_id, product_type, quantity, unit, version, created_at, updated_at`

// BalanceRepo is the BalanceRepository adapter. Only meaningful inside a tx.
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository builds the adapter over a tx.
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

// GetForUpdate reads the row and locks it (SELECT ... FOR UPDATE).
func (r *BalanceRepo) GetForUpdate(ctx context.Context, key entity.BalanceKey) (*entity.InventoryBalance, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM inventory_balances
		WHERE warehouse_id = $1 AND batch_id = $2 AND product_type = $3
		FOR UPDATE`
	b, err := scanBalance(r.q.QueryRow(ctx, query, key.WarehouseID, key.BatchID, key.ProductType))
	if err != nil {
		if isMissing(err) {
			return nil, nil
		}
		return nil, lookupFailed(err, "balance", key.WarehouseID+"/"+key.BatchID)
	}
	return b, nil
}

// InsertIfAbsent creates a zero row for the key. If another transaction inserts
// the same key first, ON CONFLICT waits for it and then does nothing.
func (r *BalanceRepo) InsertIfAbsent(ctx context.Context, b *entity.InventoryBalance) error {
	query := `
		INSERT INTO inventory_balances (` + balanceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT ON CONSTRAINT uq_balances_key DO NOTHING`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.WarehouseID, b.BatchID, b.ProductType, b.Quantity, b.Unit, b.Version, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert balance: %w", err)
	}
	return nil
}

// Update writes the quantity if the row still carries b.Version and bumps it.
func (r *BalanceRepo) Update(ctx context.Context, b *entity.InventoryBalance) error {
	query := `
		UPDATE inventory_balances
		SET quantity = $2, version = version + 1, updated_at = $3
		WHERE id = $1 AND version = $4`
	cmd, err := r.q.Exec(ctx, query, b.ID, b.Quantity, b.UpdatedAt, b.Version)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.Conflict(fmt.Sprintf("balance %s changed since it was read", b.ID), nil)
	}
	b.Version++
	return nil
}

func scanBalance(row pgx.Row) (*entity.InventoryBalance, error) {
	var b entity.InventoryBalance
	err := row.Scan(&b.ID, &b.WarehouseID, &b.BatchID, &b.ProductType, &b.Quantity, &b.Unit,
		&b.Version, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
