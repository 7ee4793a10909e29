package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ricemill-ledger/internal/domain/entity"
	"github.com/jhoicas/ricemill-ledger/internal/domain/repository"
)

var _ repository.StockReportRepository = (*ReportRepo)(nil)

// ReportRepo serves the read side: balances joined with their batch and
// warehouse, stock totals and movement history. It reads committed data from
// the pool and never locks.
type ReportRepo struct {
	q Querier
}

func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

const balanceViewSelect = `
	SELECT b.id, b.warehouse_id, b.batch_id, b.product_type, b.quantity, b.unit,
	       b.version, b.created_at, b.updated_at,
	       bt.code, bt.variety, w.name
	FROM inventory_balances b
	JOIN batches bt ON bt.id = b.batch_id
	JOIN warehouses w ON w.id = b.warehouse_id`

func (r *ReportRepo) GetBalance(ctx context.Context, id string) (*repository.BalanceView, error) {
	v, err := scanBalanceView(r.q.QueryRow(ctx, balanceViewSelect+` WHERE b.id = $1`, id))
	if err != nil {
		if isMissing(err) {
			return nil, nil
		}
		return nil, lookupFailed(err, "balance", id)
	}
	return v, nil
}

// ListBalancesByWarehouse lists balances of one warehouse, or of all when
// warehouseID is empty. An empty productType matches both products.
func (r *ReportRepo) ListBalancesByWarehouse(ctx context.Context, warehouseID string, productType entity.ProductType, limit, offset int) ([]*repository.BalanceView, error) {
	query := balanceViewSelect + `
		WHERE ($1::text = '' OR b.warehouse_id::text = $1::text)
		  AND ($2::text = '' OR b.product_type = $2::text)
		ORDER BY w.name, b.product_type, bt.code
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, warehouseID, string(productType), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	return collectBalanceViews(rows)
}

func (r *ReportRepo) ListBalancesByBatch(ctx context.Context, batchID string) ([]*repository.BalanceView, error) {
	rows, err := r.q.Query(ctx, balanceViewSelect+` WHERE b.batch_id::text = $1 ORDER BY w.name`, batchID)
	if err != nil {
		return nil, fmt.Errorf("list balances by batch: %w", err)
	}
	return collectBalanceViews(rows)
}

// SumByProductType totals every balance per product. Both products are always present.
func (r *ReportRepo) SumByProductType(ctx context.Context) (map[entity.ProductType]decimal.Decimal, error) {
	rows, err := r.q.Query(ctx, `SELECT product_type, COALESCE(SUM(quantity), 0) FROM inventory_balances GROUP BY product_type`)
	if err != nil {
		return nil, fmt.Errorf("sum balances: %w", err)
	}
	defer rows.Close()
	out := map[entity.ProductType]decimal.Decimal{
		entity.ProductTypePaddy: decimal.Zero,
		entity.ProductTypeRice:  decimal.Zero,
	}
	for rows.Next() {
		var (
			t   entity.ProductType
			sum decimal.Decimal
		)
		if err := rows.Scan(&t, &sum); err != nil {
			return nil, fmt.Errorf("scan sum: %w", err)
		}
		out[t] = sum
	}
	return out, rows.Err()
}

// StockByWarehouse returns the stock held in each active warehouse, empty ones included.
func (r *ReportRepo) StockByWarehouse(ctx context.Context) ([]repository.WarehouseStock, error) {
	query := `
		SELECT w.id, w.name, w.capacity, COALESCE(SUM(b.quantity), 0)
		FROM warehouses w
		LEFT JOIN inventory_balances b ON b.warehouse_id = w.id
		WHERE w.active
		GROUP BY w.id, w.name, w.capacity
		ORDER BY w.name`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("stock by warehouse: %w", err)
	}
	defer rows.Close()
	var list []repository.WarehouseStock
	for rows.Next() {
		var s repository.WarehouseStock
		if err := rows.Scan(&s.WarehouseID, &s.Name, &s.Capacity, &s.Quantity); err != nil {
			return nil, fmt.Errorf("scan warehouse stock: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// ListLowStock returns balances strictly below threshold, lowest first.
func (r *ReportRepo) ListLowStock(ctx context.Context, threshold decimal.Decimal, limit int) ([]*repository.BalanceView, error) {
	query := balanceViewSelect + `
		WHERE b.quantity < $1
		ORDER BY b.quantity, w.name, bt.code
		LIMIT $2`
	rows, err := r.q.Query(ctx, query, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	return collectBalanceViews(rows)
}

// ListMovements filters the ledger newest first. WarehouseID matches either side.
func (r *ReportRepo) ListMovements(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.ProductType != "" {
		add("product_type = $%d", string(f.ProductType))
	}
	if f.MovementType != "" {
		add("movement_type = $%d", string(f.MovementType))
	}
	if f.WarehouseID != "" {
		args = append(args, f.WarehouseID)
		n := len(args)
		conds = append(conds, fmt.Sprintf("(warehouse_from_id::text = $%d OR warehouse_to_id::text = $%d)", n, n))
	}
	if f.BatchID != "" {
		add("batch_id::text = $%d", f.BatchID)
	}
	if f.ReferenceNo != "" {
		add("reference_no = $%d", f.ReferenceNo)
	}
	if f.From != nil {
		add("performed_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("performed_at <= $%d", *f.To)
	}

	query := `SELECT ` + movementColumns + ` FROM stock_movements`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(` ORDER BY performed_at DESC, id LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return collectMovements(rows)
}

func (r *ReportRepo) RecentMovements(ctx context.Context, limit int) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements ORDER BY performed_at DESC, id LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("recent movements: %w", err)
	}
	return collectMovements(rows)
}

func scanBalanceView(row pgx.Row) (*repository.BalanceView, error) {
	var v repository.BalanceView
	err := row.Scan(&v.ID, &v.WarehouseID, &v.BatchID, &v.ProductType, &v.Quantity, &v.Unit,
		&v.Version, &v.CreatedAt, &v.UpdatedAt,
		&v.BatchCode, &v.Variety, &v.WarehouseName)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func collectBalanceViews(rows pgx.Rows) ([]*repository.BalanceView, error) {
	defer rows.Close()
	var list []*repository.BalanceView
	for rows.Next() {
		v, err := scanBalanceView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		list = append(list, v)
	}
	return list, rows.Err()
}
