package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ricemill-ledger/internal/domain/entity"
)

// MovementFilter narrows a movement listing. Zero values mean "any".
// WarehouseID matches either side of a movement.
type MovementFilter struct {
	ProductType  entity.ProductType
	MovementType entity.MovementType
	WarehouseID  string
	BatchID      string
	ReferenceNo  string
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

// BalanceView is a balance joined with its batch and warehouse labels.
type BalanceView struct {
	entity.InventoryBalance
	BatchCode     string
	Variety       string
	WarehouseName string
}

// WarehouseStock is the total quantity held per warehouse.
type WarehouseStock struct {
	WarehouseID string
	Name        string
	Capacity    decimal.Decimal
	Quantity    decimal.Decimal
}

// StockReportRepository holds the read-only queries behind reports and the dashboard.
type StockReportRepository interface {
	GetBalance(ctx context.Context, id string) (*BalanceView, error)
	ListBalancesByWarehouse(ctx context.Context, warehouseID string, productType entity.ProductType, limit, offset int) ([]*BalanceView, error)
	ListBalancesByBatch(ctx context.Context, batchID string) ([]*BalanceView, error)
	SumByProductType(ctx context.Context) (map[entity.ProductType]decimal.Decimal, error)
	StockByWarehouse(ctx context.Context) ([]WarehouseStock, error)
	ListLowStock(ctx context.Context, threshold decimal.Decimal, limit int) ([]*BalanceView, error)
	ListMovements(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, error)
	RecentMovements(ctx context.Context, limit int) ([]*entity.StockMovement, error)
}
