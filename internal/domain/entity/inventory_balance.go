package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceKey identifies one balance row.
type BalanceKey struct {
	WarehouseID string
	BatchID     string
	ProductType ProductType
}

// Less orders keys by warehouse, then product type, then batch.
// Multi-row operations acquire row locks in this order.
func (k BalanceKey) Less(o BalanceKey) bool {
	if k.WarehouseID != o.WarehouseID {
		return k.WarehouseID < o.WarehouseID
	}
	if k.ProductType != o.ProductType {
		return k.ProductType < o.ProductType
	}
	return k.BatchID < o.BatchID
}

// InventoryBalance is the quantity of one batch held in one warehouse.
// Version increases by one on every committed mutation.
type InventoryBalance struct {
	ID          string
	WarehouseID string
	BatchID     string
	ProductType ProductType
	Quantity    decimal.Decimal
	Unit        string
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Key returns the identity triple of the row.
func (b *InventoryBalance) Key() BalanceKey {
	return BalanceKey{WarehouseID: b.WarehouseID, BatchID: b.BatchID, ProductType: b.ProductType}
}
