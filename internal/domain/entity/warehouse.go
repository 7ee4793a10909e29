package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Warehouse is a storage location. Capacity is informational and never enforced by the ledger.
type Warehouse struct {
	ID        string
	Name      string
	Location  string
	Capacity  decimal.Decimal // KG
	Notes     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
