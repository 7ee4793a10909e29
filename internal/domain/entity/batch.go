package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch is a dated lot of paddy or rice. (ProductType, Code) is unique.
type Batch struct {
	ID          string
	ProductType ProductType
	Code        string
	BatchDate   time.Time
	Variety     string
	Moisture    decimal.Decimal // percent
	SupplierID  string          // empty when unknown
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
