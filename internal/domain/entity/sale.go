package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is a paddy or rice sale. Recording it issues an outbound movement in the same transaction.
type Sale struct {
	ID            string
	InvoiceNumber string
	ProductType   ProductType
	WarehouseID   string
	BatchID       string
	CustomerID    string
	Quantity      decimal.Decimal
	PricePerKg    decimal.Decimal
	TotalAmount   decimal.Decimal
	SaleDate      time.Time
	Notes         string
	CreatedBy     string
	CreatedAt     time.Time
}
