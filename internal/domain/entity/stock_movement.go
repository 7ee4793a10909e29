package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType is the kind of event recorded in the movement ledger.
type MovementType string

const (
	MovementInbound    MovementType = "INBOUND"
	MovementOutbound   MovementType = "OUTBOUND"
	MovementTransfer   MovementType = "TRANSFER"
	MovementAdjustment MovementType = "ADJUSTMENT"
	MovementProcessing MovementType = "PROCESSING"
)

// Valid reports whether t is a known movement type.
func (t MovementType) Valid() bool {
	switch t {
	case MovementInbound, MovementOutbound, MovementTransfer, MovementAdjustment, MovementProcessing:
		return true
	}
	return false
}

// StockMovement is an immutable ledger row. Quantity is a positive magnitude;
// direction follows from which warehouse side is set.
type StockMovement struct {
	ID              string
	MovementType    MovementType
	ProductType     ProductType
	BatchID         string
	Quantity        decimal.Decimal
	Unit            string
	WarehouseFromID string // empty when the stock did not leave a warehouse
	WarehouseToID   string // empty when the stock did not enter a warehouse
	SupplierID      string
	CustomerID      string
	ReferenceNo     string
	Reason          string
	PerformedBy     string
	PerformedAt     time.Time
}
