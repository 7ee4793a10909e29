package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProcessingRecord logs one paddy to rice conversion. WasteQty and YieldPercent
// are fixed at creation.
type ProcessingRecord struct {
	ID            string
	InputBatchID  string
	OutputBatchID string
	WarehouseID   string
	InputQty      decimal.Decimal
	OutputQty     decimal.Decimal
	WasteQty      decimal.Decimal
	YieldPercent  decimal.Decimal
	ReferenceNo   string
	Notes         string
	PerformedBy   string
	PerformedAt   time.Time
}
