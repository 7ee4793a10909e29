package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ThreshingStatus is the lifecycle state of a threshing run.
type ThreshingStatus string

const (
	ThreshingPending    ThreshingStatus = "PENDING"
	ThreshingInProgress ThreshingStatus = "IN_PROGRESS"
	ThreshingCompleted  ThreshingStatus = "COMPLETED"
	ThreshingCancelled  ThreshingStatus = "CANCELLED"
)

// Valid reports whether s is a known status.
func (s ThreshingStatus) Valid() bool {
	switch s {
	case ThreshingPending, ThreshingInProgress, ThreshingCompleted, ThreshingCancelled:
		return true
	}
	return false
}

// ThreshingRecord tracks a mill run over one paddy batch. Efficiency and
// WastageQty are computed once when the record is created.
type ThreshingRecord struct {
	ID                 string
	BatchNumber        string
	PaddyBatchID       string
	WarehouseID        string
	Variety            string
	InputQty           decimal.Decimal
	OutputQty          decimal.Decimal
	WastageQty         decimal.Decimal
	Efficiency         decimal.Decimal
	ThreshingDate      time.Time
	Operator           string
	MachineID          string
	Status             ThreshingStatus
	RiceBatchID        string
	ProcessingRecordID string
	Notes              string
	CreatedBy          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          *time.Time
}

// ThreshingSummary aggregates threshing runs over a date range.
type ThreshingSummary struct {
	TotalRecords      int64
	TotalInput        decimal.Decimal
	TotalOutput       decimal.Decimal
	TotalWastage      decimal.Decimal
	AverageEfficiency decimal.Decimal
}
