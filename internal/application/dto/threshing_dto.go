package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateThreshingRequest body for POST /api/threshing.
type CreateThreshingRequest struct {
	PaddyBatchID  string          `json:"paddy_batch_id" validate:"required"`
	WarehouseID   string          `json:"warehouse_id" validate:"required"`
	Variety       string          `json:"variety" validate:"max=100"`
	InputQty      decimal.Decimal `json:"input_qty"`
	OutputQty     decimal.Decimal `json:"output_qty"`
	ThreshingDate time.Time       `json:"threshing_date" validate:"required"`
	Operator      string          `json:"operator" validate:"max=100"`
	MachineID     string          `json:"machine_id" validate:"max=50"`
	Status        string          `json:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED CANCELLED"`
	Notes         string          `json:"notes"`
}

// UpdateThreshingStatusRequest body for PATCH /api/threshing/:id/status.
type UpdateThreshingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING IN_PROGRESS COMPLETED CANCELLED"`
}

// ThreshingQuery query string for GET /api/threshing.
type ThreshingQuery struct {
	PageRequest
	Status string `query:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED CANCELLED"`
}

// ThreshingSummaryQuery query string for GET /api/threshing/summary.
type ThreshingSummaryQuery struct {
	From *time.Time `query:"from"`
	To   *time.Time `query:"to"`
}

// ThreshingResponse a threshing record.
type ThreshingResponse struct {
	ID                 string          `json:"id"`
	BatchNumber        string          `json:"batch_number"`
	PaddyBatchID       string          `json:"paddy_batch_id"`
	WarehouseID        string          `json:"warehouse_id"`
	Variety            string          `json:"variety,omitempty"`
	InputQty           decimal.Decimal `json:"input_qty"`
	OutputQty          decimal.Decimal `json:"output_qty"`
	WastageQty         decimal.Decimal `json:"wastage_qty"`
	Efficiency         decimal.Decimal `json:"efficiency"`
	ThreshingDate      time.Time       `json:"threshing_date"`
	Operator           string          `json:"operator,omitempty"`
	MachineID          string          `json:"machine_id,omitempty"`
	Status             string          `json:"status"`
	RiceBatchID        string          `json:"rice_batch_id,omitempty"`
	ProcessingRecordID string          `json:"processing_record_id,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	CreatedBy          string          `json:"created_by"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// ThreshingListResponse paged threshing records.
type ThreshingListResponse struct {
	Items []ThreshingResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// ThreshingSummaryResponse aggregate over a date range.
type ThreshingSummaryResponse struct {
	From              time.Time       `json:"from"`
	To                time.Time       `json:"to"`
	TotalRecords      int64           `json:"total_records"`
	TotalInput        decimal.Decimal `json:"total_input"`
	TotalOutput       decimal.Decimal `json:"total_output"`
	TotalWastage      decimal.Decimal `json:"total_wastage"`
	AverageEfficiency decimal.Decimal `json:"average_efficiency"`
}
