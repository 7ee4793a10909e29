package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InboundRequest body for POST /api/inventory/inbound.
type InboundRequest struct {
	ProductType string          `json:"product_type" validate:"required,oneof=PADDY RICE"`
	WarehouseID string          `json:"warehouse_id" validate:"required"`
	BatchCode   string          `json:"batch_code" validate:"required,max=64"`
	BatchDate   *time.Time      `json:"batch_date,omitempty"`
	Variety     string          `json:"variety,omitempty" validate:"max=100"`
	Moisture    decimal.Decimal `json:"moisture"`
	Quantity    decimal.Decimal `json:"quantity"`
	SupplierID  string          `json:"supplier_id,omitempty"`
	ReferenceNo string          `json:"reference_no,omitempty" validate:"max=100"`
	Notes       string          `json:"notes,omitempty"`
}

// OutboundRequest body for POST /api/inventory/outbound.
// AdminOverride is honored only for the admin role.
type OutboundRequest struct {
	ProductType   string          `json:"product_type" validate:"required,oneof=PADDY RICE"`
	WarehouseID   string          `json:"warehouse_id" validate:"required"`
	BatchID       string          `json:"batch_id" validate:"required"`
	Quantity      decimal.Decimal `json:"quantity"`
	CustomerID    string          `json:"customer_id,omitempty"`
	ReferenceNo   string          `json:"reference_no,omitempty" validate:"max=100"`
	Reason        string          `json:"reason,omitempty"`
	AdminOverride bool            `json:"admin_override,omitempty"`
}

// TransferRequest body for POST /api/inventory/transfer.
type TransferRequest struct {
	ProductType     string          `json:"product_type" validate:"required,oneof=PADDY RICE"`
	FromWarehouseID string          `json:"from_warehouse_id" validate:"required"`
	ToWarehouseID   string          `json:"to_warehouse_id" validate:"required"`
	BatchID         string          `json:"batch_id" validate:"required"`
	Quantity        decimal.Decimal `json:"quantity"`
	ReferenceNo     string          `json:"reference_no,omitempty" validate:"max=100"`
	Reason          string          `json:"reason,omitempty"`
}

// AdjustmentRequest body for POST /api/inventory/adjustment. Quantity is signed.
type AdjustmentRequest struct {
	ProductType   string          `json:"product_type" validate:"required,oneof=PADDY RICE"`
	WarehouseID   string          `json:"warehouse_id" validate:"required"`
	BatchID       string          `json:"batch_id" validate:"required"`
	Quantity      decimal.Decimal `json:"quantity"`
	Reason        string          `json:"reason"`
	ReferenceNo   string          `json:"reference_no,omitempty" validate:"max=100"`
	AdminOverride bool            `json:"admin_override,omitempty"`
}

// ProcessRequest body for POST /api/inventory/process.
type ProcessRequest struct {
	WarehouseID     string          `json:"warehouse_id" validate:"required"`
	InputBatchID    string          `json:"input_batch_id" validate:"required"`
	OutputBatchCode string          `json:"output_batch_code" validate:"required,max=64"`
	OutputBatchDate *time.Time      `json:"output_batch_date,omitempty"`
	OutputVariety   string          `json:"output_variety,omitempty" validate:"max=100"`
	InputQty        decimal.Decimal `json:"input_qty"`
	OutputQty       decimal.Decimal `json:"output_qty"`
	WasteQty        decimal.Decimal `json:"waste_qty"`
	ReferenceNo     string          `json:"reference_no,omitempty" validate:"max=100"`
	Notes           string          `json:"notes,omitempty"`
}

// MovementQuery query string for GET /api/inventory/movements.
type MovementQuery struct {
	PageRequest
	ProductType  string     `query:"product_type" validate:"omitempty,oneof=PADDY RICE"`
	MovementType string     `query:"movement_type" validate:"omitempty,oneof=INBOUND OUTBOUND TRANSFER ADJUSTMENT PROCESSING"`
	WarehouseID  string     `query:"warehouse_id"`
	BatchID      string     `query:"batch_id"`
	ReferenceNo  string     `query:"reference_no"`
	From         *time.Time `query:"from"`
	To           *time.Time `query:"to"`
}

// BatchResponse a batch.
type BatchResponse struct {
	ID          string          `json:"id"`
	ProductType string          `json:"product_type"`
	Code        string          `json:"code"`
	BatchDate   time.Time       `json:"batch_date"`
	Variety     string          `json:"variety,omitempty"`
	Moisture    decimal.Decimal `json:"moisture"`
	SupplierID  string          `json:"supplier_id,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// BalanceResponse a balance row, optionally labelled with batch and warehouse names.
type BalanceResponse struct {
	ID            string          `json:"id"`
	WarehouseID   string          `json:"warehouse_id"`
	WarehouseName string          `json:"warehouse_name,omitempty"`
	BatchID       string          `json:"batch_id"`
	BatchCode     string          `json:"batch_code,omitempty"`
	Variety       string          `json:"variety,omitempty"`
	ProductType   string          `json:"product_type"`
	Quantity      decimal.Decimal `json:"quantity"`
	Unit          string          `json:"unit"`
	Version       int64           `json:"version"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// BalanceListResponse paged balances.
type BalanceListResponse struct {
	Items []BalanceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// MovementResponse an audit row.
type MovementResponse struct {
	ID              string          `json:"id"`
	MovementType    string          `json:"movement_type"`
	ProductType     string          `json:"product_type"`
	BatchID         string          `json:"batch_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit"`
	WarehouseFromID string          `json:"warehouse_from_id,omitempty"`
	WarehouseToID   string          `json:"warehouse_to_id,omitempty"`
	SupplierID      string          `json:"supplier_id,omitempty"`
	CustomerID      string          `json:"customer_id,omitempty"`
	ReferenceNo     string          `json:"reference_no"`
	Reason          string          `json:"reason,omitempty"`
	PerformedBy     string          `json:"performed_by"`
	PerformedAt     time.Time       `json:"performed_at"`
}

// MovementListResponse paged movements.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// MovementResultResponse outcome of inbound, outbound and adjustment.
type MovementResultResponse struct {
	Batch    *BatchResponse   `json:"batch,omitempty"`
	Balance  BalanceResponse  `json:"balance"`
	Movement MovementResponse `json:"movement"`
}

// TransferResponse outcome of a transfer.
type TransferResponse struct {
	Source      BalanceResponse  `json:"source"`
	Destination BalanceResponse  `json:"destination"`
	Movement    MovementResponse `json:"movement"`
}

// ProcessingRecordResponse a paddy to rice conversion.
type ProcessingRecordResponse struct {
	ID            string          `json:"id"`
	InputBatchID  string          `json:"input_batch_id"`
	OutputBatchID string          `json:"output_batch_id"`
	WarehouseID   string          `json:"warehouse_id"`
	InputQty      decimal.Decimal `json:"input_qty"`
	OutputQty     decimal.Decimal `json:"output_qty"`
	WasteQty      decimal.Decimal `json:"waste_qty"`
	YieldPercent  decimal.Decimal `json:"yield_percent"`
	ReferenceNo   string          `json:"reference_no"`
	Notes         string          `json:"notes,omitempty"`
	PerformedBy   string          `json:"performed_by"`
	PerformedAt   time.Time       `json:"performed_at"`
}

// ProcessResponse outcome of POST /api/inventory/process.
type ProcessResponse struct {
	Record       ProcessingRecordResponse `json:"record"`
	OutputBatch  BatchResponse            `json:"output_batch"`
	PaddyBalance BalanceResponse          `json:"paddy_balance"`
	RiceBalance  BalanceResponse          `json:"rice_balance"`
	Movements    []MovementResponse       `json:"movements"`
}

// StockSummaryResponse total stock per product type.
type StockSummaryResponse struct {
	Paddy decimal.Decimal `json:"paddy"`
	Rice  decimal.Decimal `json:"rice"`
	Unit  string          `json:"unit"`
}
