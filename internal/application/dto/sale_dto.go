package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateSaleRequest body for POST /api/sales.
type CreateSaleRequest struct {
	ProductType string          `json:"product_type" validate:"required,oneof=PADDY RICE"`
	WarehouseID string          `json:"warehouse_id" validate:"required"`
	BatchID     string          `json:"batch_id" validate:"required"`
	CustomerID  string          `json:"customer_id,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	PricePerKg  decimal.Decimal `json:"price_per_kg"`
	SaleDate    *time.Time      `json:"sale_date,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// SaleResponse a recorded sale with the outbound movement it issued.
type SaleResponse struct {
	ID            string            `json:"id"`
	InvoiceNumber string            `json:"invoice_number"`
	ProductType   string            `json:"product_type"`
	WarehouseID   string            `json:"warehouse_id"`
	BatchID       string            `json:"batch_id"`
	CustomerID    string            `json:"customer_id,omitempty"`
	Quantity      decimal.Decimal   `json:"quantity"`
	PricePerKg    decimal.Decimal   `json:"price_per_kg"`
	TotalAmount   decimal.Decimal   `json:"total_amount"`
	SaleDate      time.Time         `json:"sale_date"`
	Notes         string            `json:"notes,omitempty"`
	CreatedBy     string            `json:"created_by"`
	CreatedAt     time.Time         `json:"created_at"`
	Movement      *MovementResponse `json:"movement,omitempty"`
}
