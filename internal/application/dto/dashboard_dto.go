package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardResponse body of GET /api/dashboard.
type DashboardResponse struct {
	PaddyTotal      decimal.Decimal           `json:"paddy_total"`
	RiceTotal       decimal.Decimal           `json:"rice_total"`
	Unit            string                    `json:"unit"`
	Warehouses      []WarehouseUtilizationDTO `json:"warehouses"`
	LowStock        []BalanceResponse         `json:"low_stock"`
	RecentMovements []MovementResponse        `json:"recent_movements"`
	GeneratedAt     time.Time                 `json:"generated_at"`
}

// WarehouseUtilizationDTO current stock against capacity. Utilization is a percentage.
type WarehouseUtilizationDTO struct {
	WarehouseID string          `json:"warehouse_id"`
	Name        string          `json:"name"`
	Capacity    decimal.Decimal `json:"capacity"`
	Quantity    decimal.Decimal `json:"quantity"`
	Utilization decimal.Decimal `json:"utilization"`
}
