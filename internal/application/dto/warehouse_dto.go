package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateWarehouseRequest input for creating a warehouse.
type CreateWarehouseRequest struct {
	Name     string          `json:"name" validate:"required,min=1,max=200"`
	Location string          `json:"location" validate:"max=300"`
	Capacity decimal.Decimal `json:"capacity"`
	Notes    string          `json:"notes"`
}

// UpdateWarehouseRequest input for updating a warehouse. Nil fields are left unchanged.
type UpdateWarehouseRequest struct {
	Name     *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Location *string          `json:"location" validate:"omitempty,max=300"`
	Capacity *decimal.Decimal `json:"capacity"`
	Notes    *string          `json:"notes"`
	Active   *bool            `json:"active"`
}

// WarehouseResponse a warehouse.
type WarehouseResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Location  string          `json:"location"`
	Capacity  decimal.Decimal `json:"capacity"`
	Notes     string          `json:"notes,omitempty"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// WarehouseListResponse paged warehouses.
type WarehouseListResponse struct {
	Items []WarehouseResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}
