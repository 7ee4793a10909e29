package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ricemill-ledger/internal/domain"
	"github.com/jhoicas/ricemill-ledger/internal/domain/entity"
	"github.com/jhoicas/ricemill-ledger/internal/domain/inventory"
)

// InboundInput receives stock into a warehouse. The batch is looked up by
// (ProductType, BatchCode); the date, variety and moisture only apply when it is new.
type InboundInput struct {
	ProductType entity.ProductType
	WarehouseID string
	BatchCode   string
	BatchDate   time.Time
	Variety     string
	Moisture    decimal.Decimal
	Quantity    decimal.Decimal
	SupplierID  string
	ReferenceNo string
	Notes       string
	PerformedBy string
}

func (in *InboundInput) validate() error {
	in.BatchCode = inventory.NormalizeBatchCode(in.BatchCode)
	switch {
	case !in.ProductType.Valid():
		return domain.InvalidInput("unknown product type %q", in.ProductType)
	case in.WarehouseID == "":
		return domain.InvalidInput("warehouse_id is required")
	case in.BatchCode == "":
		return domain.InvalidInput("batch_code is required")
	case !in.Quantity.IsPositive():
		return domain.InvalidInput("quantity must be greater than zero")
	case in.Moisture.IsNegative():
		return domain.InvalidInput("moisture cannot be negative")
	}
	if err := inventory.CheckQuantity("quantity", in.Quantity); err != nil {
		return err
	}
	if err := inventory.CheckMoisture(in.Moisture); err != nil {
		return err
	}
	return requireActor(in.PerformedBy)
}

// OutboundInput removes stock from a warehouse. AdminOverride lets the balance go negative.
type OutboundInput struct {
	ProductType   entity.ProductType
	WarehouseID   string
	BatchID       string
	Quantity      decimal.Decimal
	CustomerID    string
	ReferenceNo   string
	Reason        string
	AdminOverride bool
	PerformedBy   string
}

func (in OutboundInput) validate() error {
	switch {
	case !in.ProductType.Valid():
		return domain.InvalidInput("unknown product type %q", in.ProductType)
	case in.WarehouseID == "" || in.BatchID == "":
		return domain.InvalidInput("warehouse_id and batch_id are required")
	case !in.Quantity.IsPositive():
		return domain.InvalidInput("quantity must be greater than zero")
	}
	if err := inventory.CheckQuantity("quantity", in.Quantity); err != nil {
		return err
	}
	return requireActor(in.PerformedBy)
}

// TransferInput moves stock of one batch between two warehouses.
type TransferInput struct {
	ProductType     entity.ProductType
	FromWarehouseID string
	ToWarehouseID   string
	BatchID         string
	Quantity        decimal.Decimal
	ReferenceNo     string
	Reason          string
	PerformedBy     string
}

func (in TransferInput) validate() error {
	if in.FromWarehouseID != "" && in.FromWarehouseID == in.ToWarehouseID {
		return domain.InvalidOperation("source and destination warehouse must differ")
	}
	switch {
	case !in.ProductType.Valid():
		return domain.InvalidInput("unknown product type %q", in.ProductType)
	case in.FromWarehouseID == "" || in.ToWarehouseID == "" || in.BatchID == "":
		return domain.InvalidInput("from_warehouse_id, to_warehouse_id and batch_id are required")
	case !in.Quantity.IsPositive():
		return domain.InvalidInput("quantity must be greater than zero")
	}
	if err := inventory.CheckQuantity("quantity", in.Quantity); err != nil {
		return err
	}
	return requireActor(in.PerformedBy)
}

// AdjustmentInput corrects a balance by a signed quantity. Reason is mandatory.
type AdjustmentInput struct {
	ProductType   entity.ProductType
	WarehouseID   string
	BatchID       string
	Quantity      decimal.Decimal
	Reason        string
	ReferenceNo   string
	AdminOverride bool
	PerformedBy   string
}

func (in AdjustmentInput) validate() error {
	switch {
	case !in.ProductType.Valid():
		return domain.InvalidInput("unknown product type %q", in.ProductType)
	case in.WarehouseID == "" || in.BatchID == "":
		return domain.InvalidInput("warehouse_id and batch_id are required")
	case in.Quantity.IsZero():
		return domain.InvalidInput("quantity must not be zero")
	case in.Reason == "":
		return domain.InvalidOperation("adjustment requires a reason")
	}
	if err := inventory.CheckQuantity("quantity", in.Quantity); err != nil {
		return err
	}
	return requireActor(in.PerformedBy)
}

// ProcessInput converts paddy held in a warehouse into a rice batch in the same warehouse.
// WasteQty is recorded as given.
type ProcessInput struct {
	WarehouseID     string
	InputBatchID    string
	OutputBatchCode string
	OutputBatchDate time.Time
	OutputVariety   string
	InputQty        decimal.Decimal
	OutputQty       decimal.Decimal
	WasteQty        decimal.Decimal
	ReferenceNo     string
	Notes           string
	PerformedBy     string
}

func (in *ProcessInput) validate() error {
	in.OutputBatchCode = inventory.NormalizeBatchCode(in.OutputBatchCode)
	switch {
	case in.WarehouseID == "" || in.InputBatchID == "":
		return domain.InvalidInput("warehouse_id and input_batch_id are required")
	case in.OutputBatchCode == "":
		return domain.InvalidInput("output_batch_code is required")
	case !in.InputQty.IsPositive():
		return domain.InvalidInput("input_qty must be greater than zero")
	case !in.OutputQty.IsPositive():
		return domain.InvalidInput("output_qty must be greater than zero")
	case in.WasteQty.IsNegative():
		return domain.InvalidInput("waste_qty cannot be negative")
	}
	for _, q := range []struct {
		field string
		qty   decimal.Decimal
	}{{"input_qty", in.InputQty}, {"output_qty", in.OutputQty}, {"waste_qty", in.WasteQty}} {
		if err := inventory.CheckQuantity(q.field, q.qty); err != nil {
			return err
		}
	}
	return requireActor(in.PerformedBy)
}

func requireActor(performedBy string) error {
	if performedBy == "" {
		return domain.InvalidInput("performed_by is required")
	}
	return nil
}

// MovementResult is the outcome of a single-row operation.
type MovementResult struct {
	Batch    *entity.Batch // set by Inbound
	Balance  *entity.InventoryBalance
	Movement *entity.StockMovement
}

// TransferResult is the outcome of a transfer.
type TransferResult struct {
	Source      *entity.InventoryBalance
	Destination *entity.InventoryBalance
	Movement    *entity.StockMovement
}

// ProcessResult is the outcome of a paddy to rice conversion.
type ProcessResult struct {
	Record       *entity.ProcessingRecord
	OutputBatch  *entity.Batch
	PaddyBalance *entity.InventoryBalance
	RiceBalance  *entity.InventoryBalance
	Movements    []*entity.StockMovement
}
