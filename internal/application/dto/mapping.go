package dto

import (
	"github.com/jhoicas/ricemill-ledger/internal/domain/entity"
	"github.com/jhoicas/ricemill-ledger/internal/domain/repository"
)

// FromBatch maps a batch entity.
func FromBatch(b *entity.Batch) *BatchResponse {
	if b == nil {
		return nil
	}
	return &BatchResponse{
		ID:          b.ID,
		ProductType: string(b.ProductType),
		Code:        b.Code,
		BatchDate:   b.BatchDate,
		Variety:     b.Variety,
		Moisture:    b.Moisture,
		SupplierID:  b.SupplierID,
		Notes:       b.Notes,
		CreatedAt:   b.CreatedAt,
	}
}

// FromBalance maps a balance row.
func FromBalance(b *entity.InventoryBalance) BalanceResponse {
	return BalanceResponse{
		ID:          b.ID,
		WarehouseID: b.WarehouseID,
		BatchID:     b.BatchID,
		ProductType: string(b.ProductType),
		Quantity:    b.Quantity,
		Unit:        b.Unit,
		Version:     b.Version,
		UpdatedAt:   b.UpdatedAt,
	}
}

// FromBalanceView maps a labelled balance row.
func FromBalanceView(v *repository.BalanceView) BalanceResponse {
	out := FromBalance(&v.InventoryBalance)
	out.BatchCode = v.BatchCode
	out.Variety = v.Variety
	out.WarehouseName = v.WarehouseName
	return out
}

// FromBalanceViews maps a list of labelled balance rows.
func FromBalanceViews(list []*repository.BalanceView) []BalanceResponse {
	out := make([]BalanceResponse, 0, len(list))
	for _, v := range list {
		out = append(out, FromBalanceView(v))
	}
	return out
}

// FromMovement maps a movement row.
func FromMovement(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:              m.ID,
		MovementType:    string(m.MovementType),
		ProductType:     string(m.ProductType),
		BatchID:         m.BatchID,
		Quantity:        m.Quantity,
		Unit:            m.Unit,
		WarehouseFromID: m.WarehouseFromID,
		WarehouseToID:   m.WarehouseToID,
		SupplierID:      m.SupplierID,
		CustomerID:      m.CustomerID,
		ReferenceNo:     m.ReferenceNo,
		Reason:          m.Reason,
		PerformedBy:     m.PerformedBy,
		PerformedAt:     m.PerformedAt,
	}
}

// FromMovements maps a list of movement rows.
func FromMovements(list []*entity.StockMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, FromMovement(m))
	}
	return out
}

// FromProcessingRecord maps a processing record.
func FromProcessingRecord(r *entity.ProcessingRecord) ProcessingRecordResponse {
	return ProcessingRecordResponse{
		ID:            r.ID,
		InputBatchID:  r.InputBatchID,
		OutputBatchID: r.OutputBatchID,
		WarehouseID:   r.WarehouseID,
		InputQty:      r.InputQty,
		OutputQty:     r.OutputQty,
		WasteQty:      r.WasteQty,
		YieldPercent:  r.YieldPercent,
		ReferenceNo:   r.ReferenceNo,
		Notes:         r.Notes,
		PerformedBy:   r.PerformedBy,
		PerformedAt:   r.PerformedAt,
	}
}

// FromWarehouse maps a warehouse.
func FromWarehouse(w *entity.Warehouse) *WarehouseResponse {
	if w == nil {
		return nil
	}
	return &WarehouseResponse{
		ID:        w.ID,
		Name:      w.Name,
		Location:  w.Location,
		Capacity:  w.Capacity,
		Notes:     w.Notes,
		Active:    w.Active,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

// FromThreshing maps a threshing record.
func FromThreshing(r *entity.ThreshingRecord) *ThreshingResponse {
	if r == nil {
		return nil
	}
	return &ThreshingResponse{
		ID:                 r.ID,
		BatchNumber:        r.BatchNumber,
		PaddyBatchID:       r.PaddyBatchID,
		WarehouseID:        r.WarehouseID,
		Variety:            r.Variety,
		InputQty:           r.InputQty,
		OutputQty:          r.OutputQty,
		WastageQty:         r.WastageQty,
		Efficiency:         r.Efficiency,
		ThreshingDate:      r.ThreshingDate,
		Operator:           r.Operator,
		MachineID:          r.MachineID,
		Status:             string(r.Status),
		RiceBatchID:        r.RiceBatchID,
		ProcessingRecordID: r.ProcessingRecordID,
		Notes:              r.Notes,
		CreatedBy:          r.CreatedBy,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

// FromSale maps a sale.
func FromSale(s *entity.Sale) *SaleResponse {
	if s == nil {
		return nil
	}
	return &SaleResponse{
		ID:            s.ID,
		InvoiceNumber: s.InvoiceNumber,
		ProductType:   string(s.ProductType),
		WarehouseID:   s.WarehouseID,
		BatchID:       s.BatchID,
		CustomerID:    s.CustomerID,
		Quantity:      s.Quantity,
		PricePerKg:    s.PricePerKg,
		TotalAmount:   s.TotalAmount,
		SaleDate:      s.SaleDate,
		Notes:         s.Notes,
		CreatedBy:     s.CreatedBy,
		CreatedAt:     s.CreatedAt,
	}
}
