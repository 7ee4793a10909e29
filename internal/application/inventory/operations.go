package inventory

import (
	"context"

	"github.com/jhoicas/ricemill-ledger/internal/domain"
	"github.com/jhoicas/ricemill-ledger/internal/domain/entity"
	"github.com/jhoicas/ricemill-ledger/internal/domain/inventory"
)

// Inbound receives stock. The batch and the balance row are created on first use.
// Warehouse capacity is not checked.
func (l *Ledger) Inbound(ctx context.Context, in InboundInput) (*MovementResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var res *MovementResult
	err := l.execute(ctx, opInbound, func(ctx context.Context, repos Repos) error {
		var err error
		res, err = l.inbound(ctx, repos, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.logMovement(opInbound, res.Movement, res.Balance)
	return res, nil
}

func (l *Ledger) inbound(ctx context.Context, repos Repos, in InboundInput) (*MovementResult, error) {
	if _, err := l.activeWarehouse(ctx, repos, in.WarehouseID); err != nil {
		return nil, err
	}
	batch, err := l.resolveBatch(ctx, repos, &entity.Batch{
		ProductType: in.ProductType,
		Code:        in.BatchCode,
		BatchDate:   in.BatchDate,
		Variety:     in.Variety,
		Moisture:    in.Moisture,
		SupplierID:  in.SupplierID,
		Notes:       in.Notes,
	})
	if err != nil {
		return nil, err
	}
	key := entity.BalanceKey{WarehouseID: in.WarehouseID, BatchID: batch.ID, ProductType: in.ProductType}
	bal, err := l.lockBalance(ctx, repos, lockRequest{key: key, policy: createIfMissing})
	if err != nil {
		return nil, err
	}

	now := l.now()
	if err := l.setQuantity(ctx, repos, bal, bal.Quantity.Add(in.Quantity), now); err != nil {
		return nil, err
	}
	mov := &entity.StockMovement{
		ID:            l.newID(),
		MovementType:  entity.MovementInbound,
		ProductType:   in.ProductType,
		BatchID:       batch.ID,
		Quantity:      in.Quantity,
		Unit:          entity.UnitKG,
		WarehouseToID: in.WarehouseID,
		SupplierID:    in.SupplierID,
		ReferenceNo:   l.reference(in.ReferenceNo),
		Reason:        in.Notes,
		PerformedBy:   in.PerformedBy,
		PerformedAt:   now,
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return &MovementResult{Batch: batch, Balance: bal, Movement: mov}, nil
}

// Outbound removes stock. Without AdminOverride the balance may not go below zero.
func (l *Ledger) Outbound(ctx context.Context, in OutboundInput) (*MovementResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var res *MovementResult
	err := l.execute(ctx, opOutbound, func(ctx context.Context, repos Repos) error {
		var err error
		res, err = l.outbound(ctx, repos, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.logMovement(opOutbound, res.Movement, res.Balance)
	return res, nil
}

// OutboundInTx runs Outbound inside a transaction owned by the caller, so that
// the caller's own writes (a sale, say) commit or roll back together with it.
func (l *Ledger) OutboundInTx(ctx context.Context, repos Repos, in OutboundInput) (*MovementResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	return l.outbound(ctx, repos, in)
}

func (l *Ledger) outbound(ctx context.Context, repos Repos, in OutboundInput) (*MovementResult, error) {
	if _, err := l.activeWarehouse(ctx, repos, in.WarehouseID); err != nil {
		return nil, err
	}
	key := entity.BalanceKey{WarehouseID: in.WarehouseID, BatchID: in.BatchID, ProductType: in.ProductType}
	bal, err := l.lockBalance(ctx, repos, lockRequest{key: key, policy: mustExist})
	if err != nil {
		return nil, err
	}
	newQty := bal.Quantity.Sub(in.Quantity)
	if newQty.IsNegative() {
		if !in.AdminOverride {
			return nil, domain.InsufficientStock(bal.Quantity, in.Quantity)
		}
		l.log.Warn().Str("balance_id", bal.ID).Str("quantity", newQty.String()).
			Str("performed_by", in.PerformedBy).Msg("outbound drives balance negative under admin override")
	}

	now := l.now()
	if err := l.setQuantity(ctx, repos, bal, newQty, now); err != nil {
		return nil, err
	}
	mov := &entity.StockMovement{
		ID:              l.newID(),
		MovementType:    entity.MovementOutbound,
		ProductType:     in.ProductType,
		BatchID:         in.BatchID,
		Quantity:        in.Quantity,
		Unit:            entity.UnitKG,
		WarehouseFromID: in.WarehouseID,
		CustomerID:      in.CustomerID,
		ReferenceNo:     l.reference(in.ReferenceNo),
		Reason:          in.Reason,
		PerformedBy:     in.PerformedBy,
		PerformedAt:     now,
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return &MovementResult{Balance: bal, Movement: mov}, nil
}

// Transfer moves stock between two warehouses. The source row must exist and
// hold enough stock; the destination row is created if needed. The system-wide
// quantity of the batch is unchanged.
func (l *Ledger) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var res *TransferResult
	err := l.execute(ctx, opTransfer, func(ctx context.Context, repos Repos) error {
		var err error
		res, err = l.transfer(ctx, repos, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.logMovement(opTransfer, res.Movement, res.Source)
	return res, nil
}

func (l *Ledger) transfer(ctx context.Context, repos Repos, in TransferInput) (*TransferResult, error) {
	if _, err := l.activeWarehouse(ctx, repos, in.FromWarehouseID); err != nil {
		return nil, err
	}
	if _, err := l.activeWarehouse(ctx, repos, in.ToWarehouseID); err != nil {
		return nil, err
	}
	src := entity.BalanceKey{WarehouseID: in.FromWarehouseID, BatchID: in.BatchID, ProductType: in.ProductType}
	dst := entity.BalanceKey{WarehouseID: in.ToWarehouseID, BatchID: in.BatchID, ProductType: in.ProductType}
	locked, err := l.lockInOrder(ctx, repos,
		lockRequest{key: src, policy: mustExist},
		lockRequest{key: dst, policy: createIfMissing},
	)
	if err != nil {
		return nil, err
	}
	source, dest := locked[src], locked[dst]
	if source.Quantity.LessThan(in.Quantity) {
		return nil, domain.InsufficientStock(source.Quantity, in.Quantity)
	}

	now := l.now()
	if err := l.setQuantity(ctx, repos, source, source.Quantity.Sub(in.Quantity), now); err != nil {
		return nil, err
	}
	if err := l.setQuantity(ctx, repos, dest, dest.Quantity.Add(in.Quantity), now); err != nil {
		return nil, err
	}
	mov := &entity.StockMovement{
		ID:              l.newID(),
		MovementType:    entity.MovementTransfer,
		ProductType:     in.ProductType,
		BatchID:         in.BatchID,
		Quantity:        in.Quantity,
		Unit:            entity.UnitKG,
		WarehouseFromID: in.FromWarehouseID,
		WarehouseToID:   in.ToWarehouseID,
		ReferenceNo:     l.reference(in.ReferenceNo),
		Reason:          in.Reason,
		PerformedBy:     in.PerformedBy,
		PerformedAt:     now,
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return &TransferResult{Source: source, Destination: dest, Movement: mov}, nil
}

// Adjustment adds a signed correction to an existing balance. A negative
// result needs AdminOverride.
func (l *Ledger) Adjustment(ctx context.Context, in AdjustmentInput) (*MovementResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var res *MovementResult
	err := l.execute(ctx, opAdjustment, func(ctx context.Context, repos Repos) error {
		var err error
		res, err = l.adjustment(ctx, repos, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.logMovement(opAdjustment, res.Movement, res.Balance)
	return res, nil
}

func (l *Ledger) adjustment(ctx context.Context, repos Repos, in AdjustmentInput) (*MovementResult, error) {
	if _, err := l.activeWarehouse(ctx, repos, in.WarehouseID); err != nil {
		return nil, err
	}
	key := entity.BalanceKey{WarehouseID: in.WarehouseID, BatchID: in.BatchID, ProductType: in.ProductType}
	bal, err := l.lockBalance(ctx, repos, lockRequest{key: key, policy: mustExist})
	if err != nil {
		return nil, err
	}
	newQty := bal.Quantity.Add(in.Quantity)
	if newQty.IsNegative() {
		if !in.AdminOverride {
			return nil, domain.InsufficientStock(bal.Quantity, in.Quantity.Abs())
		}
		l.log.Warn().Str("balance_id", bal.ID).Str("quantity", newQty.String()).
			Str("performed_by", in.PerformedBy).Msg("adjustment drives balance negative under admin override")
	}

	now := l.now()
	if err := l.setQuantity(ctx, repos, bal, newQty, now); err != nil {
		return nil, err
	}
	mov := &entity.StockMovement{
		ID:           l.newID(),
		MovementType: entity.MovementAdjustment,
		ProductType:  in.ProductType,
		BatchID:      in.BatchID,
		Quantity:     in.Quantity.Abs(),
		Unit:         entity.UnitKG,
		ReferenceNo:  l.reference(in.ReferenceNo),
		Reason:       in.Reason,
		PerformedBy:  in.PerformedBy,
		PerformedAt:  now,
	}
	if in.Quantity.IsNegative() {
		mov.WarehouseFromID = in.WarehouseID
	} else {
		mov.WarehouseToID = in.WarehouseID
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return &MovementResult{Balance: bal, Movement: mov}, nil
}

// Process converts paddy into rice inside one warehouse. The paddy balance can
// never go negative here. Yield is output/input*100; WasteQty is stored as given.
func (l *Ledger) Process(ctx context.Context, in ProcessInput) (*ProcessResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var res *ProcessResult
	err := l.execute(ctx, opProcess, func(ctx context.Context, repos Repos) error {
		var err error
		res, err = l.process(ctx, repos, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.log.Info().
		Str("op", opProcess).
		Str("record_id", res.Record.ID).
		Str("warehouse_id", in.WarehouseID).
		Str("input_qty", in.InputQty.String()).
		Str("output_qty", in.OutputQty.String()).
		Str("yield", res.Record.YieldPercent.StringFixed(2)).
		Str("performed_by", in.PerformedBy).
		Msg("processing recorded")
	return res, nil
}

// ProcessInTx runs Process inside a transaction owned by the caller.
func (l *Ledger) ProcessInTx(ctx context.Context, repos Repos, in ProcessInput) (*ProcessResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	return l.process(ctx, repos, in)
}

func (l *Ledger) process(ctx context.Context, repos Repos, in ProcessInput) (*ProcessResult, error) {
	if _, err := l.activeWarehouse(ctx, repos, in.WarehouseID); err != nil {
		return nil, err
	}
	input, err := repos.Batches.GetByID(ctx, in.InputBatchID)
	if err != nil {
		return nil, err
	}
	if input == nil {
		return nil, domain.NotFound("input batch %s not found", in.InputBatchID)
	}
	if input.ProductType != entity.ProductTypePaddy {
		return nil, domain.InvalidOperation("input batch must be PADDY, got %s", input.ProductType)
	}
	output, err := l.resolveBatch(ctx, repos, &entity.Batch{
		ProductType: entity.ProductTypeRice,
		Code:        in.OutputBatchCode,
		BatchDate:   in.OutputBatchDate,
		Variety:     in.OutputVariety,
		Notes:       in.Notes,
	})
	if err != nil {
		return nil, err
	}

	paddyKey := entity.BalanceKey{WarehouseID: in.WarehouseID, BatchID: input.ID, ProductType: entity.ProductTypePaddy}
	riceKey := entity.BalanceKey{WarehouseID: in.WarehouseID, BatchID: output.ID, ProductType: entity.ProductTypeRice}
	locked, err := l.lockInOrder(ctx, repos,
		lockRequest{key: paddyKey, policy: mustExist},
		lockRequest{key: riceKey, policy: createIfMissing},
	)
	if err != nil {
		return nil, err
	}
	paddy, rice := locked[paddyKey], locked[riceKey]
	if paddy.Quantity.LessThan(in.InputQty) {
		return nil, domain.InsufficientStock(paddy.Quantity, in.InputQty)
	}

	now := l.now()
	if err := l.setQuantity(ctx, repos, paddy, paddy.Quantity.Sub(in.InputQty), now); err != nil {
		return nil, err
	}
	if err := l.setQuantity(ctx, repos, rice, rice.Quantity.Add(in.OutputQty), now); err != nil {
		return nil, err
	}

	ref := l.reference(in.ReferenceNo)
	record := &entity.ProcessingRecord{
		ID:            l.newID(),
		InputBatchID:  input.ID,
		OutputBatchID: output.ID,
		WarehouseID:   in.WarehouseID,
		InputQty:      in.InputQty,
		OutputQty:     in.OutputQty,
		WasteQty:      in.WasteQty,
		YieldPercent:  inventory.YieldPercent(in.InputQty, in.OutputQty),
		ReferenceNo:   ref,
		Notes:         in.Notes,
		PerformedBy:   in.PerformedBy,
		PerformedAt:   now,
	}
	if err := repos.Processing.Create(ctx, record); err != nil {
		return nil, err
	}

	movements := []*entity.StockMovement{
		{
			ID:              l.newID(),
			MovementType:    entity.MovementProcessing,
			ProductType:     entity.ProductTypePaddy,
			BatchID:         input.ID,
			Quantity:        in.InputQty,
			Unit:            entity.UnitKG,
			WarehouseFromID: in.WarehouseID,
			ReferenceNo:     ref,
			Reason:          "processed into rice",
			PerformedBy:     in.PerformedBy,
			PerformedAt:     now,
		},
		{
			ID:            l.newID(),
			MovementType:  entity.MovementProcessing,
			ProductType:   entity.ProductTypeRice,
			BatchID:       output.ID,
			Quantity:      in.OutputQty,
			Unit:          entity.UnitKG,
			WarehouseToID: in.WarehouseID,
			ReferenceNo:   ref,
			Reason:        "produced from paddy",
			PerformedBy:   in.PerformedBy,
			PerformedAt:   now,
		},
	}
	for _, m := range movements {
		if err := repos.Movements.Create(ctx, m); err != nil {
			return nil, err
		}
	}
	return &ProcessResult{
		Record:       record,
		OutputBatch:  output,
		PaddyBalance: paddy,
		RiceBalance:  rice,
		Movements:    movements,
	}, nil
}

func (l *Ledger) logMovement(op string, m *entity.StockMovement, b *entity.InventoryBalance) {
	l.log.Info().
		Str("op", op).
		Str("movement_id", m.ID).
		Str("product_type", string(m.ProductType)).
		Str("batch_id", m.BatchID).
		Str("quantity", m.Quantity.String()).
		Str("balance", b.Quantity.String()).
		Int64("version", b.Version).
		Str("performed_by", m.PerformedBy).
		Msg("stock movement recorded")
}
