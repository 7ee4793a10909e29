package inventory

import (
	"context"

	"github.com/jhoicas/ricemill-ledger/internal/application/dto"
	"github.com/jhoicas/ricemill-ledger/internal/domain"
	"github.com/jhoicas/ricemill-ledger/internal/domain/entity"
)

// MovementUseCase adapts API requests to ledger operations. The actor is the
// authenticated user and becomes PerformedBy on every movement.
type MovementUseCase struct {
	ledger *Ledger
}

func NewMovementUseCase(ledger *Ledger) *MovementUseCase {
	return &MovementUseCase{ledger: ledger}
}

func (uc *MovementUseCase) Inbound(ctx context.Context, actor string, in dto.InboundRequest) (*dto.MovementResultResponse, error) {
	t, err := parseType(in.ProductType)
	if err != nil {
		return nil, err
	}
	input := InboundInput{
		ProductType: t,
		WarehouseID: in.WarehouseID,
		BatchCode:   in.BatchCode,
		Variety:     in.Variety,
		Moisture:    in.Moisture,
		Quantity:    in.Quantity,
		SupplierID:  in.SupplierID,
		ReferenceNo: in.ReferenceNo,
		Notes:       in.Notes,
		PerformedBy: actor,
	}
	if in.BatchDate != nil {
		input.BatchDate = *in.BatchDate
	}
	res, err := uc.ledger.Inbound(ctx, input)
	if err != nil {
		return nil, err
	}
	return movementResult(res), nil
}

func (uc *MovementUseCase) Outbound(ctx context.Context, actor string, in dto.OutboundRequest) (*dto.MovementResultResponse, error) {
	t, err := parseType(in.ProductType)
	if err != nil {
		return nil, err
	}
	res, err := uc.ledger.Outbound(ctx, OutboundInput{
		ProductType:   t,
		WarehouseID:   in.WarehouseID,
		BatchID:       in.BatchID,
		Quantity:      in.Quantity,
		CustomerID:    in.CustomerID,
		ReferenceNo:   in.ReferenceNo,
		Reason:        in.Reason,
		AdminOverride: in.AdminOverride,
		PerformedBy:   actor,
	})
	if err != nil {
		return nil, err
	}
	return movementResult(res), nil
}

func (uc *MovementUseCase) Transfer(ctx context.Context, actor string, in dto.TransferRequest) (*dto.TransferResponse, error) {
	t, err := parseType(in.ProductType)
	if err != nil {
		return nil, err
	}
	res, err := uc.ledger.Transfer(ctx, TransferInput{
		ProductType:     t,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		BatchID:         in.BatchID,
		Quantity:        in.Quantity,
		ReferenceNo:     in.ReferenceNo,
		Reason:          in.Reason,
		PerformedBy:     actor,
	})
	if err != nil {
		return nil, err
	}
	return &dto.TransferResponse{
		Source:      dto.FromBalance(res.Source),
		Destination: dto.FromBalance(res.Destination),
		Movement:    dto.FromMovement(res.Movement),
	}, nil
}

func (uc *MovementUseCase) Adjustment(ctx context.Context, actor string, in dto.AdjustmentRequest) (*dto.MovementResultResponse, error) {
	t, err := parseType(in.ProductType)
	if err != nil {
		return nil, err
	}
	res, err := uc.ledger.Adjustment(ctx, AdjustmentInput{
		ProductType:   t,
		WarehouseID:   in.WarehouseID,
		BatchID:       in.BatchID,
		Quantity:      in.Quantity,
		Reason:        in.Reason,
		ReferenceNo:   in.ReferenceNo,
		AdminOverride: in.AdminOverride,
		PerformedBy:   actor,
	})
	if err != nil {
		return nil, err
	}
	return movementResult(res), nil
}

func (uc *MovementUseCase) Process(ctx context.Context, actor string, in dto.ProcessRequest) (*dto.ProcessResponse, error) {
	input := ProcessInput{
		WarehouseID:     in.WarehouseID,
		InputBatchID:    in.InputBatchID,
		OutputBatchCode: in.OutputBatchCode,
		OutputVariety:   in.OutputVariety,
		InputQty:        in.InputQty,
		OutputQty:       in.OutputQty,
		WasteQty:        in.WasteQty,
		ReferenceNo:     in.ReferenceNo,
		Notes:           in.Notes,
		PerformedBy:     actor,
	}
	if in.OutputBatchDate != nil {
		input.OutputBatchDate = *in.OutputBatchDate
	}
	res, err := uc.ledger.Process(ctx, input)
	if err != nil {
		return nil, err
	}
	return &dto.ProcessResponse{
		Record:       dto.FromProcessingRecord(res.Record),
		OutputBatch:  *dto.FromBatch(res.OutputBatch),
		PaddyBalance: dto.FromBalance(res.PaddyBalance),
		RiceBalance:  dto.FromBalance(res.RiceBalance),
		Movements:    dto.FromMovements(res.Movements),
	}, nil
}

func parseType(s string) (entity.ProductType, error) {
	t, ok := entity.ParseProductType(s)
	if !ok {
		return "", domain.InvalidInput("unknown product type %q", s)
	}
	return t, nil
}

func movementResult(res *MovementResult) *dto.MovementResultResponse {
	out := &dto.MovementResultResponse{
		Balance:  dto.FromBalance(res.Balance),
		Movement: dto.FromMovement(res.Movement),
	}
	if res.Batch != nil {
		out.Batch = dto.FromBatch(res.Batch)
	}
	return out
}
