// Package sales records paddy and rice sales. Each sale removes its quantity
// from the ledger in the same transaction that stores the sale.
package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ricemill-ledger/internal/application/dto"
	"github.com/jhoicas/ricemill-ledger/internal/application/inventory"
	"github.com/jhoicas/ricemill-ledger/internal/domain"
	"github.com/jhoicas/ricemill-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/ricemill-ledger/internal/domain/inventory"
	"github.com/jhoicas/ricemill-ledger/internal/domain/repository"
	"github.com/jhoicas/ricemill-ledger/pkg/logger"
)

const opSale = "sale"

// UseCase records and reads sales.
type UseCase struct {
	tx     TxRunner
	ledger Ledger
	sales  repository.SaleRepository
	log    *logger.Logger
	now    func() time.Time
}

// NewUseCase builds the use case. sales serves reads outside a transaction.
func NewUseCase(tx TxRunner, ledger Ledger, sales repository.SaleRepository, log *logger.Logger) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{tx: tx, ledger: ledger, sales: sales, log: log.Named("sales"), now: time.Now}
}

// Create stores the sale and issues the matching outbound movement. There is no
// admin override here: a sale never drives a balance negative.
func (uc *UseCase) Create(ctx context.Context, actor string, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	productType, ok := entity.ParseProductType(in.ProductType)
	switch {
	case !ok:
		return nil, domain.InvalidInput("unknown product type %q", in.ProductType)
	case in.WarehouseID == "" || in.BatchID == "":
		return nil, domain.InvalidInput("warehouse_id and batch_id are required")
	case !in.Quantity.IsPositive():
		return nil, domain.InvalidInput("quantity must be greater than zero")
	case !in.PricePerKg.IsPositive():
		return nil, domain.InvalidInput("price_per_kg must be greater than zero")
	case actor == "":
		return nil, domain.InvalidInput("performed_by is required")
	}
	if err := domaininv.CheckQuantity("quantity", in.Quantity); err != nil {
		return nil, err
	}
	if err := domaininv.CheckPrice("price_per_kg", in.PricePerKg); err != nil {
		return nil, err
	}

	now := uc.now()
	saleDate := now
	if in.SaleDate != nil {
		saleDate = *in.SaleDate
	}
	total := Total(in.Quantity, in.PricePerKg)

	var (
		sale *entity.Sale
		mov  *entity.StockMovement
	)
	err := uc.ledger.Execute(ctx, opSale, func(ctx context.Context) error {
		return uc.tx.RunSale(ctx, func(ctx context.Context, repos inventory.Repos, sales repository.SaleRepository) error {
			number, err := nextInvoiceNumber(ctx, sales, productType, saleDate)
			if err != nil {
				return err
			}
			res, err := uc.ledger.OutboundInTx(ctx, repos, inventory.OutboundInput{
				ProductType: productType,
				WarehouseID: in.WarehouseID,
				BatchID:     in.BatchID,
				Quantity:    in.Quantity,
				CustomerID:  in.CustomerID,
				ReferenceNo: number,
				Reason:      "sale " + number,
				PerformedBy: actor,
			})
			if err != nil {
				return err
			}
			s := &entity.Sale{
				ID:            uuid.New().String(),
				InvoiceNumber: number,
				ProductType:   productType,
				WarehouseID:   in.WarehouseID,
				BatchID:       in.BatchID,
				CustomerID:    in.CustomerID,
				Quantity:      in.Quantity,
				PricePerKg:    in.PricePerKg,
				TotalAmount:   total,
				SaleDate:      saleDate,
				Notes:         in.Notes,
				CreatedBy:     actor,
				CreatedAt:     now,
			}
			if err := sales.Create(ctx, s); err != nil {
				return err
			}
			sale, mov = s, res.Movement
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("invoice_number", sale.InvoiceNumber).
		Str("product_type", string(sale.ProductType)).
		Str("batch_id", sale.BatchID).
		Str("quantity", sale.Quantity.String()).
		Str("total", sale.TotalAmount.StringFixed(2)).
		Str("performed_by", actor).
		Msg("sale recorded")

	out := dto.FromSale(sale)
	m := dto.FromMovement(mov)
	out.Movement = &m
	return out, nil
}

// GetByID returns a sale or NotFound.
func (uc *UseCase) GetByID(ctx context.Context, id string) (*dto.SaleResponse, error) {
	s, err := uc.sales.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.NotFound("sale %s not found", id)
	}
	return dto.FromSale(s), nil
}

// nextInvoiceNumber returns INV-<TYPE>-YYYYMMDD-NNNN, numbered per type and day.
// Two concurrent sales can draw the same number; the unique index then fails
// one of them with a Conflict and the transaction is retried.
func nextInvoiceNumber(ctx context.Context, sales repository.SaleRepository, t entity.ProductType, day time.Time) (string, error) {
	prefix := fmt.Sprintf("INV-%s-%s-", t, day.Format("20060102"))
	n, err := sales.CountByInvoicePrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, n+1), nil
}

// Total is quantity times unit price rounded to cents.
func Total(quantity, pricePerKg decimal.Decimal) decimal.Decimal {
	return quantity.Mul(pricePerKg).Round(2)
}
