package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/ricemill-ledger/internal/domain/entity"
	"github.com/jhoicas/ricemill-ledger/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, invoice_number, product_type, warehouse_id, batch_id, customer_id,
	quantity, price_per_kg, total_amount, sale_date, notes, created_by, created_at`

// SaleRepo persists sales. Invoice numbers are unique (uq_sales_invoice_number).
type SaleRepo struct {
	q Querier
}

func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.InvoiceNumber, s.ProductType, s.WarehouseID, s.BatchID, nullString(s.CustomerID),
		s.Quantity, s.PricePerKg, s.TotalAmount, s.SaleDate, s.Notes, s.CreatedBy, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`
	var (
		s        entity.Sale
		customer *string
	)
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.InvoiceNumber, &s.ProductType, &s.WarehouseID, &s.BatchID, &customer,
		&s.Quantity, &s.PricePerKg, &s.TotalAmount, &s.SaleDate, &s.Notes, &s.CreatedBy, &s.CreatedAt,
	)
	if err != nil {
		if isMissing(err) {
			return nil, nil
		}
		return nil, lookupFailed(err, "sale", id)
	}
	s.CustomerID = derefString(customer)
	return &s, nil
}

// CountByInvoicePrefix counts invoices whose number starts with prefix.
func (r *SaleRepo) CountByInvoicePrefix(ctx context.Context, prefix string) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM sales WHERE invoice_number LIKE $1::text || '%'`, prefix).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	return n, nil
}
