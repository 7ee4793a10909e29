package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/ricemill-ledger/internal/application/dto"
	"github.com/jhoicas/ricemill-ledger/internal/domain/entity"
	"github.com/jhoicas/ricemill-ledger/internal/domain/inventory"
	"github.com/jhoicas/ricemill-ledger/internal/domain/repository"
)

const dashboardLowStockRows = 20

// DashboardUseCase builds the stock dashboard.
//
// Four reads run in parallel: totals per product type (cached), stock per
// warehouse, low-stock rows and the latest movements.
type DashboardUseCase struct {
	reports   repository.StockReportRepository
	summary   *ReportUseCase
	threshold decimal.Decimal
	recent    int
	now       func() time.Time
}

// NewDashboardUseCase builds the use case. threshold is the low-stock limit in KG.
func NewDashboardUseCase(reports repository.StockReportRepository, summary *ReportUseCase, threshold decimal.Decimal, recent int) *DashboardUseCase {
	if recent <= 0 {
		recent = 10
	}
	return &DashboardUseCase{reports: reports, summary: summary, threshold: threshold, recent: recent, now: time.Now}
}

// Get returns the dashboard.
func (uc *DashboardUseCase) Get(ctx context.Context) (*dto.DashboardResponse, error) {
	var (
		totals     *dto.StockSummaryResponse
		warehouses []repository.WarehouseStock
		low        []*repository.BalanceView
		recent     []*entity.StockMovement
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if totals, err = uc.summary.Summary(gctx); err != nil {
			return fmt.Errorf("dashboard: totals: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if warehouses, err = uc.reports.StockByWarehouse(gctx); err != nil {
			return fmt.Errorf("dashboard: warehouses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if low, err = uc.reports.ListLowStock(gctx, uc.threshold, dashboardLowStockRows); err != nil {
			return fmt.Errorf("dashboard: low stock: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if recent, err = uc.reports.RecentMovements(gctx, uc.recent); err != nil {
			return fmt.Errorf("dashboard: recent movements: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	util := make([]dto.WarehouseUtilizationDTO, 0, len(warehouses))
	for _, w := range warehouses {
		util = append(util, dto.WarehouseUtilizationDTO{
			WarehouseID: w.WarehouseID,
			Name:        w.Name,
			Capacity:    w.Capacity,
			Quantity:    w.Quantity,
			Utilization: inventory.Utilization(w.Quantity, w.Capacity),
		})
	}

	return &dto.DashboardResponse{
		PaddyTotal:      totals.Paddy,
		RiceTotal:       totals.Rice,
		Unit:            entity.UnitKG,
		Warehouses:      util,
		LowStock:        dto.FromBalanceViews(low),
		RecentMovements: dto.FromMovements(recent),
		GeneratedAt:     uc.now(),
	}, nil
}
