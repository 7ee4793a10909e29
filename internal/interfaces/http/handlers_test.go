package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ricemill-ledger/internal/application/analytics"
	"github.com/jhoicas/ricemill-ledger/internal/application/dto"
	"github.com/jhoicas/ricemill-ledger/internal/application/inventory"
	"github.com/jhoicas/ricemill-ledger/internal/application/inventory/inventorytest"
	"github.com/jhoicas/ricemill-ledger/internal/application/sales"
	"github.com/jhoicas/ricemill-ledger/internal/application/threshing"
	"github.com/jhoicas/ricemill-ledger/internal/application/usecase"
	"github.com/jhoicas/ricemill-ledger/internal/domain/entity"
	"github.com/jhoicas/ricemill-ledger/internal/domain/repository"
	apphttp "github.com/jhoicas/ricemill-ledger/internal/interfaces/http"
	"github.com/jhoicas/ricemill-ledger/pkg/config"
	pkgjwt "github.com/jhoicas/ricemill-ledger/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const (
	whMain  = "11111111-1111-1111-1111-111111111111"
	whSouth = "22222222-2222-2222-2222-222222222222"
)

// emptyReports answers every read with nothing; the ledger paths under test
// write through the in-memory store instead.
type emptyReports struct{}

func (emptyReports) GetBalance(context.Context, string) (*repository.BalanceView, error) {
	return nil, nil
}

func (emptyReports) ListBalancesByWarehouse(context.Context, string, entity.ProductType, int, int) ([]*repository.BalanceView, error) {
	return nil, nil
}

func (emptyReports) ListBalancesByBatch(context.Context, string) ([]*repository.BalanceView, error) {
	return nil, nil
}

func (emptyReports) SumByProductType(context.Context) (map[entity.ProductType]decimal.Decimal, error) {
	return map[entity.ProductType]decimal.Decimal{
		entity.ProductTypePaddy: decimal.NewFromInt(42),
		entity.ProductTypeRice:  decimal.Zero,
	}, nil
}

func (emptyReports) StockByWarehouse(context.Context) ([]repository.WarehouseStock, error) {
	return nil, nil
}

func (emptyReports) ListLowStock(context.Context, decimal.Decimal, int) ([]*repository.BalanceView, error) {
	return nil, nil
}

func (emptyReports) ListMovements(context.Context, repository.MovementFilter) ([]*entity.StockMovement, error) {
	return nil, nil
}

func (emptyReports) RecentMovements(context.Context, int) ([]*entity.StockMovement, error) {
	return nil, nil
}

type noBatches struct{}

func (noBatches) GetByID(context.Context, string) (*entity.Batch, error) { return nil, nil }

func (noBatches) FindByTypeAndCode(context.Context, entity.ProductType, string) (*entity.Batch, error) {
	return nil, nil
}

func (noBatches) CreateIfAbsent(_ context.Context, b *entity.Batch) (*entity.Batch, error) {
	return b, nil
}

func (noBatches) ListByType(context.Context, entity.ProductType, int, int) ([]*entity.Batch, error) {
	return nil, nil
}

type noProcessing struct{}

func (noProcessing) Create(context.Context, *entity.ProcessingRecord) error { return nil }

func (noProcessing) GetByID(context.Context, string) (*entity.ProcessingRecord, error) {
	return nil, nil
}

type apiFixture struct {
	app   *fiber.App
	store *inventorytest.Store
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := inventorytest.NewStore()
	store.AddWarehouse(whMain, "Main", 100000)
	store.AddWarehouse(whSouth, "South", 50000)

	ledger := inventory.NewLedger(store, inventory.WithRetry(1, time.Millisecond))
	reports := analytics.NewReportUseCase(emptyReports{}, noBatches{}, noProcessing{}, nil)
	threshold := decimal.NewFromInt(1000)
	thCfg := config.ThreshingConfig{MinEfficiency: 60, MaxEfficiency: 75, BatchPrefix: "TH"}

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(nil)})
	app.Use(requestid.New())
	apphttp.Router(app, apphttp.RouterDeps{
		Inventory: apphttp.NewInventoryHandler(inventory.NewMovementUseCase(ledger), reports, threshold),
		Warehouse: apphttp.NewWarehouseHandler(usecase.NewWarehouseUseCase(store.WarehouseRepository())),
		Threshing: apphttp.NewThreshingHandler(threshing.NewUseCase(store, ledger, store.ThreshingReader(), thCfg, nil)),
		Sale:      apphttp.NewSaleHandler(sales.NewUseCase(store, ledger, store.SaleReader(), nil)),
		Dashboard: apphttp.NewDashboardHandler(analytics.NewDashboardUseCase(emptyReports{}, reports, threshold, 10)),
		JWTSecret: testJWTSecret,
		JWTIssuer: testIssuer,
	})
	return &apiFixture{app: app, store: store}
}

func (f *apiFixture) do(t *testing.T, method, path, role string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func (f *apiFixture) receivePaddy(t *testing.T, code string, amount string) dto.MovementResultResponse {
	t.Helper()
	resp, raw := f.do(t, http.MethodPost, "/api/inventory/inbound", pkgjwt.RoleOperator, fiber.Map{
		"product_type": "PADDY",
		"warehouse_id": whMain,
		"batch_code":   code,
		"quantity":     amount,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	return decode[dto.MovementResultResponse](t, raw)
}

// ──────────────────────────────────────────────────────────────────────────────
// Inventory
// ──────────────────────────────────────────────────────────────────────────────

func TestInventoryAPI_InboundThenOutbound(t *testing.T) {
	f := newAPI(t)
	in := f.receivePaddy(t, "p-100", "1000")
	require.NotNil(t, in.Batch)
	assert.Equal(t, "P-100", in.Batch.Code)
	assert.Equal(t, testUserID, in.Movement.PerformedBy)

	resp, raw := f.do(t, http.MethodPost, "/api/inventory/outbound", pkgjwt.RoleOperator, fiber.Map{
		"product_type": "PADDY",
		"warehouse_id": whMain,
		"batch_id":     in.Batch.ID,
		"quantity":     "250.5",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	out := decode[dto.MovementResultResponse](t, raw)
	assert.Equal(t, "749.5", out.Balance.Quantity.String())
}

func TestInventoryAPI_InsufficientStockIs409(t *testing.T) {
	f := newAPI(t)
	in := f.receivePaddy(t, "p-101", "100")

	resp, raw := f.do(t, http.MethodPost, "/api/inventory/outbound", pkgjwt.RoleOperator, fiber.Map{
		"product_type": "PADDY",
		"warehouse_id": whMain,
		"batch_id":     in.Batch.ID,
		"quantity":     "500",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, raw)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	assert.NotEmpty(t, body.RequestID)
	assert.Equal(t, resp.Header.Get(fiber.HeaderXRequestID), body.RequestID)
}

func TestInventoryAPI_OverrideNeedsAdmin(t *testing.T) {
	f := newAPI(t)
	in := f.receivePaddy(t, "p-102", "100")
	runs := f.store.Runs()

	req := fiber.Map{
		"product_type":   "PADDY",
		"warehouse_id":   whMain,
		"batch_id":       in.Batch.ID,
		"quantity":       "150",
		"admin_override": true,
	}
	resp, raw := f.do(t, http.MethodPost, "/api/inventory/outbound", pkgjwt.RoleOperator, req)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", decode[dto.ErrorResponse](t, raw).Code)
	assert.Equal(t, runs, f.store.Runs())

	resp, raw = f.do(t, http.MethodPost, "/api/inventory/outbound", pkgjwt.RoleAdmin, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	assert.Equal(t, "-50", decode[dto.MovementResultResponse](t, raw).Balance.Quantity.String())
}

func TestInventoryAPI_SameWarehouseTransferIs422(t *testing.T) {
	f := newAPI(t)
	in := f.receivePaddy(t, "p-103", "100")

	resp, raw := f.do(t, http.MethodPost, "/api/inventory/transfer", pkgjwt.RoleOperator, fiber.Map{
		"product_type":      "PADDY",
		"from_warehouse_id": whMain,
		"to_warehouse_id":   whMain,
		"batch_id":          in.Batch.ID,
		"quantity":          "10",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "INVALID_OPERATION", decode[dto.ErrorResponse](t, raw).Code)
}

func TestInventoryAPI_ValidationIs400(t *testing.T) {
	f := newAPI(t)

	resp, raw := f.do(t, http.MethodPost, "/api/inventory/inbound", pkgjwt.RoleOperator, fiber.Map{
		"product_type": "BRAN",
		"batch_code":   "x",
		"quantity":     "1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, raw)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Contains(t, body.Message, "product_type must be one of")
	assert.Contains(t, body.Message, "warehouse_id is required")
	assert.Zero(t, f.store.Runs())
}

func TestInventoryAPI_ViewerCannotWrite(t *testing.T) {
	f := newAPI(t)

	resp, _ := f.do(t, http.MethodPost, "/api/inventory/inbound", pkgjwt.RoleViewer, fiber.Map{
		"product_type": "PADDY",
		"warehouse_id": whMain,
		"batch_code":   "p-1",
		"quantity":     "1",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, "/api/inventory/summary", pkgjwt.RoleViewer, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestInventoryAPI_NoTokenIs401(t *testing.T) {
	f := newAPI(t)

	resp, raw := f.do(t, http.MethodGet, "/api/inventory/summary", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", decode[dto.ErrorResponse](t, raw).Code)
}

func TestInventoryAPI_LockTimeoutIs503(t *testing.T) {
	f := newAPI(t)
	f.store.FailNextCommits(5)

	resp, raw := f.do(t, http.MethodPost, "/api/inventory/inbound", pkgjwt.RoleOperator, fiber.Map{
		"product_type": "PADDY",
		"warehouse_id": whMain,
		"batch_code":   "p-104",
		"quantity":     "10",
	})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get(fiber.HeaderRetryAfter))
	assert.Equal(t, "LOCK_TIMEOUT", decode[dto.ErrorResponse](t, raw).Code)
}

func TestInventoryAPI_ReadPaths(t *testing.T) {
	f := newAPI(t)

	resp, raw := f.do(t, http.MethodGet, "/api/inventory/summary", pkgjwt.RoleViewer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sum := decode[dto.StockSummaryResponse](t, raw)
	assert.Equal(t, "42", sum.Paddy.String())
	assert.Equal(t, entity.UnitKG, sum.Unit)

	resp, _ = f.do(t, http.MethodGet, "/api/inventory/balances/nope", pkgjwt.RoleViewer, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, "/api/inventory/movements?from=2024-13-01", pkgjwt.RoleViewer, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, "/api/inventory/movements?from=2024-06-10&to=2024-06-01", pkgjwt.RoleViewer, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, "/api/inventory/low-stock?threshold=abc", pkgjwt.RoleViewer, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, "/api/batches/PADDY/p-1", pkgjwt.RoleViewer, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, "/api/inventory/balances?limit=500", pkgjwt.RoleViewer, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, "/api/dashboard", pkgjwt.RoleViewer, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Warehouses, sales and threshing
// ──────────────────────────────────────────────────────────────────────────────

func TestWarehouseAPI_AdminOnlyWrites(t *testing.T) {
	f := newAPI(t)
	req := fiber.Map{"name": "North", "capacity": "20000"}

	resp, _ := f.do(t, http.MethodPost, "/api/warehouses", pkgjwt.RoleOperator, req)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw := f.do(t, http.MethodPost, "/api/warehouses", pkgjwt.RoleAdmin, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	created := decode[dto.WarehouseResponse](t, raw)
	assert.Equal(t, "North", created.Name)

	resp, _ = f.do(t, http.MethodGet, "/api/warehouses/"+created.ID, pkgjwt.RoleViewer, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = f.do(t, http.MethodDelete, "/api/warehouses/"+created.ID, pkgjwt.RoleAdmin, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, "/api/warehouses/missing", pkgjwt.RoleViewer, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSaleAPI_CreateAndGet(t *testing.T) {
	f := newAPI(t)
	in := f.receivePaddy(t, "p-200", "1000")

	resp, raw := f.do(t, http.MethodPost, "/api/sales", pkgjwt.RoleOperator, fiber.Map{
		"product_type": "PADDY",
		"warehouse_id": whMain,
		"batch_id":     in.Batch.ID,
		"quantity":     "250",
		"price_per_kg": "2.5",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	sale := decode[dto.SaleResponse](t, raw)
	assert.Regexp(t, `^INV-PADDY-\d{8}-0001$`, sale.InvoiceNumber)
	assert.Equal(t, "625", sale.TotalAmount.String())

	resp, _ = f.do(t, http.MethodGet, "/api/sales/"+sale.ID, pkgjwt.RoleViewer, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw = f.do(t, http.MethodPost, "/api/sales", pkgjwt.RoleOperator, fiber.Map{
		"product_type": "PADDY",
		"warehouse_id": whMain,
		"batch_id":     in.Batch.ID,
		"quantity":     "5000",
		"price_per_kg": "2.5",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", decode[dto.ErrorResponse](t, raw).Code)
	assert.Len(t, f.store.Sales(), 1)
}

func TestThreshingAPI_Lifecycle(t *testing.T) {
	f := newAPI(t)
	in := f.receivePaddy(t, "p-300", "1000")

	resp, raw := f.do(t, http.MethodPost, "/api/threshing", pkgjwt.RoleOperator, fiber.Map{
		"paddy_batch_id": in.Batch.ID,
		"warehouse_id":   whMain,
		"input_qty":      "1000",
		"output_qty":     "680",
		"threshing_date": time.Now().UTC().Add(-time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	rec := decode[dto.ThreshingResponse](t, raw)
	assert.Equal(t, "PENDING", rec.Status)

	resp, raw = f.do(t, http.MethodPatch, "/api/threshing/"+rec.ID+"/status", pkgjwt.RoleOperator, fiber.Map{"status": "COMPLETED"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, "COMPLETED", decode[dto.ThreshingResponse](t, raw).Status)
	assert.Len(t, f.store.ProcessingRecords(), 1)

	resp, raw = f.do(t, http.MethodDelete, "/api/threshing/"+rec.ID, pkgjwt.RoleOperator, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "INVALID_OPERATION", decode[dto.ErrorResponse](t, raw).Code)

	resp, _ = f.do(t, http.MethodGet, "/api/threshing/batch/"+rec.BatchNumber, pkgjwt.RoleViewer, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, "/api/threshing/summary", pkgjwt.RoleViewer, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, "/api/threshing?status=DONE", pkgjwt.RoleViewer, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Health
// ──────────────────────────────────────────────────────────────────────────────

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	up := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name   string
		deps   map[string]apphttp.Pinger
		status int
		state  string
	}{
		{"all up", map[string]apphttp.Pinger{"postgres": up, "redis": up}, http.StatusOK, "ok"},
		{"redis down", map[string]apphttp.Pinger{"postgres": up, "redis": down}, http.StatusServiceUnavailable, "degraded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/health", apphttp.Health("ricemill", tt.deps))

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)

			var body struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.state, body.Status)
			assert.Equal(t, "ok", body.Checks["postgres"])
		})
	}
}
