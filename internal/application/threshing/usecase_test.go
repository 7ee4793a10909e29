package threshing_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ricemill-ledger/internal/application/dto"
	"github.com/jhoicas/ricemill-ledger/internal/application/inventory"
	"github.com/jhoicas/ricemill-ledger/internal/application/inventory/inventorytest"
	"github.com/jhoicas/ricemill-ledger/internal/application/threshing"
	"github.com/jhoicas/ricemill-ledger/internal/domain"
	"github.com/jhoicas/ricemill-ledger/internal/domain/entity"
	"github.com/jhoicas/ricemill-ledger/pkg/config"
)

var today = time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC)

func qty(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store   *inventorytest.Store
	uc      *threshing.UseCase
	paddyID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := inventorytest.NewStore()
	store.AddWarehouse("wh-1", "Mill", 50000)
	ledger := inventory.NewLedger(store, inventory.WithRetry(2, time.Millisecond))

	res, err := ledger.Inbound(context.Background(), inventory.InboundInput{
		ProductType: entity.ProductTypePaddy,
		WarehouseID: "wh-1",
		BatchCode:   "P-500",
		Quantity:    qty("5000"),
		PerformedBy: "receiver",
	})
	require.NoError(t, err)

	cfg := config.ThreshingConfig{MinEfficiency: 60, MaxEfficiency: 75, BatchPrefix: "TH"}
	uc := threshing.NewUseCase(store, ledger, store.ThreshingReader(), cfg, nil).
		WithClock(func() time.Time { return today })
	return &fixture{store: store, uc: uc, paddyID: res.Batch.ID}
}

func (f *fixture) request(input, output, status string) dto.CreateThreshingRequest {
	return dto.CreateThreshingRequest{
		PaddyBatchID:  f.paddyID,
		WarehouseID:   "wh-1",
		Variety:       "Ponni",
		InputQty:      qty(input),
		OutputQty:     qty(output),
		ThreshingDate: today.Add(-2 * time.Hour),
		Operator:      "op-1",
		MachineID:     "M-7",
		Status:        status,
	}
}

func (f *fixture) paddyLeft() decimal.Decimal {
	q, _ := f.store.Balance(entity.BalanceKey{WarehouseID: "wh-1", BatchID: f.paddyID, ProductType: entity.ProductTypePaddy})
	return q
}

func TestCreate_PendingDoesNotTouchStock(t *testing.T) {
	f := newFixture(t)

	out, err := f.uc.Create(context.Background(), "op-1", f.request("1000", "680", ""))
	require.NoError(t, err)

	assert.Equal(t, "TH-20240610-0001", out.BatchNumber)
	assert.Equal(t, string(entity.ThreshingPending), out.Status)
	assert.Equal(t, "68.00", out.Efficiency.StringFixed(2))
	assert.True(t, qty("320").Equal(out.WastageQty))
	assert.Empty(t, out.RiceBatchID)
	assert.True(t, qty("5000").Equal(f.paddyLeft()))

	second, err := f.uc.Create(context.Background(), "op-1", f.request("10", "6", "IN_PROGRESS"))
	require.NoError(t, err)
	assert.Equal(t, "TH-20240610-0002", second.BatchNumber)
}

func TestCreate_CompletedProcessesPaddy(t *testing.T) {
	f := newFixture(t)

	out, err := f.uc.Create(context.Background(), "op-1", f.request("1000", "650", "COMPLETED"))
	require.NoError(t, err)

	assert.NotEmpty(t, out.RiceBatchID)
	assert.NotEmpty(t, out.ProcessingRecordID)
	assert.True(t, qty("4000").Equal(f.paddyLeft()))

	rice, ok := f.store.Balance(entity.BalanceKey{WarehouseID: "wh-1", BatchID: out.RiceBatchID, ProductType: entity.ProductTypeRice})
	require.True(t, ok)
	assert.True(t, qty("650").Equal(rice))

	batches := f.store.Batches(entity.ProductTypeRice)
	require.Len(t, batches, 1)
	assert.Equal(t, out.BatchNumber, batches[0].Code)

	records := f.store.ProcessingRecords()
	require.Len(t, records, 1)
	assert.True(t, qty("350").Equal(records[0].WasteQty))
	assert.Equal(t, out.BatchNumber, records[0].ReferenceNo)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, "op-1", f.request("100", "120", ""))
	assert.ErrorIs(t, err, domain.ErrInvalidOperation, "output above input")

	future := f.request("100", "60", "")
	future.ThreshingDate = today.Add(48 * time.Hour)
	_, err = f.uc.Create(ctx, "op-1", future)
	assert.ErrorIs(t, err, domain.ErrInvalidOperation, "date in the future")

	laterToday := f.request("100", "60", "")
	laterToday.ThreshingDate = today.Add(3 * time.Hour)
	_, err = f.uc.Create(ctx, "op-1", laterToday)
	assert.NoError(t, err, "later on the same day is not the future")

	_, err = f.uc.Create(ctx, "op-1", f.request("0", "0", ""))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Create(ctx, "op-1", f.request("100", "60", "DONE"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Create(ctx, "op-1", f.request("100.0004", "60", "COMPLETED"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "input_qty beyond three decimals")
	_, err = f.uc.Create(ctx, "op-1", f.request("100", "60.0001", "COMPLETED"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "output_qty beyond three decimals")
	assert.True(t, qty("5000").Equal(f.paddyLeft()))
	assert.Empty(t, f.store.Batches(entity.ProductTypeRice))
}

func TestCreate_CompletedWithoutStockRollsBack(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Create(context.Background(), "op-1", f.request("6000", "3900", "COMPLETED"))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	list, err := f.uc.List(context.Background(), dto.ThreshingQuery{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	assert.Empty(t, f.store.Batches(entity.ProductTypeRice))
}

func TestUpdateStatus_CompletesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.uc.Create(ctx, "op-1", f.request("1000", "700", "IN_PROGRESS"))
	require.NoError(t, err)

	done, err := f.uc.UpdateStatus(ctx, "op-1", created.ID, entity.ThreshingCompleted)
	require.NoError(t, err)
	assert.Equal(t, string(entity.ThreshingCompleted), done.Status)
	assert.NotEmpty(t, done.ProcessingRecordID)
	assert.True(t, qty("4000").Equal(f.paddyLeft()))

	again, err := f.uc.UpdateStatus(ctx, "op-1", created.ID, entity.ThreshingCompleted)
	require.NoError(t, err)
	assert.Equal(t, done.ProcessingRecordID, again.ProcessingRecordID)
	assert.True(t, qty("4000").Equal(f.paddyLeft()), "completing twice processes once")
	assert.Len(t, f.store.ProcessingRecords(), 1)

	_, err = f.uc.UpdateStatus(ctx, "op-1", created.ID, entity.ThreshingCancelled)
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)

	assert.ErrorIs(t, f.uc.Delete(ctx, created.ID), domain.ErrInvalidOperation)
}

func TestUpdateStatus_UnknownRecord(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.UpdateStatus(context.Background(), "op-1", "missing", entity.ThreshingCancelled)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete_HidesRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.uc.Create(ctx, "op-1", f.request("100", "65", ""))
	require.NoError(t, err)

	require.NoError(t, f.uc.Delete(ctx, created.ID))

	_, err = f.uc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.uc.GetByBatchNumber(ctx, created.BatchNumber)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	next, err := f.uc.Create(ctx, "op-1", f.request("100", "65", ""))
	require.NoError(t, err)
	assert.Equal(t, "TH-20240610-0002", next.BatchNumber, "numbers of deleted runs are not reused")
}

func TestListAndSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.uc.Create(ctx, "op-1", f.request("1000", "600", ""))
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, "op-1", f.request("1000", "700", "COMPLETED"))
	require.NoError(t, err)

	all, err := f.uc.List(ctx, dto.ThreshingQuery{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)
	assert.Equal(t, 20, all.Page.Limit)
	assert.Equal(t, 2, all.Page.Returned)

	completed, err := f.uc.List(ctx, dto.ThreshingQuery{Status: "COMPLETED"})
	require.NoError(t, err)
	require.Len(t, completed.Items, 1)
	assert.Equal(t, "TH-20240610-0002", completed.Items[0].BatchNumber)

	sum, err := f.uc.Summary(ctx, dto.ThreshingSummaryQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.TotalRecords)
	assert.True(t, qty("2000").Equal(sum.TotalInput))
	assert.True(t, qty("1300").Equal(sum.TotalOutput))
	assert.True(t, qty("700").Equal(sum.TotalWastage))
	assert.Equal(t, "65.00", sum.AverageEfficiency.StringFixed(2))

	from, to := today, today.Add(-time.Hour)
	_, err = f.uc.Summary(ctx, dto.ThreshingSummaryQuery{From: &from, To: &to})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ── concurrent status changes ──

// holdFirstLock parks the first transaction that locks a threshing row until
// the returned release func is called. locked is closed once it holds the row.
func holdFirstLock(store *inventorytest.Store) (locked <-chan struct{}, release func()) {
	lockedCh := make(chan struct{})
	releaseCh := make(chan struct{})
	var once sync.Once
	store.ThreshingLocked = func(string) {
		once.Do(func() {
			close(lockedCh)
			<-releaseCh
		})
	}
	var releaseOnce sync.Once
	return lockedCh, func() { releaseOnce.Do(func() { close(releaseCh) }) }
}

func TestUpdateStatus_ConcurrentCompletionsProcessOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.uc.Create(ctx, "op-1", f.request("1000", "700", "IN_PROGRESS"))
	require.NoError(t, err)

	locked, release := holdFirstLock(f.store)
	defer release()

	var (
		wg          sync.WaitGroup
		first, next *dto.ThreshingResponse
		errA, errB  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		first, errA = f.uc.UpdateStatus(ctx, "op-1", created.ID, entity.ThreshingCompleted)
	}()
	<-locked
	go func() {
		defer wg.Done()
		next, errB = f.uc.UpdateStatus(ctx, "op-2", created.ID, entity.ThreshingCompleted)
	}()
	time.Sleep(20 * time.Millisecond)
	release()
	wg.Wait()

	require.NoError(t, errA)
	require.NoError(t, errB)
	assert.Equal(t, first.ProcessingRecordID, next.ProcessingRecordID)
	assert.True(t, qty("4000").Equal(f.paddyLeft()), "paddy is deducted once")
	assert.Len(t, f.store.ProcessingRecords(), 1)
	assert.Len(t, f.store.Batches(entity.ProductTypeRice), 1)
}

func TestDelete_WaitsForCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.uc.Create(ctx, "op-1", f.request("1000", "700", "IN_PROGRESS"))
	require.NoError(t, err)

	locked, release := holdFirstLock(f.store)
	defer release()

	var (
		wg        sync.WaitGroup
		updateErr error
		deleteErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, updateErr = f.uc.UpdateStatus(ctx, "op-1", created.ID, entity.ThreshingCompleted)
	}()
	<-locked
	go func() {
		defer wg.Done()
		deleteErr = f.uc.Delete(ctx, created.ID)
	}()
	time.Sleep(20 * time.Millisecond)
	release()
	wg.Wait()

	require.NoError(t, updateErr)
	assert.ErrorIs(t, deleteErr, domain.ErrInvalidOperation)

	got, err := f.uc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.ThreshingCompleted), got.Status)
	assert.True(t, qty("4000").Equal(f.paddyLeft()))
}

func TestUpdateStatus_AfterConcurrentDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.uc.Create(ctx, "op-1", f.request("1000", "700", "IN_PROGRESS"))
	require.NoError(t, err)

	locked, release := holdFirstLock(f.store)
	defer release()

	var (
		wg        sync.WaitGroup
		updateErr error
		deleteErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		deleteErr = f.uc.Delete(ctx, created.ID)
	}()
	<-locked
	go func() {
		defer wg.Done()
		_, updateErr = f.uc.UpdateStatus(ctx, "op-1", created.ID, entity.ThreshingCompleted)
	}()
	time.Sleep(20 * time.Millisecond)
	release()
	wg.Wait()

	require.NoError(t, deleteErr)
	assert.ErrorIs(t, updateErr, domain.ErrNotFound)
	assert.True(t, qty("5000").Equal(f.paddyLeft()), "a deleted run never converts paddy")
	assert.Empty(t, f.store.ProcessingRecords())
}
