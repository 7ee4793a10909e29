// Package inventorytest provides an in-memory transactional store for ledger tests.
// Row locks are real: GetForUpdate blocks while another transaction holds the row,
// and staged writes become visible only when the transaction commits.
package inventorytest

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ricemill-ledger/internal/application/inventory"
	"github.com/jhoicas/ricemill-ledger/internal/domain"
	"github.com/jhoicas/ricemill-ledger/internal/domain/entity"
	"github.com/jhoicas/ricemill-ledger/internal/domain/repository"
)

var (
	_ inventory.TxRunner                    = (*Store)(nil)
	_ repository.WarehouseRepository        = warehouseRepo{}
	_ repository.BatchRepository            = batchRepo{}
	_ repository.BalanceRepository          = balanceRepo{}
	_ repository.StockMovementRepository    = movementRepo{}
	_ repository.ProcessingRecordRepository = processingRepo{}
	_ repository.SaleRepository             = saleRepo{}
	_ repository.ThreshingRepository        = threshingRepo{}
)

// Store is the committed state plus the row lock table.
type Store struct {
	mu         sync.Mutex
	warehouses map[string]*entity.Warehouse
	batches    map[string]*entity.Batch
	balances   map[entity.BalanceKey]*entity.InventoryBalance
	movements  []*entity.StockMovement
	records    map[string]*entity.ProcessingRecord
	sales      map[string]*entity.Sale
	threshing  map[string]*entity.ThreshingRecord
	locks      map[any]chan struct{}

	// LockWait bounds how long GetForUpdate waits for a row. Zero waits until ctx ends.
	LockWait time.Duration
	// ThreshingLocked runs while a transaction holds a threshing row lock,
	// right after GetForUpdate takes it.
	ThreshingLocked func(id string)

	runs      atomic.Int64
	calls     atomic.Int64
	conflicts atomic.Int64
	failures  atomic.Int64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		warehouses: map[string]*entity.Warehouse{},
		batches:    map[string]*entity.Batch{},
		balances:   map[entity.BalanceKey]*entity.InventoryBalance{},
		records:    map[string]*entity.ProcessingRecord{},
		sales:      map[string]*entity.Sale{},
		threshing:  map[string]*entity.ThreshingRecord{},
		locks:      map[any]chan struct{}{},
	}
}

// AddWarehouse registers an active warehouse with the given id.
func (s *Store) AddWarehouse(id, name string, capacity int64) *entity.Warehouse {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := &entity.Warehouse{ID: id, Name: name, Capacity: decimal.NewFromInt(capacity), Active: true}
	s.warehouses[id] = w
	return w
}

// Runs is the number of transactions started.
func (s *Store) Runs() int64 { return s.runs.Load() }

// Calls is the number of repository calls made.
func (s *Store) Calls() int64 { return s.calls.Load() }

// FailNextUpdates makes the next n balance updates fail with a Conflict.
func (s *Store) FailNextUpdates(n int64) { s.conflicts.Store(n) }

// FailNextCommits makes the next n commits fail with a LockTimeout.
func (s *Store) FailNextCommits(n int64) { s.failures.Store(n) }

// Balance returns the committed quantity of a row.
func (s *Store) Balance(key entity.BalanceKey) (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.balances[key]
	if !ok {
		return decimal.Zero, false
	}
	return b.Quantity, true
}

// BalanceRow returns a copy of a committed balance row.
func (s *Store) BalanceRow(key entity.BalanceKey) *entity.InventoryBalance {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.balances[key]
	if !ok {
		return nil
	}
	cp := *b
	return &cp
}

// TotalOf sums a batch's committed quantity over every warehouse.
func (s *Store) TotalOf(batchID string, t entity.ProductType) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for k, b := range s.balances {
		if k.BatchID == batchID && k.ProductType == t {
			total = total.Add(b.Quantity)
		}
	}
	return total
}

// Movements returns the committed movements in insertion order.
func (s *Store) Movements() []entity.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.StockMovement, 0, len(s.movements))
	for _, m := range s.movements {
		out = append(out, *m)
	}
	return out
}

// ProcessingRecords returns the committed processing records.
func (s *Store) ProcessingRecords() []entity.ProcessingRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.ProcessingRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, *r)
	}
	return out
}

// Batches returns the committed batches of one type.
func (s *Store) Batches(t entity.ProductType) []entity.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Batch
	for _, b := range s.batches {
		if b.ProductType == t {
			out = append(out, *b)
		}
	}
	return out
}

// Sales returns the committed sales.
func (s *Store) Sales() []entity.Sale {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Sale, 0, len(s.sales))
	for _, v := range s.sales {
		out = append(out, *v)
	}
	return out
}

// Run implements inventory.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos) error) error {
	return s.run(ctx, func(ctx context.Context, tx *Tx) error {
		return fn(ctx, tx.repos())
	})
}

// RunSale runs fn with ledger and sale repositories bound to one transaction.
func (s *Store) RunSale(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos, sales repository.SaleRepository) error) error {
	return s.run(ctx, func(ctx context.Context, tx *Tx) error {
		return fn(ctx, tx.repos(), saleRepo{tx})
	})
}

// RunThreshing runs fn with ledger and threshing repositories bound to one transaction.
func (s *Store) RunThreshing(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos, records repository.ThreshingRepository) error) error {
	return s.run(ctx, func(ctx context.Context, tx *Tx) error {
		return fn(ctx, tx.repos(), threshingRepo{tx})
	})
}

func (s *Store) run(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) error {
	s.runs.Add(1)
	tx := &Tx{
		s:         s,
		held:      map[any]chan struct{}{},
		balances:  map[entity.BalanceKey]*entity.InventoryBalance{},
		readVer:   map[entity.BalanceKey]int64{},
		threshing: map[string]*entity.ThreshingRecord{},
	}
	defer tx.release()
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.commit()
}

// threshingKey keeps threshing row locks apart from balance row locks.
type threshingKey string

func (s *Store) lockFor(key any) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[key] = ch
	}
	return ch
}

// Tx is one open transaction.
type Tx struct {
	s         *Store
	held      map[any]chan struct{}
	batches   []*entity.Batch
	balances  map[entity.BalanceKey]*entity.InventoryBalance
	readVer   map[entity.BalanceKey]int64
	movements []*entity.StockMovement
	records   []*entity.ProcessingRecord
	sales     []*entity.Sale
	threshing map[string]*entity.ThreshingRecord
}

func (t *Tx) repos() inventory.Repos {
	return inventory.Repos{
		Batches:    batchRepo{t},
		Warehouses: warehouseRepo{t.s},
		Balances:   balanceRepo{t},
		Movements:  movementRepo{t},
		Processing: processingRepo{t},
	}
}

func (t *Tx) lock(ctx context.Context, key any) error {
	if _, ok := t.held[key]; ok {
		return nil
	}
	ch := t.s.lockFor(key)
	var timeout <-chan time.Time
	if t.s.LockWait > 0 {
		timer := time.NewTimer(t.s.LockWait)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case ch <- struct{}{}:
		t.held[key] = ch
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timeout:
		return domain.LockTimeout(errors.New("lock_timeout exceeded"))
	}
}

func (t *Tx) release() {
	for _, ch := range t.held {
		<-ch
	}
	t.held = nil
}

func (t *Tx) commit() error {
	s := t.s
	if s.failures.Load() > 0 && s.failures.Add(-1) >= 0 {
		return domain.LockTimeout(errors.New("injected commit failure"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range t.batches {
		for _, existing := range s.batches {
			if existing.ProductType == b.ProductType && existing.Code == b.Code {
				return domain.Conflict("duplicate batch code", nil)
			}
		}
	}
	for _, b := range t.batches {
		cp := *b
		s.batches[cp.ID] = &cp
	}
	for k, b := range t.balances {
		cp := *b
		s.balances[k] = &cp
	}
	for _, m := range t.movements {
		cp := *m
		s.movements = append(s.movements, &cp)
	}
	for _, r := range t.records {
		cp := *r
		s.records[cp.ID] = &cp
	}
	for _, v := range t.sales {
		cp := *v
		s.sales[cp.ID] = &cp
	}
	for id, r := range t.threshing {
		cp := *r
		s.threshing[id] = &cp
	}
	return nil
}

type warehouseRepo struct{ s *Store }

func (r warehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	r.s.calls.Add(1)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *w
	r.s.warehouses[w.ID] = &cp
	return nil
}

func (r warehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	r.s.calls.Add(1)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.warehouses[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r warehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	r.s.calls.Add(1)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *w
	r.s.warehouses[w.ID] = &cp
	return nil
}

func (r warehouseRepo) List(_ context.Context, activeOnly bool, limit, offset int) ([]*entity.Warehouse, error) {
	r.s.calls.Add(1)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Warehouse
	for _, w := range r.s.warehouses {
		if activeOnly && !w.Active {
			continue
		}
		cp := *w
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, limit, offset), nil
}

type batchRepo struct{ t *Tx }

func (r batchRepo) GetByID(_ context.Context, id string) (*entity.Batch, error) {
	r.t.s.calls.Add(1)
	for _, b := range r.t.batches {
		if b.ID == id {
			cp := *b
			return &cp, nil
		}
	}
	r.t.s.mu.Lock()
	defer r.t.s.mu.Unlock()
	b, ok := r.t.s.batches[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r batchRepo) FindByTypeAndCode(_ context.Context, t entity.ProductType, code string) (*entity.Batch, error) {
	r.t.s.calls.Add(1)
	return r.find(t, code), nil
}

func (r batchRepo) find(t entity.ProductType, code string) *entity.Batch {
	for _, b := range r.t.batches {
		if b.ProductType == t && b.Code == code {
			cp := *b
			return &cp
		}
	}
	r.t.s.mu.Lock()
	defer r.t.s.mu.Unlock()
	for _, b := range r.t.s.batches {
		if b.ProductType == t && b.Code == code {
			cp := *b
			return &cp
		}
	}
	return nil
}

func (r batchRepo) CreateIfAbsent(_ context.Context, b *entity.Batch) (*entity.Batch, error) {
	r.t.s.calls.Add(1)
	if existing := r.find(b.ProductType, b.Code); existing != nil {
		return existing, nil
	}
	cp := *b
	r.t.batches = append(r.t.batches, &cp)
	out := cp
	return &out, nil
}

func (r batchRepo) ListByType(_ context.Context, t entity.ProductType, limit, offset int) ([]*entity.Batch, error) {
	r.t.s.calls.Add(1)
	var out []*entity.Batch
	for _, b := range r.t.s.Batches(t) {
		b := b
		out = append(out, &b)
	}
	return page(out, limit, offset), nil
}

type balanceRepo struct{ t *Tx }

func (r balanceRepo) GetForUpdate(ctx context.Context, key entity.BalanceKey) (*entity.InventoryBalance, error) {
	r.t.s.calls.Add(1)
	if err := r.t.lock(ctx, key); err != nil {
		return nil, err
	}
	if b, ok := r.t.balances[key]; ok {
		return b, nil
	}
	committed := r.t.s.BalanceRow(key)
	if committed == nil {
		return nil, nil
	}
	r.t.balances[key] = committed
	r.t.readVer[key] = committed.Version
	return committed, nil
}

// InsertIfAbsent takes the row lock first, which stands in for the unique index
// making a second inserter wait for the first to finish.
func (r balanceRepo) InsertIfAbsent(ctx context.Context, b *entity.InventoryBalance) error {
	r.t.s.calls.Add(1)
	key := b.Key()
	if err := r.t.lock(ctx, key); err != nil {
		return err
	}
	if _, ok := r.t.balances[key]; ok {
		return nil
	}
	if r.t.s.BalanceRow(key) != nil {
		return nil
	}
	cp := *b
	r.t.balances[key] = &cp
	r.t.readVer[key] = cp.Version
	return nil
}

func (r balanceRepo) Update(_ context.Context, b *entity.InventoryBalance) error {
	r.t.s.calls.Add(1)
	key := b.Key()
	if r.t.s.conflicts.Load() > 0 && r.t.s.conflicts.Add(-1) >= 0 {
		return domain.Conflict("stale balance version", nil)
	}
	staged, ok := r.t.balances[key]
	if !ok || r.t.readVer[key] != b.Version {
		return domain.Conflict("stale balance version", nil)
	}
	b.Version++
	r.t.readVer[key] = b.Version
	if staged != b {
		cp := *b
		r.t.balances[key] = &cp
	}
	return nil
}

type movementRepo struct{ t *Tx }

func (r movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	r.t.s.calls.Add(1)
	cp := *m
	r.t.movements = append(r.t.movements, &cp)
	return nil
}

type processingRepo struct{ t *Tx }

func (r processingRepo) Create(_ context.Context, rec *entity.ProcessingRecord) error {
	r.t.s.calls.Add(1)
	cp := *rec
	r.t.records = append(r.t.records, &cp)
	return nil
}

func (r processingRepo) GetByID(_ context.Context, id string) (*entity.ProcessingRecord, error) {
	r.t.s.calls.Add(1)
	r.t.s.mu.Lock()
	defer r.t.s.mu.Unlock()
	rec, ok := r.t.s.records[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

type saleRepo struct{ t *Tx }

func (r saleRepo) Create(_ context.Context, sale *entity.Sale) error {
	r.t.s.calls.Add(1)
	cp := *sale
	r.t.sales = append(r.t.sales, &cp)
	return nil
}

func (r saleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	r.t.s.calls.Add(1)
	r.t.s.mu.Lock()
	defer r.t.s.mu.Unlock()
	v, ok := r.t.s.sales[id]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (r saleRepo) CountByInvoicePrefix(_ context.Context, prefix string) (int64, error) {
	r.t.s.calls.Add(1)
	var n int64
	for _, v := range r.t.sales {
		if strings.HasPrefix(v.InvoiceNumber, prefix) {
			n++
		}
	}
	r.t.s.mu.Lock()
	defer r.t.s.mu.Unlock()
	for _, v := range r.t.s.sales {
		if strings.HasPrefix(v.InvoiceNumber, prefix) {
			n++
		}
	}
	return n, nil
}

type threshingRepo struct{ t *Tx }

func (r threshingRepo) visible() map[string]*entity.ThreshingRecord {
	out := map[string]*entity.ThreshingRecord{}
	r.t.s.mu.Lock()
	for id, rec := range r.t.s.threshing {
		cp := *rec
		out[id] = &cp
	}
	r.t.s.mu.Unlock()
	for id, rec := range r.t.threshing {
		cp := *rec
		out[id] = &cp
	}
	return out
}

func (r threshingRepo) Create(_ context.Context, rec *entity.ThreshingRecord) error {
	r.t.s.calls.Add(1)
	cp := *rec
	r.t.threshing[rec.ID] = &cp
	return nil
}

func (r threshingRepo) GetByID(_ context.Context, id string) (*entity.ThreshingRecord, error) {
	r.t.s.calls.Add(1)
	rec, ok := r.visible()[id]
	if !ok || rec.DeletedAt != nil {
		return nil, nil
	}
	return rec, nil
}

func (r threshingRepo) GetForUpdate(ctx context.Context, id string) (*entity.ThreshingRecord, error) {
	r.t.s.calls.Add(1)
	if err := r.t.lock(ctx, threshingKey(id)); err != nil {
		return nil, err
	}
	if hook := r.t.s.ThreshingLocked; hook != nil {
		hook(id)
	}
	rec, ok := r.visible()[id]
	if !ok || rec.DeletedAt != nil {
		return nil, nil
	}
	return rec, nil
}

func (r threshingRepo) GetByBatchNumber(_ context.Context, batchNumber string) (*entity.ThreshingRecord, error) {
	r.t.s.calls.Add(1)
	for _, rec := range r.visible() {
		if rec.BatchNumber == batchNumber && rec.DeletedAt == nil {
			return rec, nil
		}
	}
	return nil, nil
}

func (r threshingRepo) Update(_ context.Context, rec *entity.ThreshingRecord) error {
	r.t.s.calls.Add(1)
	if _, ok := r.visible()[rec.ID]; !ok {
		return domain.NotFound("threshing record %s not found", rec.ID)
	}
	cp := *rec
	r.t.threshing[rec.ID] = &cp
	return nil
}

func (r threshingRepo) SoftDelete(_ context.Context, id string, at time.Time) error {
	r.t.s.calls.Add(1)
	rec, ok := r.visible()[id]
	if !ok {
		return domain.NotFound("threshing record %s not found", id)
	}
	rec.DeletedAt = &at
	r.t.threshing[id] = rec
	return nil
}

func (r threshingRepo) List(_ context.Context, status entity.ThreshingStatus, limit, offset int) ([]*entity.ThreshingRecord, error) {
	r.t.s.calls.Add(1)
	var out []*entity.ThreshingRecord
	for _, rec := range r.visible() {
		if rec.DeletedAt != nil || (status != "" && rec.Status != status) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BatchNumber < out[j].BatchNumber })
	return page(out, limit, offset), nil
}

func (r threshingRepo) CountByBatchPrefix(_ context.Context, prefix string) (int64, error) {
	r.t.s.calls.Add(1)
	var n int64
	for _, rec := range r.visible() {
		if strings.HasPrefix(rec.BatchNumber, prefix) {
			n++
		}
	}
	return n, nil
}

func (r threshingRepo) Summary(_ context.Context, from, to time.Time) (*entity.ThreshingSummary, error) {
	r.t.s.calls.Add(1)
	sum := &entity.ThreshingSummary{}
	effTotal := decimal.Zero
	for _, rec := range r.visible() {
		if rec.DeletedAt != nil || rec.ThreshingDate.Before(from) || rec.ThreshingDate.After(to) {
			continue
		}
		sum.TotalRecords++
		sum.TotalInput = sum.TotalInput.Add(rec.InputQty)
		sum.TotalOutput = sum.TotalOutput.Add(rec.OutputQty)
		sum.TotalWastage = sum.TotalWastage.Add(rec.WastageQty)
		effTotal = effTotal.Add(rec.Efficiency)
	}
	if sum.TotalRecords > 0 {
		sum.AverageEfficiency = effTotal.DivRound(decimal.NewFromInt(sum.TotalRecords), 2)
	}
	return sum, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// WarehouseRepository exposes the store's warehouse directory outside a transaction.
func (s *Store) WarehouseRepository() repository.WarehouseRepository {
	return warehouseRepo{s}
}

// SaleReader reads committed sales outside a transaction.
func (s *Store) SaleReader() repository.SaleRepository {
	return saleRepo{&Tx{s: s}}
}

// ThreshingReader reads committed threshing records outside a transaction.
func (s *Store) ThreshingReader() repository.ThreshingRepository {
	return threshingRepo{&Tx{s: s}}
}
