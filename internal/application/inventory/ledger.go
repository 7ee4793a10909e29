package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ricemill-ledger/internal/domain"
	"github.com/jhoicas/ricemill-ledger/internal/domain/entity"
	"github.com/jhoicas/ricemill-ledger/pkg/logger"
	"github.com/jhoicas/ricemill-ledger/pkg/metrics"
)

const (
	opInbound    = "inbound"
	opOutbound   = "outbound"
	opTransfer   = "transfer"
	opAdjustment = "adjustment"
	opProcess    = "process"
)

// Ledger is the inventory ledger engine. Every operation runs in one transaction:
// it locks the balance rows it touches (SELECT ... FOR UPDATE), validates,
// mutates them and appends the movement rows. Transactions that fail with a lock
// timeout or a version conflict are retried as a whole.
type Ledger struct {
	tx         TxRunner
	log        *logger.Logger
	metrics    *metrics.LedgerMetrics
	notifier   ChangeNotifier
	maxRetries uint64
	retryBase  time.Duration
	now        func() time.Time
	newID      func() string
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(led *Ledger) { led.log = l.Named("ledger") }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.LedgerMetrics) Option {
	return func(led *Ledger) { led.metrics = m }
}

// WithNotifier registers a callback for committed mutations.
func WithNotifier(n ChangeNotifier) Option {
	return func(led *Ledger) { led.notifier = n }
}

// WithRetry sets how many times a retryable transaction is attempted again and
// the base of the exponential backoff between attempts.
func WithRetry(maxRetries uint64, base time.Duration) Option {
	return func(led *Ledger) {
		led.maxRetries = maxRetries
		if base > 0 {
			led.retryBase = base
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(led *Ledger) { led.now = now }
}

// NewLedger builds the engine over a transaction runner.
func NewLedger(tx TxRunner, opts ...Option) *Ledger {
	l := &Ledger{
		tx:         tx,
		log:        logger.Nop(),
		maxRetries: 3,
		retryBase:  50 * time.Millisecond,
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// execute runs fn in a ledger transaction under the retry policy.
func (l *Ledger) execute(ctx context.Context, op string, fn func(ctx context.Context, repos Repos) error) error {
	return l.Execute(ctx, op, func(ctx context.Context) error {
		return l.tx.Run(ctx, fn)
	})
}

// Execute runs one whole transaction attempt per call of txFn, retrying it with
// exponential backoff while it fails with a lock timeout or a conflict. Callers
// that own their transaction (sales, threshing) use it around the *InTx methods.
// Committed work is reported to the change notifier.
func (l *Ledger) Execute(ctx context.Context, op string, txFn func(ctx context.Context) error) error {
	start := time.Now()
	attempt := 0
	backoff := retry.WithMaxRetries(l.maxRetries, retry.NewExponential(l.retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := txFn(ctx)
		if err != nil && domain.IsRetryable(err) {
			l.metrics.IncRetry(op)
			l.log.Warn().Err(err).Str("op", op).Int("attempt", attempt).Msg("retryable ledger failure")
			return retry.RetryableError(err)
		}
		return err
	})
	l.metrics.Observe(op, err, time.Since(start))
	if err != nil {
		return err
	}
	if l.notifier != nil {
		l.notifier.StockChanged(ctx)
	}
	return nil
}

func (l *Ledger) activeWarehouse(ctx context.Context, repos Repos, id string) (*entity.Warehouse, error) {
	w, err := repos.Warehouses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil || !w.Active {
		return nil, domain.NotFound("warehouse %s not found", id)
	}
	return w, nil
}

// resolveBatch finds the batch by (type, code) or creates it. Only the type and
// code identify a batch; the remaining fields of an existing batch are kept.
func (l *Ledger) resolveBatch(ctx context.Context, repos Repos, proto *entity.Batch) (*entity.Batch, error) {
	b, err := repos.Batches.FindByTypeAndCode(ctx, proto.ProductType, proto.Code)
	if err != nil || b != nil {
		return b, err
	}
	now := l.now()
	if proto.BatchDate.IsZero() {
		proto.BatchDate = now
	}
	proto.ID = l.newID()
	proto.CreatedAt = now
	proto.UpdatedAt = now
	return repos.Batches.CreateIfAbsent(ctx, proto)
}

type resolvePolicy int

const (
	mustExist resolvePolicy = iota
	createIfMissing
)

type lockRequest struct {
	key    entity.BalanceKey
	policy resolvePolicy
}

// lockBalance locks the balance row for key. With createIfMissing a zero row is
// inserted first when absent; with mustExist a missing row is NotFound.
func (l *Ledger) lockBalance(ctx context.Context, repos Repos, req lockRequest) (*entity.InventoryBalance, error) {
	b, err := repos.Balances.GetForUpdate(ctx, req.key)
	if err != nil || b != nil {
		return b, err
	}
	if req.policy == mustExist {
		return nil, domain.NotFound("no %s stock of batch %s in warehouse %s",
			req.key.ProductType, req.key.BatchID, req.key.WarehouseID)
	}
	now := l.now()
	fresh := &entity.InventoryBalance{
		ID:          l.newID(),
		WarehouseID: req.key.WarehouseID,
		BatchID:     req.key.BatchID,
		ProductType: req.key.ProductType,
		Quantity:    decimal.Zero,
		Unit:        entity.UnitKG,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := repos.Balances.InsertIfAbsent(ctx, fresh); err != nil {
		return nil, err
	}
	b, err = repos.Balances.GetForUpdate(ctx, req.key)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.Conflict("balance row vanished after insert", nil)
	}
	return b, nil
}

// lockInOrder locks all requested rows sorted by BalanceKey so that two
// operations touching the same pair of rows always lock them in the same order.
func (l *Ledger) lockInOrder(ctx context.Context, repos Repos, reqs ...lockRequest) (map[entity.BalanceKey]*entity.InventoryBalance, error) {
	sorted := append([]lockRequest(nil), reqs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].key.Less(sorted[j].key) })

	locked := make(map[entity.BalanceKey]*entity.InventoryBalance, len(sorted))
	for _, req := range sorted {
		b, err := l.lockBalance(ctx, repos, req)
		if err != nil {
			return nil, err
		}
		locked[req.key] = b
	}
	return locked, nil
}

func (l *Ledger) setQuantity(ctx context.Context, repos Repos, b *entity.InventoryBalance, qty decimal.Decimal, now time.Time) error {
	b.Quantity = qty
	b.UpdatedAt = now
	return repos.Balances.Update(ctx, b)
}

// reference returns ref, or a fresh identifier pairing the rows of one event.
func (l *Ledger) reference(ref string) string {
	if ref != "" {
		return ref
	}
	return l.newID()
}
