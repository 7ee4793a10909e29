package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ricemill-ledger/internal/application/analytics"
	"github.com/jhoicas/ricemill-ledger/internal/application/inventory"
	"github.com/jhoicas/ricemill-ledger/internal/domain/entity"
	"github.com/jhoicas/ricemill-ledger/pkg/logger"
)

var (
	_ analytics.SummaryCache   = (*StockCache)(nil)
	_ inventory.ChangeNotifier = (*StockCache)(nil)
)

const (
	defaultPrefix = "ricemill:stock"
	defaultTTL    = 5 * time.Minute
)

// StockCache keeps the stock summary in Redis under a versioned key. Every
// committed ledger mutation bumps the version, so a cached summary is never
// served after a change even if the old key has not expired yet.
// Redis failures degrade to a cache miss.
type StockCache struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
	log    *logger.Logger
}

// NewStockCache wraps rdb. A non-positive ttl uses five minutes.
func NewStockCache(rdb redis.Cmdable, ttl time.Duration, log *logger.Logger) *StockCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &StockCache{rdb: rdb, prefix: defaultPrefix, ttl: ttl, log: log.Named("stock_cache")}
}

// NewClient opens a Redis client and checks it answers.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Ping checks the Redis connection for the health endpoint.
func (c *StockCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// StockChanged invalidates every cached summary.
func (c *StockCache) StockChanged(ctx context.Context) {
	if err := c.rdb.Incr(ctx, c.versionKey()).Err(); err != nil {
		c.log.Warn().Err(err).Msg("bump stock version")
	}
}

// GetSummary returns the summary cached for the current version.
func (c *StockCache) GetSummary(ctx context.Context) (map[entity.ProductType]decimal.Decimal, bool) {
	key, err := c.summaryKey(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("read stock version")
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Msg("read stock summary")
		}
		return nil, false
	}
	var totals map[entity.ProductType]decimal.Decimal
	if err := json.Unmarshal(raw, &totals); err != nil {
		c.log.Warn().Err(err).Msg("decode stock summary")
		return nil, false
	}
	return totals, true
}

// SetSummary stores totals under the current version.
func (c *StockCache) SetSummary(ctx context.Context, totals map[entity.ProductType]decimal.Decimal) {
	key, err := c.summaryKey(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("read stock version")
		return
	}
	raw, err := json.Marshal(totals)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Msg("write stock summary")
	}
}

func (c *StockCache) versionKey() string { return c.prefix + ":version" }

func (c *StockCache) summaryKey(ctx context.Context) (string, error) {
	v, err := c.rdb.Get(ctx, c.versionKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("%s:summary:v%d", c.prefix, v), nil
}
