// Package redis caches daily bar history and per-ticker alert state so that
// restarts and repeated polls within the cache window do not hit the data
// provider again.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"stocksignalsv1/internal/model"

	goredis "github.com/go-redis/redis/v8"
)

const (
	// Daily bars move once per session; 15 minutes keeps intraday closes fresh
	// without hammering the provider.
	HistoryTTL = 15 * time.Minute

	statusTTL = 7 * 24 * time.Hour
)

// CacheConfig configures the Redis cache.
type CacheConfig struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string
	DB       int
}

// Cache stores bar history and last alerted status per ticker.
type Cache struct {
	client *goredis.Client
}

// Client returns the underlying Redis client for health checks.
func (c *Cache) Client() *goredis.Client { return c.client }

// New creates a new Cache and pings the server.
func New(cfg CacheConfig) (*Cache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return &Cache{client: client}, nil
}

// cachedHistory is the stored envelope: the bars plus the fetch time, so a
// consumer can distinguish a fresh entry from a stale one kept as fallback.
type cachedHistory struct {
	Bars      []model.Bar `json:"bars"`
	FetchedAt time.Time   `json:"fetched_at"`
}

func historyKey(ticker string) string { return "bars:1d:" + ticker }
func statusKey(ticker string) string  { return "status:last:" + ticker }

// History returns the cached bars for a ticker along with the time they were
// fetched. Returns (nil, zero, nil) on a cache miss.
func (c *Cache) History(ctx context.Context, ticker string) ([]model.Bar, time.Time, error) {
	data, err := c.client.Get(ctx, historyKey(ticker)).Result()
	if err != nil {
		if err == goredis.Nil {
			return nil, time.Time{}, nil
		}
		return nil, time.Time{}, fmt.Errorf("redis get %s: %w", historyKey(ticker), err)
	}

	var entry cachedHistory
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, time.Time{}, fmt.Errorf("unmarshal cached history %s: %w", ticker, err)
	}
	return entry.Bars, entry.FetchedAt, nil
}

// PutHistory stores bars for a ticker. The key TTL is longer than HistoryTTL
// so an expired-but-present entry can serve as a fallback
// when the provider is down; freshness is judged against FetchedAt.
func (c *Cache) PutHistory(ctx context.Context, ticker string, bars []model.Bar, fetchedAt time.Time) error {
	entry := cachedHistory{Bars: bars, FetchedAt: fetchedAt}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal history %s: %w", ticker, err)
	}
	if err := c.client.Set(ctx, historyKey(ticker), string(data), 24*time.Hour).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", historyKey(ticker), err)
	}
	return nil
}

// LastStatus returns the last alerted status line for a ticker, or "" when
// none was recorded.
func (c *Cache) LastStatus(ctx context.Context, ticker string) (string, error) {
	status, err := c.client.Get(ctx, statusKey(ticker)).Result()
	if err != nil {
		if err == goredis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("redis get %s: %w", statusKey(ticker), err)
	}
	return status, nil
}

// SetLastStatus records the status line that was just alerted, so the next
// poll only notifies on change.
func (c *Cache) SetLastStatus(ctx context.Context, ticker, status string) error {
	if err := c.client.Set(ctx, statusKey(ticker), status, statusTTL).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", statusKey(ticker), err)
	}
	return nil
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}
