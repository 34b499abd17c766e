package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"vms/internal/activitylog"
)

var recentReadDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "vms_activity_log_cache_read_duration_ms",
	Help:    "Latency of recent log reads served from redis in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
})

const (
	recentKey       = "vms:activity:recent"
	defaultCapacity = activitylog.MaxRecentLimit
)

// RedisRecentCache keeps the newest entries in a capped redis list.
type RedisRecentCache struct {
	client   *redis.Client
	key      string
	capacity int64
}

// RedisCacheOption configures a RedisRecentCache.
type RedisCacheOption func(*RedisRecentCache)

// WithCapacity bounds the number of cached entries.
func WithCapacity(n int) RedisCacheOption {
	return func(c *RedisRecentCache) {
		if n > 0 {
			c.capacity = int64(n)
		}
	}
}

// WithKey overrides the list key, used to isolate test runs.
func WithKey(key string) RedisCacheOption {
	return func(c *RedisRecentCache) {
		if key != "" {
			c.key = key
		}
	}
}

func NewRedisRecentCache(client *redis.Client, opts ...RedisCacheOption) *RedisRecentCache {
	c := &RedisRecentCache{
		client:   client,
		key:      recentKey,
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Push prepends the entry and trims the list to capacity in one round trip.
func (c *RedisRecentCache) Push(ctx context.Context, entry *activitylog.Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal log entry: %w", err)
	}
	pipe := c.client.TxPipeline()
	pipe.LPush(ctx, c.key, payload)
	pipe.LTrim(ctx, c.key, 0, c.capacity-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push log entry: %w", err)
	}
	return nil
}

func (c *RedisRecentCache) Recent(ctx context.Context, limit int) ([]*activitylog.Entry, error) {
	start := time.Now()
	defer func() {
		recentReadDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	raw, err := c.client.LRange(ctx, c.key, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read recent log entries: %w", err)
	}
	out := make([]*activitylog.Entry, 0, len(raw))
	for _, item := range raw {
		var e activitylog.Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("unmarshal cached log entry: %w", err)
		}
		out = append(out, &e)
	}
	return out, nil
}
