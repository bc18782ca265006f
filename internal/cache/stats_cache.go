// Package cache keeps computed ticket statistics in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/repair-ticket-service/internal/analytics"
	"github.com/spec-kit/repair-ticket-service/internal/events"
)

// StatsKey is the Redis key holding the cached statistics.
const StatsKey = "repairdesk:stats"

// StatsCache is a read-through cache for analytics.Statistics. A nil
// client disables caching and every call goes straight to compute.
type StatsCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

func NewStatsCache(client redis.Cmdable, ttl time.Duration, logger *zap.Logger) *StatsCache {
	return &StatsCache{client: client, ttl: ttl, logger: logger}
}

func (c *StatsCache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// GetOrCompute returns cached statistics or computes and stores them.
// Redis failures are logged and never fail the call.
func (c *StatsCache) GetOrCompute(ctx context.Context, compute func(context.Context) (analytics.Statistics, error)) (analytics.Statistics, error) {
	if !c.enabled() {
		return compute(ctx)
	}

	raw, err := c.client.Get(ctx, StatsKey).Bytes()
	switch {
	case err == nil:
		var stats analytics.Statistics
		if jsonErr := json.Unmarshal(raw, &stats); jsonErr == nil {
			return stats, nil
		}
		c.logger.Warn("discarding unreadable cached statistics")
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("statistics cache read failed", zap.Error(err))
	}

	stats, err := compute(ctx)
	if err != nil {
		return analytics.Statistics{}, err
	}
	if payload, err := json.Marshal(stats); err == nil {
		if err := c.client.Set(ctx, StatsKey, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("statistics cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

// Invalidate drops the cached statistics.
func (c *StatsCache) Invalidate(ctx context.Context) {
	if !c.enabled() {
		return
	}
	if err := c.client.Del(ctx, StatsKey).Err(); err != nil {
		c.logger.Warn("statistics cache invalidation failed", zap.Error(err))
	}
}

// Register drops the cache whenever a ticket mutation is published.
func (c *StatsCache) Register(d events.Dispatcher) {
	if !c.enabled() {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketUpdated,
		events.EventTicketDeleted,
	} {
		d.Subscribe(eventType, func(ctx context.Context, _ events.Event) error {
			c.Invalidate(ctx)
			return nil
		})
	}
}
