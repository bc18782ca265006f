package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/repair-ticket-service/internal/config"
)

const redisDialTimeout = 2 * time.Second

// ErrRedisDisabled is returned by Ping when no address was configured.
var ErrRedisDisabled = errors.New("redis disabled")

// Redis holds the statistics cache connection. A zero value means the cache
// is disabled and every caller falls back to computing directly.
type Redis struct {
	client *redis.Client
}

// NewRedis builds the client when REDIS_ADDR is set. An unreachable server
// is only logged: the cache is optional and the client reconnects lazily.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	if cfg.Addr == "" {
		logger.Warn("REDIS_ADDR not provided; statistics cache disabled")
		return &Redis{}
	}
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: redisDialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, statistics will be computed on every request", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("statistics cache connected", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	}
	return &Redis{client: client}
}

// Enabled reports whether an address was configured.
func (r *Redis) Enabled() bool {
	return r != nil && r.client != nil
}

// Cmdable returns the client as an interface, or nil when disabled so callers
// never hold a typed nil.
func (r *Redis) Cmdable() redis.Cmdable {
	if !r.Enabled() {
		return nil
	}
	return r.client
}

func (r *Redis) Ping(ctx context.Context) error {
	if !r.Enabled() {
		return ErrRedisDisabled
	}
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() {
	if r.Enabled() {
		_ = r.client.Close()
	}
}
