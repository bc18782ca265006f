package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/repair-ticket-service/internal/analytics"
)

func TestDisabledCacheAlwaysComputes(t *testing.T) {
	c := NewStatsCache(nil, time.Minute, zap.NewNop())
	calls := 0
	compute := func(context.Context) (analytics.Statistics, error) {
		calls++
		return analytics.Statistics{Total: 3}, nil
	}

	for i := 0; i < 2; i++ {
		stats, err := c.GetOrCompute(context.Background(), compute)
		require.NoError(t, err)
		assert.Equal(t, 3, stats.Total)
	}
	assert.Equal(t, 2, calls)
	c.Invalidate(context.Background())
}

func TestUnreachableRedisFallsBackToCompute(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := NewStatsCache(client, time.Minute, zap.NewNop())
	stats, err := c.GetOrCompute(context.Background(), func(context.Context) (analytics.Statistics, error) {
		return analytics.Statistics{Total: 7}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, stats.Total)
}

func TestComputeErrorPropagates(t *testing.T) {
	c := NewStatsCache(nil, time.Minute, zap.NewNop())
	boom := errors.New("boom")
	_, err := c.GetOrCompute(context.Background(), func(context.Context) (analytics.Statistics, error) {
		return analytics.Statistics{}, boom
	})
	assert.ErrorIs(t, err, boom)
}
