package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return client
}

func TestRedisRateLimiter_Allow_PerMinute(t *testing.T) {
	limiter := NewRedisRateLimiter(setupTestRedis(t), clockwork.NewFakeClock())
	ctx := context.Background()
	limit := Limit{Requests: 5, Window: time.Minute}

	for i := 0; i < 5; i++ {
		allowed, err := limiter.Allow(ctx, "sess-1", limit)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, err := limiter.Allow(ctx, "sess-1", limit)
	require.NoError(t, err)
	assert.False(t, allowed, "6th request should be denied")

	allowed, err = limiter.Allow(ctx, "sess-2", limit)
	require.NoError(t, err)
	assert.True(t, allowed, "other keys are independent")
}

func TestRedisRateLimiter_WindowSlides(t *testing.T) {
	clock := clockwork.NewFakeClock()
	limiter := NewRedisRateLimiter(setupTestRedis(t), clock)
	ctx := context.Background()
	limit := Limit{Requests: 2, Window: time.Minute}

	for i := 0; i < 2; i++ {
		allowed, err := limiter.Allow(ctx, "sess-1", limit)
		require.NoError(t, err)
		require.True(t, allowed)
	}

	clock.Advance(61 * time.Second)
	allowed, err := limiter.Allow(ctx, "sess-1", limit)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisRateLimiter_MultipleLimits(t *testing.T) {
	clock := clockwork.NewFakeClock()
	limiter := NewRedisRateLimiter(setupTestRedis(t), clock)
	ctx := context.Background()
	perMinute := Limit{Requests: 5, Window: time.Minute}
	perHour := Limit{Requests: 6, Window: time.Hour}

	for i := 0; i < 5; i++ {
		allowed, err := limiter.Allow(ctx, "sess-1", perMinute, perHour)
		require.NoError(t, err)
		require.True(t, allowed)
	}

	clock.Advance(2 * time.Minute)
	allowed, err := limiter.Allow(ctx, "sess-1", perMinute, perHour)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "sess-1", perMinute, perHour)
	require.NoError(t, err)
	assert.False(t, allowed, "hourly limit reached")
}

func TestRedisRateLimiter_Reset(t *testing.T) {
	limiter := NewRedisRateLimiter(setupTestRedis(t), clockwork.NewFakeClock())
	ctx := context.Background()
	limit := Limit{Requests: 1, Window: time.Minute}

	allowed, err := limiter.Allow(ctx, "sess-1", limit)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "sess-1", limit)
	require.NoError(t, err)
	require.False(t, allowed)

	require.NoError(t, limiter.Reset(ctx, "sess-1"))

	allowed, err = limiter.Allow(ctx, "sess-1", limit)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisRateLimiter_IgnoresEmptyLimits(t *testing.T) {
	limiter := NewRedisRateLimiter(setupTestRedis(t), clockwork.NewFakeClock())

	allowed, err := limiter.Allow(context.Background(), "sess-1", Limit{})
	require.NoError(t, err)
	assert.True(t, allowed)
}
