package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenthea/sessionguard/internal/domain/timeout"
	"github.com/zenthea/sessionguard/internal/shared/logger"
)

type mockLoader struct {
	LoadFunc func(ctx context.Context, tenantID string) (*timeout.TenantOverride, error)
	calls    int
}

func (m *mockLoader) LoadTenantTimeoutConfig(ctx context.Context, tenantID string) (*timeout.TenantOverride, error) {
	m.calls++
	return m.LoadFunc(ctx, tenantID)
}

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestTenantTimeoutConfigCache_ReadThrough(t *testing.T) {
	client, mr := setupTestRedis(t)
	loader := &mockLoader{
		LoadFunc: func(ctx context.Context, tenantID string) (*timeout.TenantOverride, error) {
			return &timeout.TenantOverride{TimeoutMinutes: timeout.IntPtr(15), Enabled: timeout.BoolPtr(false)}, nil
		},
	}
	c := NewTenantTimeoutConfigCache(client, loader, time.Minute, logger.NewNopLogger())
	ctx := context.Background()

	first, err := c.LoadTenantTimeoutConfig(ctx, "tenant-1")
	require.NoError(t, err)
	second, err := c.LoadTenantTimeoutConfig(ctx, "tenant-1")
	require.NoError(t, err)

	assert.Equal(t, 1, loader.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, 15, *second.TimeoutMinutes)
	assert.Nil(t, second.WarningMinutes)
	assert.False(t, *second.Enabled)

	ttl := mr.TTL(tenantTimeoutKeyPrefix + "tenant-1")
	assert.GreaterOrEqual(t, ttl, time.Minute)
	assert.Less(t, ttl, time.Minute+15*time.Second)
}

func TestTenantTimeoutConfigCache_NullMarker(t *testing.T) {
	client, mr := setupTestRedis(t)
	loader := &mockLoader{
		LoadFunc: func(ctx context.Context, tenantID string) (*timeout.TenantOverride, error) {
			return nil, timeout.ErrTenantConfigNotFound
		},
	}
	c := NewTenantTimeoutConfigCache(client, loader, time.Minute, logger.NewNopLogger())
	ctx := context.Background()

	_, err := c.LoadTenantTimeoutConfig(ctx, "tenant-1")
	assert.ErrorIs(t, err, timeout.ErrTenantConfigNotFound)
	_, err = c.LoadTenantTimeoutConfig(ctx, "tenant-1")
	assert.ErrorIs(t, err, timeout.ErrTenantConfigNotFound)
	assert.Equal(t, 1, loader.calls)

	mr.FastForward(tenantNullMarkerTTL + time.Second)
	_, err = c.LoadTenantTimeoutConfig(ctx, "tenant-1")
	assert.ErrorIs(t, err, timeout.ErrTenantConfigNotFound)
	assert.Equal(t, 2, loader.calls)
}

func TestTenantTimeoutConfigCache_LoaderErrorNotCached(t *testing.T) {
	client, _ := setupTestRedis(t)
	loadErr := errors.New("database down")
	loader := &mockLoader{
		LoadFunc: func(ctx context.Context, tenantID string) (*timeout.TenantOverride, error) {
			return nil, loadErr
		},
	}
	c := NewTenantTimeoutConfigCache(client, loader, time.Minute, logger.NewNopLogger())
	ctx := context.Background()

	_, err := c.LoadTenantTimeoutConfig(ctx, "tenant-1")
	assert.ErrorIs(t, err, loadErr)
	_, err = c.LoadTenantTimeoutConfig(ctx, "tenant-1")
	assert.ErrorIs(t, err, loadErr)
	assert.Equal(t, 2, loader.calls)
}

func TestTenantTimeoutConfigCache_Invalidate(t *testing.T) {
	client, _ := setupTestRedis(t)
	minutes := 15
	loader := &mockLoader{
		LoadFunc: func(ctx context.Context, tenantID string) (*timeout.TenantOverride, error) {
			return &timeout.TenantOverride{TimeoutMinutes: timeout.IntPtr(minutes)}, nil
		},
	}
	c := NewTenantTimeoutConfigCache(client, loader, time.Minute, logger.NewNopLogger())
	ctx := context.Background()

	_, err := c.LoadTenantTimeoutConfig(ctx, "tenant-1")
	require.NoError(t, err)

	minutes = 45
	require.NoError(t, c.Invalidate(ctx, "tenant-1"))

	got, err := c.LoadTenantTimeoutConfig(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, 45, *got.TimeoutMinutes)
}

func TestTenantTimeoutConfigCache_RedisDownFallsThrough(t *testing.T) {
	client, mr := setupTestRedis(t)
	loader := &mockLoader{
		LoadFunc: func(ctx context.Context, tenantID string) (*timeout.TenantOverride, error) {
			return &timeout.TenantOverride{WarningMinutes: timeout.IntPtr(3)}, nil
		},
	}
	c := NewTenantTimeoutConfigCache(client, loader, time.Minute, logger.NewNopLogger())

	mr.Close()

	got, err := c.LoadTenantTimeoutConfig(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, 3, *got.WarningMinutes)
}
