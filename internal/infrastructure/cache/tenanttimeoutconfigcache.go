package cache

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zenthea/sessionguard/internal/domain/timeout"
	"github.com/zenthea/sessionguard/internal/shared/logger"
)

const (
	tenantTimeoutKeyPrefix = "sessionguard:tenant_timeout:"
	defaultTenantConfigTTL = 10 * time.Minute
	tenantNullMarkerTTL    = 2 * time.Minute // short TTL for tenants without override
	fieldTimeoutMinutes    = "timeout_minutes"
	fieldWarningMinutes    = "warning_minutes"
	fieldEnabled           = "enabled"
	fieldNullMarker        = "_null"
)

// TenantTimeoutConfigCache is a read-through Redis cache in front of a
// timeout.TenantConfigLoader. Redis failures degrade to direct loads.
type TenantTimeoutConfigCache struct {
	client *redis.Client
	next   timeout.TenantConfigLoader
	ttl    time.Duration
	logger logger.Interface
}

func NewTenantTimeoutConfigCache(client *redis.Client, next timeout.TenantConfigLoader, ttl time.Duration, logger logger.Interface) *TenantTimeoutConfigCache {
	if ttl <= 0 {
		ttl = defaultTenantConfigTTL
	}
	return &TenantTimeoutConfigCache{
		client: client,
		next:   next,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *TenantTimeoutConfigCache) key(tenantID string) string {
	return tenantTimeoutKeyPrefix + tenantID
}

func (c *TenantTimeoutConfigCache) LoadTenantTimeoutConfig(ctx context.Context, tenantID string) (*timeout.TenantOverride, error) {
	override, hit, err := c.get(ctx, tenantID)
	if err != nil {
		c.logger.Warnw("tenant timeout cache read failed, loading from store",
			"tenant_id", tenantID,
			"error", err,
		)
	} else if hit {
		if override == nil {
			return nil, timeout.ErrTenantConfigNotFound
		}
		return override, nil
	}

	override, err = c.next.LoadTenantTimeoutConfig(ctx, tenantID)
	switch {
	case errors.Is(err, timeout.ErrTenantConfigNotFound):
		if setErr := c.setNullMarker(ctx, tenantID); setErr != nil {
			c.logger.Warnw("failed to cache tenant timeout null marker", "tenant_id", tenantID, "error", setErr)
		}
		return nil, err
	case err != nil:
		return nil, err
	}

	if setErr := c.set(ctx, tenantID, override); setErr != nil {
		c.logger.Warnw("failed to cache tenant timeout config", "tenant_id", tenantID, "error", setErr)
	}
	return override, nil
}

// get returns hit=true with a nil override when the null marker is cached.
func (c *TenantTimeoutConfigCache) get(ctx context.Context, tenantID string) (*timeout.TenantOverride, bool, error) {
	result, err := c.client.HGetAll(ctx, c.key(tenantID)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get tenant timeout config from cache: %w", err)
	}
	if len(result) == 0 {
		return nil, false, nil
	}
	if result[fieldNullMarker] == "1" {
		return nil, true, nil
	}

	override := &timeout.TenantOverride{}
	if v, ok := result[fieldTimeoutMinutes]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, false, fmt.Errorf("corrupt cached %s: %w", fieldTimeoutMinutes, err)
		}
		override.TimeoutMinutes = &n
	}
	if v, ok := result[fieldWarningMinutes]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, false, fmt.Errorf("corrupt cached %s: %w", fieldWarningMinutes, err)
		}
		override.WarningMinutes = &n
	}
	if v, ok := result[fieldEnabled]; ok {
		b := v == "1"
		override.Enabled = &b
	}

	return override, true, nil
}

func (c *TenantTimeoutConfigCache) set(ctx context.Context, tenantID string, override *timeout.TenantOverride) error {
	if override == nil || override.IsEmpty() {
		return c.setNullMarker(ctx, tenantID)
	}

	fields := map[string]interface{}{}
	if override.TimeoutMinutes != nil {
		fields[fieldTimeoutMinutes] = *override.TimeoutMinutes
	}
	if override.WarningMinutes != nil {
		fields[fieldWarningMinutes] = *override.WarningMinutes
	}
	if override.Enabled != nil {
		fields[fieldEnabled] = boolToInt(*override.Enabled)
	}

	key := c.key(tenantID)
	pipe := c.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, c.ttlWithJitter())

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set tenant timeout config in cache: %w", err)
	}

	c.logger.Debugw("tenant timeout config cached", "tenant_id", tenantID)
	return nil
}

func (c *TenantTimeoutConfigCache) setNullMarker(ctx context.Context, tenantID string) error {
	key := c.key(tenantID)

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, fieldNullMarker, "1")
	pipe.Expire(ctx, key, tenantNullMarkerTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set null marker in cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached override of a tenant.
func (c *TenantTimeoutConfigCache) Invalidate(ctx context.Context, tenantID string) error {
	if err := c.client.Del(ctx, c.key(tenantID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate tenant timeout cache: %w", err)
	}

	c.logger.Debugw("tenant timeout cache invalidated", "tenant_id", tenantID)
	return nil
}

// ttlWithJitter spreads expiry over [ttl, ttl*1.25) to avoid stampedes.
func (c *TenantTimeoutConfigCache) ttlWithJitter() time.Duration {
	jitter := c.ttl / 4
	if jitter <= 0 {
		return c.ttl
	}
	return c.ttl + rand.N(jitter)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
