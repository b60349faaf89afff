package timeout

import (
	"context"
	"errors"

	"github.com/zenthea/sessionguard/internal/domain/timeout"
	"github.com/zenthea/sessionguard/internal/shared/logger"
)

// PolicyResolver determines the effective policy for a tenant.
// It never fails: any problem with the tenant's stored override falls back to the default.
type PolicyResolver struct {
	loader   timeout.TenantConfigLoader
	defaults timeout.Policy
	logger   logger.Interface
}

// NewPolicyResolver creates a resolver. A zero defaults policy means the built-in default.
func NewPolicyResolver(loader timeout.TenantConfigLoader, defaults timeout.Policy, log logger.Interface) *PolicyResolver {
	if defaults.IsZero() {
		defaults = timeout.DefaultPolicy()
	}
	if log == nil {
		log = logger.NewLogger()
	}
	return &PolicyResolver{
		loader:   loader,
		defaults: defaults,
		logger:   log,
	}
}

// DefaultPolicy returns the policy used when a tenant has no valid override.
func (r *PolicyResolver) DefaultPolicy() timeout.Policy {
	return r.defaults
}

// ResolvePolicy returns the tenant's override merged over the default policy.
// An empty tenant ID resolves to the default without a lookup.
func (r *PolicyResolver) ResolvePolicy(ctx context.Context, tenantID string) (policy timeout.Policy) {
	if tenantID == "" || r.loader == nil {
		return r.defaults
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Errorw("tenant timeout config loader panicked, using default policy",
				"tenant_id", tenantID,
				"panic", rec,
			)
			policy = r.defaults
		}
	}()

	override, err := r.loader.LoadTenantTimeoutConfig(ctx, tenantID)
	if err != nil {
		if errors.Is(err, timeout.ErrTenantConfigNotFound) {
			r.logger.Debugw("no tenant timeout override, using default policy", "tenant_id", tenantID)
			return r.defaults
		}
		r.logger.Warnw("failed to load tenant timeout config, using default policy",
			"tenant_id", tenantID,
			"error", err,
		)
		return r.defaults
	}
	if override == nil || override.IsEmpty() {
		return r.defaults
	}

	resolved, err := r.defaults.Apply(*override)
	if err != nil {
		r.logger.Warnw("invalid tenant timeout override, using default policy",
			"tenant_id", tenantID,
			"error", err,
		)
		return r.defaults
	}

	return resolved
}
