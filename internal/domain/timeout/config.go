package timeout

import (
	"context"
	"errors"
)

var (
	// ErrInvalidPolicy is returned when timeout values violate the policy invariants.
	ErrInvalidPolicy = errors.New("invalid timeout policy")

	// ErrTenantConfigNotFound is returned when a tenant has no timeout override.
	ErrTenantConfigNotFound = errors.New("tenant timeout config not found")
)

// TenantOverride is a tenant's stored customisation of the default policy.
// Nil fields are not overridden.
type TenantOverride struct {
	TimeoutMinutes *int
	WarningMinutes *int
	Enabled        *bool
}

// IsEmpty reports whether the override carries no field at all.
func (o TenantOverride) IsEmpty() bool {
	return o.TimeoutMinutes == nil && o.WarningMinutes == nil && o.Enabled == nil
}

// TenantConfigLoader reads a tenant's timeout override from the configuration store.
// Implementations return ErrTenantConfigNotFound when the tenant has none.
type TenantConfigLoader interface {
	LoadTenantTimeoutConfig(ctx context.Context, tenantID string) (*TenantOverride, error)
}

// IntPtr and BoolPtr build override fields.
func IntPtr(v int) *int    { return &v }
func BoolPtr(v bool) *bool { return &v }
