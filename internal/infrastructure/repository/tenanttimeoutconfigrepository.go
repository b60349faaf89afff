package repository

import (
	"context"

	"github.com/zenthea/sessionguard/internal/domain/setting"
	"github.com/zenthea/sessionguard/internal/domain/timeout"
)

// TenantTimeoutConfigRepository reads a tenant's session timeout override from its
// session_timeout settings. It implements timeout.TenantConfigLoader.
type TenantTimeoutConfigRepository struct {
	settings setting.Repository
}

func NewTenantTimeoutConfigRepository(settings setting.Repository) *TenantTimeoutConfigRepository {
	return &TenantTimeoutConfigRepository{settings: settings}
}

func (r *TenantTimeoutConfigRepository) LoadTenantTimeoutConfig(ctx context.Context, tenantID string) (*timeout.TenantOverride, error) {
	settings, err := r.settings.GetByCategory(ctx, tenantID, setting.CategorySessionTimeout)
	if err != nil {
		return nil, err
	}

	override, err := setting.TimeoutOverrideFromSettings(settings)
	if err != nil {
		return nil, err
	}
	if override.IsEmpty() {
		return nil, timeout.ErrTenantConfigNotFound
	}
	return override, nil
}
