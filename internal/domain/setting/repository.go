package setting

import (
	"context"
)

// Repository persists tenant-scoped settings.
type Repository interface {
	// GetByKey retrieves one setting of a tenant.
	GetByKey(ctx context.Context, tenantID, category, key string) (*TenantSetting, error)

	// GetByCategory retrieves all settings of a tenant in a category.
	GetByCategory(ctx context.Context, tenantID, category string) ([]*TenantSetting, error)

	// Upsert creates or updates a setting.
	Upsert(ctx context.Context, setting *TenantSetting) error

	// DeleteCategory removes every setting of a tenant in a category.
	DeleteCategory(ctx context.Context, tenantID, category string) (int64, error)
}
