package models

import (
	"time"
)

// TenantSettingModel is the GORM model for tenant_settings table
type TenantSettingModel struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	TenantID   string    `gorm:"column:tenant_id;type:varchar(64);not null;uniqueIndex:idx_tenant_category_key"`
	Category   string    `gorm:"column:category;type:varchar(100);not null;uniqueIndex:idx_tenant_category_key"`
	SettingKey string    `gorm:"column:setting_key;type:varchar(100);not null;uniqueIndex:idx_tenant_category_key"`
	Value      string    `gorm:"column:value;type:text"`
	ValueType  string    `gorm:"column:value_type;type:varchar(20);not null;default:'string'"`
	UpdatedBy  string    `gorm:"column:updated_by;type:varchar(64)"`
	Version    int       `gorm:"column:version;default:1"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name for GORM
func (TenantSettingModel) TableName() string {
	return "tenant_settings"
}
