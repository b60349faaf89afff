package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zenthea/sessionguard/internal/domain/setting"
	"github.com/zenthea/sessionguard/internal/infrastructure/persistence/mappers"
	"github.com/zenthea/sessionguard/internal/infrastructure/persistence/models"
	"github.com/zenthea/sessionguard/internal/shared/logger"
)

// TenantSettingRepository implements setting.Repository
type TenantSettingRepository struct {
	db     *gorm.DB
	logger logger.Interface
	mapper mappers.TenantSettingMapper
}

func NewTenantSettingRepository(db *gorm.DB, logger logger.Interface) setting.Repository {
	return &TenantSettingRepository{
		db:     db,
		logger: logger,
		mapper: mappers.NewTenantSettingMapper(),
	}
}

func (r *TenantSettingRepository) GetByKey(ctx context.Context, tenantID, category, key string) (*setting.TenantSetting, error) {
	var model models.TenantSettingModel

	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND category = ? AND setting_key = ?", tenantID, category, key).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, setting.ErrSettingNotFound
		}
		r.logger.Errorw("failed to get tenant setting", "tenant_id", tenantID, "category", category, "key", key, "error", err)
		return nil, fmt.Errorf("failed to get tenant setting: %w", err)
	}

	return r.mapper.ToDomain(&model), nil
}

func (r *TenantSettingRepository) GetByCategory(ctx context.Context, tenantID, category string) ([]*setting.TenantSetting, error) {
	var modelList []*models.TenantSettingModel

	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND category = ?", tenantID, category).
		Order("setting_key ASC").
		Find(&modelList).Error
	if err != nil {
		r.logger.Errorw("failed to get tenant settings by category", "tenant_id", tenantID, "category", category, "error", err)
		return nil, fmt.Errorf("failed to get tenant settings by category: %w", err)
	}

	return r.mapper.ToDomainList(modelList), nil
}

func (r *TenantSettingRepository) Upsert(ctx context.Context, s *setting.TenantSetting) error {
	model := r.mapper.ToModel(s)

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "category"}, {Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "value_type", "updated_by", "version", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		r.logger.Errorw("failed to upsert tenant setting", "tenant_id", s.TenantID(), "category", s.Category(), "key", s.Key(), "error", err)
		return fmt.Errorf("failed to upsert tenant setting: %w", err)
	}

	if s.ID() == 0 {
		s.SetID(model.ID)
	}

	return nil
}

func (r *TenantSettingRepository) DeleteCategory(ctx context.Context, tenantID, category string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND category = ?", tenantID, category).
		Delete(&models.TenantSettingModel{})
	if result.Error != nil {
		r.logger.Errorw("failed to delete tenant settings", "tenant_id", tenantID, "category", category, "error", result.Error)
		return 0, fmt.Errorf("failed to delete tenant settings: %w", result.Error)
	}

	return result.RowsAffected, nil
}
