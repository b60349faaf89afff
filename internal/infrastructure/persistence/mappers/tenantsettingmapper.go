package mappers

import (
	"github.com/zenthea/sessionguard/internal/domain/setting"
	"github.com/zenthea/sessionguard/internal/infrastructure/persistence/models"
)

// TenantSettingMapper provides methods for converting between domain and model
type TenantSettingMapper interface {
	ToDomain(model *models.TenantSettingModel) *setting.TenantSetting
	ToModel(domain *setting.TenantSetting) *models.TenantSettingModel
	ToDomainList(modelList []*models.TenantSettingModel) []*setting.TenantSetting
}

type TenantSettingMapperImpl struct{}

func NewTenantSettingMapper() TenantSettingMapper {
	return &TenantSettingMapperImpl{}
}

func (m *TenantSettingMapperImpl) ToDomain(model *models.TenantSettingModel) *setting.TenantSetting {
	if model == nil {
		return nil
	}

	return setting.ReconstructTenantSetting(
		model.ID,
		model.TenantID,
		model.Category,
		model.SettingKey,
		model.Value,
		setting.ValueType(model.ValueType),
		model.UpdatedBy,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	)
}

func (m *TenantSettingMapperImpl) ToModel(domain *setting.TenantSetting) *models.TenantSettingModel {
	if domain == nil {
		return nil
	}

	return &models.TenantSettingModel{
		ID:         domain.ID(),
		TenantID:   domain.TenantID(),
		Category:   domain.Category(),
		SettingKey: domain.Key(),
		Value:      domain.Value(),
		ValueType:  string(domain.ValueType()),
		UpdatedBy:  domain.UpdatedBy(),
		Version:    domain.Version(),
		CreatedAt:  domain.CreatedAt(),
		UpdatedAt:  domain.UpdatedAt(),
	}
}

func (m *TenantSettingMapperImpl) ToDomainList(modelList []*models.TenantSettingModel) []*setting.TenantSetting {
	if modelList == nil {
		return nil
	}

	domains := make([]*setting.TenantSetting, 0, len(modelList))
	for _, model := range modelList {
		if domain := m.ToDomain(model); domain != nil {
			domains = append(domains, domain)
		}
	}
	return domains
}
