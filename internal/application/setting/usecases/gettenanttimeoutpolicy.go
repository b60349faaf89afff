package usecases

import (
	"context"
	"time"

	"github.com/zenthea/sessionguard/internal/application/setting/dto"
	"github.com/zenthea/sessionguard/internal/domain/setting"
	"github.com/zenthea/sessionguard/internal/domain/timeout"
	"github.com/zenthea/sessionguard/internal/shared/logger"
)

// GetTenantTimeoutPolicyUseCase reads a tenant's stored override and the policy it yields.
type GetTenantTimeoutPolicyUseCase struct {
	settingRepo setting.Repository
	defaults    timeout.Policy
	logger      logger.Interface
}

func NewGetTenantTimeoutPolicyUseCase(
	settingRepo setting.Repository,
	defaults timeout.Policy,
	logger logger.Interface,
) *GetTenantTimeoutPolicyUseCase {
	return &GetTenantTimeoutPolicyUseCase{
		settingRepo: settingRepo,
		defaults:    defaults,
		logger:      logger,
	}
}

// Execute never reports an invalid stored override as an error: the effective
// policy falls back to the default, the same way sessions resolve it.
func (uc *GetTenantTimeoutPolicyUseCase) Execute(ctx context.Context, tenantID string) (*dto.TenantTimeoutPolicyResponse, error) {
	settings, err := uc.settingRepo.GetByCategory(ctx, tenantID, setting.CategorySessionTimeout)
	if err != nil {
		uc.logger.Errorw("failed to get tenant timeout settings",
			"tenant_id", tenantID,
			"error", err,
		)
		return nil, err
	}

	response := &dto.TenantTimeoutPolicyResponse{
		TenantID:  tenantID,
		Effective: dto.ToEffectivePolicyDTO(uc.defaults),
	}

	var latest time.Time
	for _, s := range settings {
		if s.UpdatedAt().After(latest) {
			latest = s.UpdatedAt()
			response.UpdatedBy = s.UpdatedBy()
		}
	}
	if !latest.IsZero() {
		response.UpdatedAt = &latest
	}

	override, err := setting.TimeoutOverrideFromSettings(settings)
	if err != nil {
		uc.logger.Warnw("stored tenant timeout override is malformed",
			"tenant_id", tenantID,
			"error", err,
		)
		return response, nil
	}
	response.Override = dto.ToOverrideDTO(override)

	if !override.IsEmpty() {
		if effective, err := uc.defaults.Apply(*override); err == nil {
			response.Effective = dto.ToEffectivePolicyDTO(effective)
		} else {
			uc.logger.Warnw("stored tenant timeout override is invalid",
				"tenant_id", tenantID,
				"error", err,
			)
		}
	}

	return response, nil
}
