package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/zenthea/sessionguard/internal/application/setting/dto"
	"github.com/zenthea/sessionguard/internal/domain/setting"
	"github.com/zenthea/sessionguard/internal/domain/timeout"
	apperrors "github.com/zenthea/sessionguard/internal/shared/errors"
	"github.com/zenthea/sessionguard/internal/shared/logger"
)

// ConfigInvalidator drops cached tenant configuration after a change.
type ConfigInvalidator interface {
	Invalidate(ctx context.Context, tenantID string) error
}

// UpdateTenantTimeoutPolicyUseCase changes a tenant's override.
type UpdateTenantTimeoutPolicyUseCase struct {
	settingRepo setting.Repository
	invalidator ConfigInvalidator
	defaults    timeout.Policy
	clock       clockwork.Clock
	logger      logger.Interface
}

func NewUpdateTenantTimeoutPolicyUseCase(
	settingRepo setting.Repository,
	invalidator ConfigInvalidator,
	defaults timeout.Policy,
	clock clockwork.Clock,
	logger logger.Interface,
) *UpdateTenantTimeoutPolicyUseCase {
	return &UpdateTenantTimeoutPolicyUseCase{
		settingRepo: settingRepo,
		invalidator: invalidator,
		defaults:    defaults,
		clock:       clock,
		logger:      logger,
	}
}

// Execute merges request over the stored override, validates the resulting
// policy and persists only the fields present in request.
func (uc *UpdateTenantTimeoutPolicyUseCase) Execute(
	ctx context.Context,
	tenantID string,
	request dto.UpdateTenantTimeoutPolicyRequest,
	updatedBy string,
) error {
	if tenantID == "" {
		return apperrors.NewValidationError("tenant id is required")
	}
	if request.IsEmpty() {
		return apperrors.NewValidationError("at least one of timeout_minutes, warning_minutes, enabled is required")
	}
	if request.TimeoutMinutes != nil && *request.TimeoutMinutes < 1 {
		return apperrors.NewValidationError("timeout_minutes must be at least 1")
	}
	if request.WarningMinutes != nil && *request.WarningMinutes < 0 {
		return apperrors.NewValidationError("warning_minutes must not be negative")
	}

	current, err := uc.settingRepo.GetByCategory(ctx, tenantID, setting.CategorySessionTimeout)
	if err != nil {
		return fmt.Errorf("failed to load tenant timeout settings: %w", err)
	}
	stored, err := setting.TimeoutOverrideFromSettings(current)
	if err != nil {
		// A malformed stored value is replaced rather than merged.
		uc.logger.Warnw("ignoring malformed stored tenant timeout override",
			"tenant_id", tenantID,
			"error", err,
		)
		stored = &timeout.TenantOverride{}
	}

	merged := *stored
	if request.TimeoutMinutes != nil {
		merged.TimeoutMinutes = request.TimeoutMinutes
	}
	if request.WarningMinutes != nil {
		merged.WarningMinutes = request.WarningMinutes
	}
	if request.Enabled != nil {
		merged.Enabled = request.Enabled
	}

	if _, err := uc.defaults.Apply(merged); err != nil {
		if errors.Is(err, timeout.ErrInvalidPolicy) {
			return apperrors.NewValidationError("invalid session timeout policy", err.Error())
		}
		return err
	}

	if request.TimeoutMinutes != nil {
		if err := uc.upsertInt(ctx, tenantID, setting.KeyTimeoutMinutes, *request.TimeoutMinutes, updatedBy); err != nil {
			return err
		}
	}
	if request.WarningMinutes != nil {
		if err := uc.upsertInt(ctx, tenantID, setting.KeyWarningMinutes, *request.WarningMinutes, updatedBy); err != nil {
			return err
		}
	}
	if request.Enabled != nil {
		if err := uc.upsertBool(ctx, tenantID, setting.KeyEnabled, *request.Enabled, updatedBy); err != nil {
			return err
		}
	}

	invalidateConfig(ctx, uc.invalidator, uc.logger, tenantID)

	uc.logger.Infow("tenant session timeout policy updated",
		"tenant_id", tenantID,
		"updated_by", updatedBy,
	)
	return nil
}

func (uc *UpdateTenantTimeoutPolicyUseCase) load(ctx context.Context, tenantID, key string, valueType setting.ValueType) (*setting.TenantSetting, error) {
	existing, err := uc.settingRepo.GetByKey(ctx, tenantID, setting.CategorySessionTimeout, key)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, setting.ErrSettingNotFound) {
		return nil, fmt.Errorf("failed to load setting %s: %w", key, err)
	}
	return setting.NewTenantSetting(tenantID, setting.CategorySessionTimeout, key, valueType, uc.clock.Now())
}

func (uc *UpdateTenantTimeoutPolicyUseCase) upsertInt(ctx context.Context, tenantID, key string, value int, updatedBy string) error {
	s, err := uc.load(ctx, tenantID, key, setting.ValueTypeInt)
	if err != nil {
		return err
	}
	if err := s.SetIntValue(value, updatedBy, uc.clock.Now()); err != nil {
		return err
	}
	if err := uc.settingRepo.Upsert(ctx, s); err != nil {
		return fmt.Errorf("failed to update setting %s: %w", key, err)
	}
	return nil
}

func (uc *UpdateTenantTimeoutPolicyUseCase) upsertBool(ctx context.Context, tenantID, key string, value bool, updatedBy string) error {
	s, err := uc.load(ctx, tenantID, key, setting.ValueTypeBool)
	if err != nil {
		return err
	}
	if err := s.SetBoolValue(value, updatedBy, uc.clock.Now()); err != nil {
		return err
	}
	if err := uc.settingRepo.Upsert(ctx, s); err != nil {
		return fmt.Errorf("failed to update setting %s: %w", key, err)
	}
	return nil
}

// invalidateConfig is best effort: a stale entry expires with its TTL.
func invalidateConfig(ctx context.Context, inv ConfigInvalidator, log logger.Interface, tenantID string) {
	if inv == nil {
		return
	}
	if err := inv.Invalidate(ctx, tenantID); err != nil {
		log.Warnw("failed to invalidate tenant timeout cache",
			"tenant_id", tenantID,
			"error", err,
		)
	}
}
