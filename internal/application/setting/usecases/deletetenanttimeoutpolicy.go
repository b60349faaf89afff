package usecases

import (
	"context"
	"fmt"

	"github.com/zenthea/sessionguard/internal/domain/setting"
	apperrors "github.com/zenthea/sessionguard/internal/shared/errors"
	"github.com/zenthea/sessionguard/internal/shared/logger"
)

// DeleteTenantTimeoutPolicyUseCase removes a tenant's override so it falls back to the default.
type DeleteTenantTimeoutPolicyUseCase struct {
	settingRepo setting.Repository
	invalidator ConfigInvalidator
	logger      logger.Interface
}

func NewDeleteTenantTimeoutPolicyUseCase(
	settingRepo setting.Repository,
	invalidator ConfigInvalidator,
	logger logger.Interface,
) *DeleteTenantTimeoutPolicyUseCase {
	return &DeleteTenantTimeoutPolicyUseCase{
		settingRepo: settingRepo,
		invalidator: invalidator,
		logger:      logger,
	}
}

func (uc *DeleteTenantTimeoutPolicyUseCase) Execute(ctx context.Context, tenantID string) error {
	deleted, err := uc.settingRepo.DeleteCategory(ctx, tenantID, setting.CategorySessionTimeout)
	if err != nil {
		return fmt.Errorf("failed to delete tenant timeout settings: %w", err)
	}
	if deleted == 0 {
		return apperrors.NewNotFoundError("tenant session timeout override not found", tenantID)
	}

	invalidateConfig(ctx, uc.invalidator, uc.logger, tenantID)

	uc.logger.Infow("tenant session timeout policy removed",
		"tenant_id", tenantID,
		"settings_deleted", deleted,
	)
	return nil
}
