package setting

import (
	"context"

	"github.com/jonboulle/clockwork"

	"github.com/zenthea/sessionguard/internal/application/setting/dto"
	"github.com/zenthea/sessionguard/internal/application/setting/usecases"
	"github.com/zenthea/sessionguard/internal/domain/setting"
	"github.com/zenthea/sessionguard/internal/domain/timeout"
	"github.com/zenthea/sessionguard/internal/shared/logger"
)

// Service aggregates the tenant timeout policy use cases
type Service struct {
	getUC    *usecases.GetTenantTimeoutPolicyUseCase
	updateUC *usecases.UpdateTenantTimeoutPolicyUseCase
	deleteUC *usecases.DeleteTenantTimeoutPolicyUseCase
}

// NewService creates the tenant timeout policy service. invalidator may be nil
// when no cache sits in front of the settings store.
func NewService(
	settingRepo setting.Repository,
	invalidator usecases.ConfigInvalidator,
	defaults timeout.Policy,
	clock clockwork.Clock,
	log logger.Interface,
) *Service {
	if defaults.IsZero() {
		defaults = timeout.DefaultPolicy()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = logger.NewLogger()
	}

	return &Service{
		getUC:    usecases.NewGetTenantTimeoutPolicyUseCase(settingRepo, defaults, log),
		updateUC: usecases.NewUpdateTenantTimeoutPolicyUseCase(settingRepo, invalidator, defaults, clock, log),
		deleteUC: usecases.NewDeleteTenantTimeoutPolicyUseCase(settingRepo, invalidator, log),
	}
}

func (s *Service) GetTenantTimeoutPolicy(ctx context.Context, tenantID string) (*dto.TenantTimeoutPolicyResponse, error) {
	return s.getUC.Execute(ctx, tenantID)
}

// UpdateTenantTimeoutPolicy applies request and returns the resulting policy.
func (s *Service) UpdateTenantTimeoutPolicy(
	ctx context.Context,
	tenantID string,
	request dto.UpdateTenantTimeoutPolicyRequest,
	updatedBy string,
) (*dto.TenantTimeoutPolicyResponse, error) {
	if err := s.updateUC.Execute(ctx, tenantID, request, updatedBy); err != nil {
		return nil, err
	}
	return s.getUC.Execute(ctx, tenantID)
}

func (s *Service) DeleteTenantTimeoutPolicy(ctx context.Context, tenantID string) error {
	return s.deleteUC.Execute(ctx, tenantID)
}
