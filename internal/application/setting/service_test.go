package setting

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenthea/sessionguard/internal/application/setting/dto"
	"github.com/zenthea/sessionguard/internal/application/setting/usecases"
	"github.com/zenthea/sessionguard/internal/domain/setting"
	"github.com/zenthea/sessionguard/internal/domain/timeout"
	apperrors "github.com/zenthea/sessionguard/internal/shared/errors"
	"github.com/zenthea/sessionguard/internal/shared/logger"
)

func newTestService(repo *mockSettingRepo, inv *mockInvalidator) *Service {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	var invalidator usecases.ConfigInvalidator
	if inv != nil {
		invalidator = inv
	}
	return NewService(repo, invalidator, timeout.DefaultPolicy(), clock, logger.NewLogger())
}

func requireAppErrorCode(t *testing.T, err error, code int) {
	t.Helper()
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestService_GetTenantTimeoutPolicy_NoOverride(t *testing.T) {
	svc := newTestService(newMockSettingRepo(), nil)

	resp, err := svc.GetTenantTimeoutPolicy(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", resp.TenantID)
	assert.Nil(t, resp.Override)
	assert.Nil(t, resp.UpdatedAt)
	assert.Equal(t, 30, resp.Effective.TimeoutMinutes)
	assert.Equal(t, 2, resp.Effective.WarningMinutes)
	assert.True(t, resp.Effective.Enabled)
}

func TestService_UpdateTenantTimeoutPolicy(t *testing.T) {
	repo := newMockSettingRepo()
	inv := &mockInvalidator{}
	svc := newTestService(repo, inv)

	resp, err := svc.UpdateTenantTimeoutPolicy(context.Background(), "tenant-1", dto.UpdateTenantTimeoutPolicyRequest{
		TimeoutMinutes: timeout.IntPtr(10),
		WarningMinutes: timeout.IntPtr(5),
	}, "admin-1")
	require.NoError(t, err)

	require.NotNil(t, resp.Override)
	assert.Equal(t, 10, *resp.Override.TimeoutMinutes)
	assert.Equal(t, 5, *resp.Override.WarningMinutes)
	assert.Nil(t, resp.Override.Enabled)
	assert.Equal(t, int64(600000), resp.Effective.TimeoutMs)
	assert.Equal(t, int64(300000), resp.Effective.WarningLeadMs)
	assert.Equal(t, "admin-1", resp.UpdatedBy)
	assert.Equal(t, []string{"tenant-1"}, inv.invalidated)
}

func TestService_UpdateTenantTimeoutPolicy_MergesWithStored(t *testing.T) {
	repo := newMockSettingRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	_, err := svc.UpdateTenantTimeoutPolicy(ctx, "tenant-1", dto.UpdateTenantTimeoutPolicyRequest{
		TimeoutMinutes: timeout.IntPtr(10),
		WarningMinutes: timeout.IntPtr(5),
	}, "admin-1")
	require.NoError(t, err)

	// 3 minutes is below the stored warning of 5 and must be rejected.
	_, err = svc.UpdateTenantTimeoutPolicy(ctx, "tenant-1", dto.UpdateTenantTimeoutPolicyRequest{
		TimeoutMinutes: timeout.IntPtr(3),
	}, "admin-1")
	requireAppErrorCode(t, err, http.StatusBadRequest)

	resp, err := svc.UpdateTenantTimeoutPolicy(ctx, "tenant-1", dto.UpdateTenantTimeoutPolicyRequest{
		Enabled: timeout.BoolPtr(false),
	}, "admin-2")
	require.NoError(t, err)
	assert.Equal(t, 10, resp.Effective.TimeoutMinutes)
	assert.False(t, resp.Effective.Enabled)

	stored, err := repo.GetByKey(ctx, "tenant-1", setting.CategorySessionTimeout, setting.KeyTimeoutMinutes)
	require.NoError(t, err)
	assert.Equal(t, "10", stored.Value())
}

func TestService_UpdateTenantTimeoutPolicy_Validation(t *testing.T) {
	tests := []struct {
		name     string
		tenantID string
		req      dto.UpdateTenantTimeoutPolicyRequest
	}{
		{"empty tenant", "", dto.UpdateTenantTimeoutPolicyRequest{TimeoutMinutes: timeout.IntPtr(10)}},
		{"empty request", "tenant-1", dto.UpdateTenantTimeoutPolicyRequest{}},
		{"zero timeout", "tenant-1", dto.UpdateTenantTimeoutPolicyRequest{TimeoutMinutes: timeout.IntPtr(0)}},
		{"negative warning", "tenant-1", dto.UpdateTenantTimeoutPolicyRequest{WarningMinutes: timeout.IntPtr(-1)}},
		{"warning equals timeout", "tenant-1", dto.UpdateTenantTimeoutPolicyRequest{TimeoutMinutes: timeout.IntPtr(5), WarningMinutes: timeout.IntPtr(5)}},
		{"warning beyond default timeout", "tenant-1", dto.UpdateTenantTimeoutPolicyRequest{WarningMinutes: timeout.IntPtr(45)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockSettingRepo()
			svc := newTestService(repo, nil)

			_, err := svc.UpdateTenantTimeoutPolicy(context.Background(), tt.tenantID, tt.req, "admin-1")
			requireAppErrorCode(t, err, http.StatusBadRequest)
			assert.Empty(t, repo.settings)
		})
	}
}

func TestService_UpdateTenantTimeoutPolicy_InvalidateFailureIsIgnored(t *testing.T) {
	inv := &mockInvalidator{InvalidateFunc: func(ctx context.Context, tenantID string) error {
		return errors.New("redis down")
	}}
	svc := newTestService(newMockSettingRepo(), inv)

	_, err := svc.UpdateTenantTimeoutPolicy(context.Background(), "tenant-1", dto.UpdateTenantTimeoutPolicyRequest{
		Enabled: timeout.BoolPtr(false),
	}, "admin-1")
	assert.NoError(t, err)
}

func TestService_UpdateTenantTimeoutPolicy_StoreFailure(t *testing.T) {
	repo := newMockSettingRepo()
	repo.UpsertFunc = func(ctx context.Context, s *setting.TenantSetting) error {
		return errors.New("disk full")
	}
	inv := &mockInvalidator{}
	svc := newTestService(repo, inv)

	_, err := svc.UpdateTenantTimeoutPolicy(context.Background(), "tenant-1", dto.UpdateTenantTimeoutPolicyRequest{
		TimeoutMinutes: timeout.IntPtr(20),
	}, "admin-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, inv.invalidated)
}

func TestService_GetTenantTimeoutPolicy_MalformedStoredValue(t *testing.T) {
	repo := newMockSettingRepo()
	now := time.Now()
	bad := setting.ReconstructTenantSetting(1, "tenant-1", setting.CategorySessionTimeout, setting.KeyTimeoutMinutes, "thirty", setting.ValueTypeInt, "", 1, now, now)
	require.NoError(t, repo.Upsert(context.Background(), bad))

	svc := newTestService(repo, nil)
	resp, err := svc.GetTenantTimeoutPolicy(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Nil(t, resp.Override)
	assert.Equal(t, 30, resp.Effective.TimeoutMinutes)
}

func TestService_DeleteTenantTimeoutPolicy(t *testing.T) {
	repo := newMockSettingRepo()
	inv := &mockInvalidator{}
	svc := newTestService(repo, inv)
	ctx := context.Background()

	err := svc.DeleteTenantTimeoutPolicy(ctx, "tenant-1")
	requireAppErrorCode(t, err, http.StatusNotFound)

	_, err = svc.UpdateTenantTimeoutPolicy(ctx, "tenant-1", dto.UpdateTenantTimeoutPolicyRequest{
		TimeoutMinutes: timeout.IntPtr(15),
		Enabled:        timeout.BoolPtr(true),
	}, "admin-1")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTenantTimeoutPolicy(ctx, "tenant-1"))
	assert.Equal(t, []string{"tenant-1", "tenant-1"}, inv.invalidated)

	resp, err := svc.GetTenantTimeoutPolicy(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Nil(t, resp.Override)
}
