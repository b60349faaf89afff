package setting

import (
	"context"
	"sync"

	"github.com/zenthea/sessionguard/internal/domain/setting"
)

// mockSettingRepo keeps settings in memory keyed by tenant/category/key.
type mockSettingRepo struct {
	mu       sync.Mutex
	settings map[string]*setting.TenantSetting
	nextID   uint

	UpsertFunc func(ctx context.Context, s *setting.TenantSetting) error
}

func newMockSettingRepo() *mockSettingRepo {
	return &mockSettingRepo{settings: make(map[string]*setting.TenantSetting)}
}

func settingKey(tenantID, category, key string) string {
	return tenantID + "/" + category + "/" + key
}

func (m *mockSettingRepo) GetByKey(ctx context.Context, tenantID, category, key string) (*setting.TenantSetting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[settingKey(tenantID, category, key)]
	if !ok {
		return nil, setting.ErrSettingNotFound
	}
	return s, nil
}

func (m *mockSettingRepo) GetByCategory(ctx context.Context, tenantID, category string) ([]*setting.TenantSetting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*setting.TenantSetting
	for _, s := range m.settings {
		if s.TenantID() == tenantID && s.Category() == category {
			result = append(result, s)
		}
	}
	return result, nil
}

func (m *mockSettingRepo) Upsert(ctx context.Context, s *setting.TenantSetting) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, s)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID() == 0 {
		m.nextID++
		s.SetID(m.nextID)
	}
	m.settings[settingKey(s.TenantID(), s.Category(), s.Key())] = s
	return nil
}

func (m *mockSettingRepo) DeleteCategory(ctx context.Context, tenantID, category string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for k, s := range m.settings {
		if s.TenantID() == tenantID && s.Category() == category {
			delete(m.settings, k)
			deleted++
		}
	}
	return deleted, nil
}

type mockInvalidator struct {
	InvalidateFunc func(ctx context.Context, tenantID string) error
	invalidated    []string
}

func (m *mockInvalidator) Invalidate(ctx context.Context, tenantID string) error {
	m.invalidated = append(m.invalidated, tenantID)
	if m.InvalidateFunc != nil {
		return m.InvalidateFunc(ctx, tenantID)
	}
	return nil
}
