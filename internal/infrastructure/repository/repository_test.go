package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/zenthea/sessionguard/internal/domain/session"
	"github.com/zenthea/sessionguard/internal/domain/setting"
	"github.com/zenthea/sessionguard/internal/domain/timeout"
	"github.com/zenthea/sessionguard/internal/infrastructure/persistence/models"
	"github.com/zenthea/sessionguard/internal/shared/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	err = db.AutoMigrate(&models.TenantSettingModel{}, &models.SessionModel{}, &models.SessionTimeoutEventModel{})
	require.NoError(t, err)

	return db
}

func newIntSetting(t *testing.T, tenantID, key string, value int) *setting.TenantSetting {
	s, err := setting.NewTenantSetting(tenantID, setting.CategorySessionTimeout, key, setting.ValueTypeInt, time.Now())
	require.NoError(t, err)
	require.NoError(t, s.SetIntValue(value, "admin", time.Now()))
	return s
}

func TestTenantSettingRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTenantSettingRepository(db, logger.NewNopLogger())
	ctx := context.Background()

	t.Run("get missing setting", func(t *testing.T) {
		_, err := repo.GetByKey(ctx, "tenant-1", setting.CategorySessionTimeout, setting.KeyTimeoutMinutes)
		assert.ErrorIs(t, err, setting.ErrSettingNotFound)
	})

	t.Run("upsert inserts then updates", func(t *testing.T) {
		s := newIntSetting(t, "tenant-1", setting.KeyTimeoutMinutes, 15)
		require.NoError(t, repo.Upsert(ctx, s))
		assert.NotZero(t, s.ID())

		again := newIntSetting(t, "tenant-1", setting.KeyTimeoutMinutes, 20)
		require.NoError(t, repo.Upsert(ctx, again))

		found, err := repo.GetByKey(ctx, "tenant-1", setting.CategorySessionTimeout, setting.KeyTimeoutMinutes)
		require.NoError(t, err)
		v, err := found.GetIntValue()
		require.NoError(t, err)
		assert.Equal(t, 20, v)
	})

	t.Run("category is tenant scoped", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, newIntSetting(t, "tenant-1", setting.KeyWarningMinutes, 3)))
		require.NoError(t, repo.Upsert(ctx, newIntSetting(t, "tenant-2", setting.KeyWarningMinutes, 5)))

		list, err := repo.GetByCategory(ctx, "tenant-1", setting.CategorySessionTimeout)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, setting.KeyTimeoutMinutes, list[0].Key())
		assert.Equal(t, setting.KeyWarningMinutes, list[1].Key())
	})

	t.Run("delete category", func(t *testing.T) {
		n, err := repo.DeleteCategory(ctx, "tenant-1", setting.CategorySessionTimeout)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		list, err := repo.GetByCategory(ctx, "tenant-2", setting.CategorySessionTimeout)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})
}

func TestTenantTimeoutConfigRepository(t *testing.T) {
	db := setupTestDB(t)
	settings := NewTenantSettingRepository(db, logger.NewNopLogger())
	loader := NewTenantTimeoutConfigRepository(settings)
	ctx := context.Background()

	_, err := loader.LoadTenantTimeoutConfig(ctx, "tenant-1")
	assert.ErrorIs(t, err, timeout.ErrTenantConfigNotFound)

	require.NoError(t, settings.Upsert(ctx, newIntSetting(t, "tenant-1", setting.KeyTimeoutMinutes, 45)))
	enabled, err := setting.NewTenantSetting("tenant-1", setting.CategorySessionTimeout, setting.KeyEnabled, setting.ValueTypeBool, time.Now())
	require.NoError(t, err)
	require.NoError(t, enabled.SetBoolValue(false, "admin", time.Now()))
	require.NoError(t, settings.Upsert(ctx, enabled))

	override, err := loader.LoadTenantTimeoutConfig(ctx, "tenant-1")
	require.NoError(t, err)
	require.NotNil(t, override.TimeoutMinutes)
	assert.Equal(t, 45, *override.TimeoutMinutes)
	assert.Nil(t, override.WarningMinutes)
	require.NotNil(t, override.Enabled)
	assert.False(t, *override.Enabled)
}

func TestSessionRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	sess, err := session.NewSession("sess-1", "user-1", "tenant-1", now)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, sess))

	t.Run("save refreshes existing row", func(t *testing.T) {
		sess.UpdateActivity(now.Add(time.Minute))
		sess.IPAddress = "10.0.0.1"
		require.NoError(t, repo.Save(ctx, sess))

		found, err := repo.GetByID(ctx, "sess-1")
		require.NoError(t, err)
		assert.Equal(t, "10.0.0.1", found.IPAddress)
		assert.True(t, found.LastActivityAt.Equal(now.Add(time.Minute)))
		assert.False(t, found.IsRevoked())
	})

	t.Run("revoke once", func(t *testing.T) {
		require.NoError(t, repo.Revoke(ctx, "sess-1", session.RevokeReasonInactivity, now.Add(time.Hour)))
		require.NoError(t, repo.Revoke(ctx, "sess-1", session.RevokeReasonSignedOut, now.Add(2*time.Hour)))

		found, err := repo.GetByID(ctx, "sess-1")
		require.NoError(t, err)
		require.True(t, found.IsRevoked())
		assert.Equal(t, session.RevokeReasonInactivity, found.RevokeReason)
	})

	t.Run("missing session", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
		assert.ErrorIs(t, repo.Revoke(ctx, "missing", session.RevokeReasonSignedOut, now), session.ErrSessionNotFound)
	})

	t.Run("delete revoked before cutoff", func(t *testing.T) {
		n, err := repo.DeleteRevokedBefore(ctx, now.Add(30*time.Minute))
		require.NoError(t, err)
		assert.Zero(t, n)

		n, err = repo.DeleteRevokedBefore(ctx, now.Add(2*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestTimeoutEventRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTimeoutEventRepository(db, logger.NewNopLogger())
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	sess, err := session.NewSession("sess-1", "user-1", "tenant-1", now)
	require.NoError(t, err)

	require.NoError(t, repo.Record(ctx, session.NewTimeoutEvent(sess, session.EventStarted, nil, now)))
	require.NoError(t, repo.Record(ctx, session.NewTimeoutEvent(sess, session.EventWarned,
		map[string]any{"remaining_ms": 120000}, now.Add(28*time.Minute))))

	events, err := repo.ListBySession(ctx, "sess-1", 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, session.EventWarned, events[0].Type)
	assert.EqualValues(t, 120000, events[0].Metadata["remaining_ms"])
	assert.Nil(t, events[1].Metadata)

	n, err := repo.DeleteBefore(ctx, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
