package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zenthea/sessionguard/internal/infrastructure/persistence/models"
)

func TestNewManager_StrategyByDriver(t *testing.T) {
	assert.Equal(t, "gorm_automigrate", NewManager("sqlite", nil).GetStrategy().GetName())
	assert.Equal(t, "goose", NewManager("mysql", nil).GetStrategy().GetName())
}

func TestManager_MigrateSQLite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	m := NewManager("sqlite", nil)
	require.NoError(t, m.Migrate(db))

	assert.True(t, db.Migrator().HasTable(&models.TenantSettingModel{}))
	assert.True(t, db.Migrator().HasTable(&models.SessionModel{}))
	assert.True(t, db.Migrator().HasTable(&models.SessionTimeoutEventModel{}))
	assert.True(t, db.Migrator().HasIndex(&models.TenantSettingModel{}, "idx_tenant_category_key"))
}

func TestMigrations_Embedded(t *testing.T) {
	migrations, err := Migrations()
	require.NoError(t, err)
	require.Len(t, migrations, 3)

	for i, m := range migrations {
		assert.Equal(t, int64(i+1), m.Version)
	}
}
