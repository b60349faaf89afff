package migration

import (
	"github.com/zenthea/sessionguard/internal/infrastructure/persistence/models"
)

// AutoMigrateModels lists the models kept in sync by GormAutoMigrateStrategy.
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.TenantSettingModel{},
		&models.SessionModel{},
		&models.SessionTimeoutEventModel{},
	}
}
