package permission

import (
	"fmt"

	"github.com/zenthea/sessionguard/internal/shared/authorization"
	"github.com/zenthea/sessionguard/internal/shared/logger"
)

// InitSessionTimeoutPermissions seeds the tenant timeout policy permissions.
// Existing rules are left untouched.
func InitSessionTimeoutPermissions(e *Enforcer, log logger.Interface) error {
	policies := [][]string{
		// Platform admins manage every tenant
		{authorization.RoleAdmin.String(), ResourceTenantSessionTimeout, ActionRead, ScopeAny},
		{authorization.RoleAdmin.String(), ResourceTenantSessionTimeout, ActionWrite, ScopeAny},

		// Tenant admins manage their own tenant
		{authorization.RoleTenantAdmin.String(), ResourceTenantSessionTimeout, ActionRead, ScopeOwn},
		{authorization.RoleTenantAdmin.String(), ResourceTenantSessionTimeout, ActionWrite, ScopeOwn},
	}

	for _, policy := range policies {
		if err := e.AddPolicy(policy[0], policy[1], policy[2], policy[3]); err != nil {
			log.Errorw("failed to add session timeout permission policy",
				"error", err,
				"role", policy[0],
				"resource", policy[1],
				"action", policy[2],
				"scope", policy[3])
			return fmt.Errorf("failed to add policy [%s, %s, %s, %s]: %w",
				policy[0], policy[1], policy[2], policy[3], err)
		}
	}

	log.Info("session timeout permissions initialized successfully")
	return nil
}
