package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zenthea/sessionguard/internal/shared/constants"
	"github.com/zenthea/sessionguard/internal/shared/logger"
	"github.com/zenthea/sessionguard/internal/shared/utils"
)

// PermissionChecker decides whether a role acting from one tenant may act on another.
type PermissionChecker interface {
	Enforce(role, callerTenant, targetTenant, resource, action string) (bool, error)
}

type PermissionMiddleware struct {
	checker PermissionChecker
	logger  logger.Interface
}

func NewPermissionMiddleware(checker PermissionChecker, logger logger.Interface) *PermissionMiddleware {
	return &PermissionMiddleware{
		checker: checker,
		logger:  logger,
	}
}

// RequireTenantPermission checks the caller against the tenant named by the
// tenantParam path parameter.
func (m *PermissionMiddleware) RequireTenantPermission(resource, action, tenantParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(constants.ContextKeyUserID)
		if userID == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
			c.Abort()
			return
		}

		role := c.GetString(constants.ContextKeyUserRole)
		callerTenant := c.GetString(constants.ContextKeyTenantID)
		targetTenant := c.Param(tenantParam)

		allowed, err := m.checker.Enforce(role, callerTenant, targetTenant, resource, action)
		if err != nil {
			m.logger.Errorw("permission check failed", "error", err, "user_id", userID, "resource", resource, "action", action)
			utils.ErrorResponse(c, http.StatusInternalServerError, "permission check failed")
			c.Abort()
			return
		}

		if !allowed {
			m.logger.Warnw("permission denied",
				"user_id", userID,
				"role", role,
				"tenant_id", callerTenant,
				"target_tenant_id", targetTenant,
				"resource", resource,
				"action", action)
			utils.ErrorResponse(c, http.StatusForbidden, "insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}
