package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/zenthea/sessionguard/internal/infrastructure/permission"
	adminHandlers "github.com/zenthea/sessionguard/internal/interfaces/http/handlers/admin"
	"github.com/zenthea/sessionguard/internal/interfaces/http/middleware"
	"github.com/zenthea/sessionguard/internal/shared/authorization"
)

// AdminRouteConfig holds the configuration for admin routes
type AdminRouteConfig struct {
	TenantTimeoutHandler *adminHandlers.TenantTimeoutHandler
	AuthMiddleware       *middleware.AuthMiddleware
	PermissionMiddleware *middleware.PermissionMiddleware
}

// SetupAdminRoutes configures tenant policy admin routes. Platform admins may
// manage any tenant; tenant admins only their own.
func SetupAdminRoutes(engine *gin.Engine, config *AdminRouteConfig) {
	admin := engine.Group("/admin")
	admin.Use(config.AuthMiddleware.RequireAuth())
	admin.Use(config.AuthMiddleware.RequireRole(authorization.RoleAdmin, authorization.RoleTenantAdmin))

	const tenantParam = "tenant_id"
	canRead := config.PermissionMiddleware.RequireTenantPermission(
		permission.ResourceTenantSessionTimeout, permission.ActionRead, tenantParam)
	canWrite := config.PermissionMiddleware.RequireTenantPermission(
		permission.ResourceTenantSessionTimeout, permission.ActionWrite, tenantParam)

	tenants := admin.Group("/tenants/:tenant_id")
	{
		tenants.GET("/session-timeout", canRead, config.TenantTimeoutHandler.GetPolicy)
		tenants.PUT("/session-timeout", canWrite, config.TenantTimeoutHandler.UpdatePolicy)
		tenants.DELETE("/session-timeout", canWrite, config.TenantTimeoutHandler.DeletePolicy)
	}
}
