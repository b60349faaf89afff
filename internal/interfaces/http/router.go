package http

import (
	"github.com/gin-gonic/gin"

	"github.com/zenthea/sessionguard/internal/interfaces/http/middleware"
	"github.com/zenthea/sessionguard/internal/interfaces/http/routes"
)

// Router represents the HTTP router configuration
type Router struct {
	*Container
}

// NewRouter wraps a wired container.
func NewRouter(c *Container) *Router {
	return &Router{Container: c}
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.Recovery(r.log.Named("recovery")))
	r.engine.Use(middleware.RequestLogger(r.log.Named("http")))
	r.engine.Use(middleware.SecurityHeaders())
	r.engine.Use(middleware.CORS(r.cfg.Server.AllowedOrigins))

	r.engine.GET("/health", r.healthHandler.Health)

	routes.SetupSessionTimeoutRoutes(r.engine, &routes.SessionTimeoutRouteConfig{
		Handler:         r.sessionTimeoutHandler,
		AuthMiddleware:  r.authMiddleware,
		ActivityLimiter: r.activityLimiter,
	})

	routes.SetupAdminRoutes(r.engine, &routes.AdminRouteConfig{
		TenantTimeoutHandler: r.tenantTimeoutHandler,
		AuthMiddleware:       r.authMiddleware,
		PermissionMiddleware: r.permissionMiddleware,
	})
}

// GetEngine returns the gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
