package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/zenthea/sessionguard/internal/interfaces/http/handlers"
	"github.com/zenthea/sessionguard/internal/interfaces/http/middleware"
)

// SessionTimeoutRouteConfig holds the configuration for session timeout routes
type SessionTimeoutRouteConfig struct {
	Handler        *handlers.SessionTimeoutHandler
	AuthMiddleware *middleware.AuthMiddleware
	// ActivityLimiter is optional
	ActivityLimiter *middleware.RateLimiter
}

// SetupSessionTimeoutRoutes configures the browser-facing timeout routes
func SetupSessionTimeoutRoutes(engine *gin.Engine, config *SessionTimeoutRouteConfig) {
	st := engine.Group("/api/session-timeout")
	st.Use(config.AuthMiddleware.RequireAuth())
	{
		st.POST("/start", config.Handler.Start)
		st.GET("/status", config.Handler.GetStatus)
		st.POST("/extend", config.Handler.Extend)
		st.GET("/events", config.Handler.Events)
		st.DELETE("", config.Handler.Stop)

		if config.ActivityLimiter != nil {
			st.POST("/activity", config.ActivityLimiter.Limit(), config.Handler.RecordActivity)
		} else {
			st.POST("/activity", config.Handler.RecordActivity)
		}
	}
}
