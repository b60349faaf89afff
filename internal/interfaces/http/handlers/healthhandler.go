package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zenthea/sessionguard/internal/shared/logger"
	"github.com/zenthea/sessionguard/internal/shared/utils"
	"github.com/zenthea/sessionguard/internal/shared/version"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// SessionCounter reports how many sessions are being enforced.
type SessionCounter interface {
	ActiveSessions() int
}

type HealthHandler struct {
	checks   map[string]HealthCheck
	sessions SessionCounter
	logger   logger.Interface
}

func NewHealthHandler(checks map[string]HealthCheck, sessions SessionCounter, logger logger.Interface) *HealthHandler {
	return &HealthHandler{
		checks:   checks,
		sessions: sessions,
		logger:   logger,
	}
}

// Health reports dependency status
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.Warnw("health check failed", "dependency", name, "error", err)
			deps[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "up"
	}

	data := gin.H{
		"version":      version.Get().Version,
		"dependencies": deps,
	}
	if h.sessions != nil {
		data["active_sessions"] = h.sessions.ActiveSessions()
	}

	if status != http.StatusOK {
		c.JSON(status, utils.APIResponse{Success: false, Data: data, Message: "degraded"})
		return
	}
	utils.SuccessResponse(c, status, "ok", data)
}
