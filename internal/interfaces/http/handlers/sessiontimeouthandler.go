package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	timeoutApp "github.com/zenthea/sessionguard/internal/application/timeout"
	"github.com/zenthea/sessionguard/internal/interfaces/dto"
	"github.com/zenthea/sessionguard/internal/shared/constants"
	"github.com/zenthea/sessionguard/internal/shared/errors"
	"github.com/zenthea/sessionguard/internal/shared/logger"
	"github.com/zenthea/sessionguard/internal/shared/utils"
)

// DefaultHeartbeatInterval keeps idle SSE connections open through proxies.
const DefaultHeartbeatInterval = 25 * time.Second

// SessionTimeoutHandler serves the browser-facing timeout API. The session is
// always the one named by the caller's token.
type SessionTimeoutHandler struct {
	service   SessionTimeoutService
	clock     clockwork.Clock
	heartbeat time.Duration
	logger    logger.Interface
}

func NewSessionTimeoutHandler(service SessionTimeoutService, clock clockwork.Clock, heartbeat time.Duration, logger logger.Interface) *SessionTimeoutHandler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeatInterval
	}
	return &SessionTimeoutHandler{
		service:   service,
		clock:     clock,
		heartbeat: heartbeat,
		logger:    logger,
	}
}

func sessionIDFrom(c *gin.Context) (string, bool) {
	sid := c.GetString(constants.ContextKeySessionID)
	if sid == "" {
		utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("session not authenticated"))
		return "", false
	}
	return sid, true
}

// Start begins enforcement for the caller's session
// POST /api/session-timeout/start
func (h *SessionTimeoutHandler) Start(c *gin.Context) {
	sid, ok := sessionIDFrom(c)
	if !ok {
		return
	}

	status, err := h.service.Start(c.Request.Context(), timeoutApp.SessionInfo{
		SessionID: sid,
		UserID:    c.GetString(constants.ContextKeyUserID),
		TenantID:  c.GetString(constants.ContextKeyTenantID),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		h.logger.Warnw("failed to start session timeout", "session_id", sid, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", status)
}

// GetStatus returns the timeout state of the caller's session
// GET /api/session-timeout/status
func (h *SessionTimeoutHandler) GetStatus(c *gin.Context) {
	sid, ok := sessionIDFrom(c)
	if !ok {
		return
	}

	status, err := h.service.Status(c.Request.Context(), sid)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", status)
}

// RecordActivity reports browser input events
// POST /api/session-timeout/activity
func (h *SessionTimeoutHandler) RecordActivity(c *gin.Context) {
	sid, ok := sessionIDFrom(c)
	if !ok {
		return
	}

	var req dto.RecordActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for record activity", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if err := h.service.RecordActivity(c.Request.Context(), sid, req.ToActivityEvents(sid, h.clock.Now())); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

// Extend resets the inactivity clock ("stay signed in")
// POST /api/session-timeout/extend
func (h *SessionTimeoutHandler) Extend(c *gin.Context) {
	sid, ok := sessionIDFrom(c)
	if !ok {
		return
	}

	status, err := h.service.Extend(c.Request.Context(), sid)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "session extended", status)
}

// Stop ends enforcement after the host signed the user out
// DELETE /api/session-timeout
func (h *SessionTimeoutHandler) Stop(c *gin.Context) {
	sid, ok := sessionIDFrom(c)
	if !ok {
		return
	}

	if err := h.service.Stop(c.Request.Context(), sid); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

// Events streams timeout notifications as server-sent events. The stream ends
// after session_invalidated or when the session stops being enforced.
// GET /api/session-timeout/events
func (h *SessionTimeoutHandler) Events(c *gin.Context) {
	sid, ok := sessionIDFrom(c)
	if !ok {
		return
	}

	notifications, cancel, err := h.service.Subscribe(sid)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	defer cancel()

	c.Header("Content-Type", constants.ContentTypeEventStream)
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	if status, err := h.service.Status(c.Request.Context(), sid); err == nil {
		c.SSEvent("status", status)
	}
	c.Writer.Flush()

	heartbeat := h.clock.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case n, ok := <-notifications:
			if !ok {
				return
			}
			c.SSEvent(string(n.Type), n)
			c.Writer.Flush()
			if n.Type == timeoutApp.NotificationSessionInvalidated {
				return
			}
		case <-heartbeat.Chan():
			c.SSEvent("ping", gin.H{"at": h.clock.Now().UnixMilli()})
			c.Writer.Flush()
		}
	}
}
