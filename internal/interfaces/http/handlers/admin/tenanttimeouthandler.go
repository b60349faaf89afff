// Package admin provides HTTP handlers for administrative operations.
package admin

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zenthea/sessionguard/internal/application/setting/dto"
	"github.com/zenthea/sessionguard/internal/shared/constants"
	"github.com/zenthea/sessionguard/internal/shared/errors"
	"github.com/zenthea/sessionguard/internal/shared/logger"
	"github.com/zenthea/sessionguard/internal/shared/utils"
)

// TenantTimeoutPolicyService manages per-tenant timeout overrides.
type TenantTimeoutPolicyService interface {
	GetTenantTimeoutPolicy(ctx context.Context, tenantID string) (*dto.TenantTimeoutPolicyResponse, error)
	UpdateTenantTimeoutPolicy(ctx context.Context, tenantID string, request dto.UpdateTenantTimeoutPolicyRequest, updatedBy string) (*dto.TenantTimeoutPolicyResponse, error)
	DeleteTenantTimeoutPolicy(ctx context.Context, tenantID string) error
}

// TenantTimeoutHandler handles tenant session-timeout admin API operations
type TenantTimeoutHandler struct {
	service TenantTimeoutPolicyService
	logger  logger.Interface
}

// NewTenantTimeoutHandler creates a new tenant timeout handler
func NewTenantTimeoutHandler(service TenantTimeoutPolicyService, logger logger.Interface) *TenantTimeoutHandler {
	return &TenantTimeoutHandler{
		service: service,
		logger:  logger,
	}
}

func tenantIDParam(c *gin.Context) (string, bool) {
	tenantID := c.Param("tenant_id")
	if tenantID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "tenant_id parameter is required")
		return "", false
	}
	return tenantID, true
}

// GetPolicy returns the stored override and the effective policy of a tenant
// GET /admin/tenants/:tenant_id/session-timeout
func (h *TenantTimeoutHandler) GetPolicy(c *gin.Context) {
	tenantID, ok := tenantIDParam(c)
	if !ok {
		return
	}

	result, err := h.service.GetTenantTimeoutPolicy(c.Request.Context(), tenantID)
	if err != nil {
		h.logger.Errorw("failed to get tenant timeout policy", "tenant_id", tenantID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// UpdatePolicy changes the fields present in the request body
// PUT /admin/tenants/:tenant_id/session-timeout
func (h *TenantTimeoutHandler) UpdatePolicy(c *gin.Context) {
	tenantID, ok := tenantIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateTenantTimeoutPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for update tenant timeout policy", "tenant_id", tenantID, "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.service.UpdateTenantTimeoutPolicy(c.Request.Context(), tenantID, req, c.GetString(constants.ContextKeyUserID))
	if err != nil {
		h.logger.Warnw("failed to update tenant timeout policy", "tenant_id", tenantID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.logger.Infow("tenant timeout policy updated",
		"tenant_id", tenantID,
		"updated_by", c.GetString(constants.ContextKeyUserID),
	)
	utils.SuccessResponse(c, http.StatusOK, "Session timeout policy updated", result)
}

// DeletePolicy removes the override so the tenant inherits the default
// DELETE /admin/tenants/:tenant_id/session-timeout
func (h *TenantTimeoutHandler) DeletePolicy(c *gin.Context) {
	tenantID, ok := tenantIDParam(c)
	if !ok {
		return
	}

	if err := h.service.DeleteTenantTimeoutPolicy(c.Request.Context(), tenantID); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.NoContentResponse(c)
}
