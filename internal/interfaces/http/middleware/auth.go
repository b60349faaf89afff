package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zenthea/sessionguard/internal/infrastructure/auth"
	"github.com/zenthea/sessionguard/internal/shared/authorization"
	"github.com/zenthea/sessionguard/internal/shared/constants"
	"github.com/zenthea/sessionguard/internal/shared/logger"
	"github.com/zenthea/sessionguard/internal/shared/utils"
)

// TokenVerifier validates a bearer token issued by the host platform.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
	logger   logger.Interface
}

func NewAuthMiddleware(verifier TokenVerifier, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		logger:   logger,
	}
}

// RequireAuth reads the bearer token from the Authorization header. EventSource
// cannot set headers, so the access_token query parameter is accepted as well.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("access_token")

		if token == "" {
			authHeader := c.GetHeader(constants.HeaderAuthorization)
			if authHeader == "" {
				utils.ErrorResponse(c, http.StatusUnauthorized, "missing authorization token")
				c.Abort()
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				utils.ErrorResponse(c, http.StatusUnauthorized, "invalid authorization header format")
				c.Abort()
				return
			}

			token = parts[1]
		}

		claims, err := m.verifier.Verify(token)
		if err != nil {
			m.logger.Warnw("failed to verify token", "error", err)
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, claims.UserID)
		c.Set(constants.ContextKeySessionID, claims.SessionID)
		c.Set(constants.ContextKeyTenantID, claims.TenantID)
		c.Set(constants.ContextKeyUserRole, string(claims.Role))

		c.Next()
	}
}

// RequireRole rejects callers whose token role is not one of roles.
func (m *AuthMiddleware) RequireRole(roles ...authorization.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := authorization.UserRole(c.GetString(constants.ContextKeyUserRole))
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		m.logger.Warnw("role check failed",
			"user_id", c.GetString(constants.ContextKeyUserID),
			"role", role,
			"required_roles", roles)
		utils.ErrorResponse(c, http.StatusForbidden, "insufficient role")
		c.Abort()
	}
}
