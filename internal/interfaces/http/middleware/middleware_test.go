package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenthea/sessionguard/internal/infrastructure/auth"
	"github.com/zenthea/sessionguard/internal/infrastructure/ratelimit"
	"github.com/zenthea/sessionguard/internal/shared/authorization"
	"github.com/zenthea/sessionguard/internal/shared/constants"
	"github.com/zenthea/sessionguard/internal/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockPermissionChecker struct {
	EnforceFunc func(role, callerTenant, targetTenant, resource, action string) (bool, error)
}

func (m *mockPermissionChecker) Enforce(role, callerTenant, targetTenant, resource, action string) (bool, error) {
	return m.EnforceFunc(role, callerTenant, targetTenant, resource, action)
}

type mockRateLimiter struct {
	AllowFunc func(ctx context.Context, key string, limits ...ratelimit.Limit) (bool, error)
	keys      []string
}

func (m *mockRateLimiter) Allow(ctx context.Context, key string, limits ...ratelimit.Limit) (bool, error) {
	m.keys = append(m.keys, key)
	return m.AllowFunc(ctx, key, limits...)
}

func (m *mockRateLimiter) Reset(ctx context.Context, key string) error {
	return nil
}

func TestAuthMiddleware_RequireAuth(t *testing.T) {
	jwtSvc := auth.NewJWTService("secret", "", clockwork.NewRealClock())
	token, err := jwtSvc.Generate("sess-1", "user-1", "tenant-1", authorization.RoleTenantAdmin, time.Hour)
	require.NoError(t, err)

	m := NewAuthMiddleware(jwtSvc, logger.NewLogger())

	router := gin.New()
	router.GET("/me", m.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"sid":  c.GetString(constants.ContextKeySessionID),
			"uid":  c.GetString(constants.ContextKeyUserID),
			"tid":  c.GetString(constants.ContextKeyTenantID),
			"role": c.GetString(constants.ContextKeyUserRole),
		})
	})

	tests := []struct {
		name   string
		url    string
		header string
		want   int
	}{
		{"bearer header", "/me", "Bearer " + token, http.StatusOK},
		{"query token", "/me?access_token=" + token, "", http.StatusOK},
		{"missing", "/me", "", http.StatusUnauthorized},
		{"wrong scheme", "/me", "Basic abc", http.StatusUnauthorized},
		{"bad token", "/me", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"sid":"sess-1"`)
				assert.Contains(t, w.Body.String(), `"tid":"tenant-1"`)
				assert.Contains(t, w.Body.String(), `"role":"tenant_admin"`)
			}
		})
	}
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	m := NewAuthMiddleware(nil, logger.NewLogger())

	newRouter := func(role string) *gin.Engine {
		router := gin.New()
		router.GET("/x", func(c *gin.Context) {
			c.Set(constants.ContextKeyUserRole, role)
			c.Next()
		}, m.RequireRole(authorization.RoleAdmin, authorization.RoleTenantAdmin), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return router
	}

	w := httptest.NewRecorder()
	newRouter("tenant_admin").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	newRouter("user").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPermissionMiddleware_RequireTenantPermission(t *testing.T) {
	var gotTarget, gotCaller string
	checker := &mockPermissionChecker{EnforceFunc: func(role, callerTenant, targetTenant, resource, action string) (bool, error) {
		gotCaller, gotTarget = callerTenant, targetTenant
		switch role {
		case "admin":
			return true, nil
		case "broken":
			return false, errors.New("casbin down")
		}
		return callerTenant == targetTenant, nil
	}}
	m := NewPermissionMiddleware(checker, logger.NewLogger())

	newRouter := func(userID, role, tenant string) *gin.Engine {
		router := gin.New()
		router.GET("/tenants/:tenant_id", func(c *gin.Context) {
			if userID != "" {
				c.Set(constants.ContextKeyUserID, userID)
			}
			c.Set(constants.ContextKeyUserRole, role)
			c.Set(constants.ContextKeyTenantID, tenant)
			c.Next()
		}, m.RequireTenantPermission("tenant_session_timeout", "read", "tenant_id"), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return router
	}

	tests := []struct {
		name   string
		userID string
		role   string
		tenant string
		want   int
	}{
		{"admin", "u-1", "admin", "", http.StatusOK},
		{"own tenant", "u-2", "tenant_admin", "t-1", http.StatusOK},
		{"other tenant", "u-3", "tenant_admin", "t-2", http.StatusForbidden},
		{"checker error", "u-4", "broken", "t-1", http.StatusInternalServerError},
		{"unauthenticated", "", "admin", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newRouter(tt.userID, tt.role, tt.tenant).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tenants/t-1", nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
	assert.Equal(t, "t-1", gotTarget)
	assert.Equal(t, "t-1", gotCaller)
}

func TestRateLimiter_Limit(t *testing.T) {
	calls := 0
	limiter := &mockRateLimiter{AllowFunc: func(ctx context.Context, key string, limits ...ratelimit.Limit) (bool, error) {
		calls++
		switch calls {
		case 1:
			return true, nil
		case 2:
			return false, nil
		default:
			return false, errors.New("redis down")
		}
	}}
	rl := NewRateLimiter(limiter, "activity", logger.NewLogger(), ratelimit.Limit{Requests: 1, Window: time.Minute})

	router := gin.New()
	router.POST("/activity", rl.Limit(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/activity", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	// Redis failure lets the third request through.
	assert.Equal(t, []int{http.StatusNoContent, http.StatusTooManyRequests, http.StatusNoContent}, codes)
	assert.Equal(t, "activity:10.0.0.1", limiter.keys[0])
}

func TestRecovery(t *testing.T) {
	router := gin.New()
	router.Use(Recovery(logger.NewLogger()))
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS([]string{"https://app.example.com"}))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
