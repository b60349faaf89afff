package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenthea/sessionguard/internal/interfaces/http/handlers/testutil"
)

type fixedCounter int

func (f fixedCounter) ActiveSessions() int { return int(f) }

func TestHealthHandler(t *testing.T) {
	healthy := NewHealthHandler(map[string]HealthCheck{
		"database": func(ctx context.Context) error { return nil },
	}, nil, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/health", nil)
	healthy.Health(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"up"`)

	degraded := NewHealthHandler(map[string]HealthCheck{
		"redis": func(ctx context.Context) error { return errors.New("connection refused") },
	}, nil, testutil.NewMockLogger())

	c, w = testutil.NewTestContext(http.MethodGet, "/health", nil)
	degraded.Health(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"down"`)
}

func TestHealthHandler_ActiveSessions(t *testing.T) {
	h := NewHealthHandler(nil, fixedCounter(3), testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/health", nil)
	h.Health(c)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.True(t, resp.Success)
	assert.Contains(t, string(resp.Data), `"active_sessions":3`)
}
