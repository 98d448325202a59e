package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/deppfellow/go-crud/internal/config"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkHealth(t *testing.T, h *HealthHandler) (int, map[string]any) {
	t.Helper()

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/status", nil), rec)
	require.NoError(t, h.CheckHealth(c))

	return rec.Code, decode[map[string]any](t, rec)
}

func TestCheckHealth(t *testing.T) {
	mr := miniredis.RunT(t)

	s := testServer()
	s.Redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = s.Redis.Close() })

	h := NewHealthHandler(s)

	code, body := checkHealth(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test", body["environment"])
	assert.Contains(t, body["checks"], "redis")

	mr.Close()

	code, body = checkHealth(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body["status"])
}

func TestCheckHealth_OptionalCheckDoesNotFail(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	s := testServer()
	s.Config.Observability = &config.ObservabilityConfig{
		HealthChecks: config.HealthChecksConfig{Timeout: time.Second, Checks: []string{"database"}},
	}
	s.Redis = redis.NewClient(&redis.Options{Addr: addr, MaxRetries: -1})
	t.Cleanup(func() { _ = s.Redis.Close() })

	code, body := checkHealth(t, NewHealthHandler(s))
	assert.Equal(t, http.StatusOK, code)

	checks := body["checks"].(map[string]any)
	assert.Equal(t, "unhealthy", checks["redis"].(map[string]any)["status"])
}
