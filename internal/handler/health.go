package handler

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/deppfellow/go-crud/internal/middleware"
	"github.com/deppfellow/go-crud/internal/server"
	"github.com/labstack/echo/v4"
)

const defaultHealthTimeout = 5 * time.Second

// dependencyCheck pings a single dependency.
type dependencyCheck struct {
	name string
	ping func(ctx context.Context) error
}

// HealthHandler reports whether the service and its dependencies are up.
type HealthHandler struct {
	Handler

	checks   []dependencyCheck
	required []string
	timeout  time.Duration
}

// NewHealthHandler checks the database, redis and, when configured, object
// storage. Only the checks listed in observability.health_checks.checks make
// the service unhealthy; the others are informational.
func NewHealthHandler(s *server.Server) *HealthHandler {
	h := &HealthHandler{
		Handler:  NewHandler(s),
		required: []string{"database", "redis"},
		timeout:  defaultHealthTimeout,
	}

	if obs := s.Config.Observability; obs != nil {
		h.required = obs.HealthChecks.Checks
		if obs.HealthChecks.Timeout > 0 {
			h.timeout = obs.HealthChecks.Timeout
		}
	}

	if s.DB != nil {
		h.checks = append(h.checks, dependencyCheck{"database", s.DB.Ping})
	}
	if s.Redis != nil {
		h.checks = append(h.checks, dependencyCheck{"redis", func(ctx context.Context) error {
			return s.Redis.Ping(ctx).Err()
		}})
	}
	if s.Storage != nil {
		h.checks = append(h.checks, dependencyCheck{"storage", s.Storage.Ping})
	}

	return h
}

// CheckHealth answers 200 when every required check passes and 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	checks := make(map[string]any, len(h.checks))
	isHealthy := true

	for _, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
		checkStart := time.Now()
		err := check.ping(ctx)
		cancel()

		elapsed := time.Since(checkStart)

		if err == nil {
			checks[check.name] = map[string]any{
				"status":        "healthy",
				"response_time": elapsed.String(),
			}
			logger.Debug().Str("check", check.name).Dur("response_time", elapsed).Msg("health check passed")
			continue
		}

		checks[check.name] = map[string]any{
			"status":        "unhealthy",
			"response_time": elapsed.String(),
			"error":         err.Error(),
		}

		if slices.Contains(h.required, check.name) {
			isHealthy = false
		}

		logger.Error().
			Err(err).
			Str("check", check.name).
			Dur("response_time", elapsed).
			Msg("health check failed")

		h.recordFailure(map[string]any{
			"check_type":       check.name,
			"operation":        "health_check",
			"error_type":       check.name + "_unhealthy",
			"response_time_ms": elapsed.Milliseconds(),
			"error_message":    err.Error(),
		})
	}

	response := map[string]any{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		h.recordFailure(map[string]any{
			"check_type":        "overall",
			"operation":         "health_check",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	return c.JSON(http.StatusOK, response)
}

func (h *HealthHandler) recordFailure(event map[string]any) {
	if app := h.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("HealthCheckError", event)
	}
}
