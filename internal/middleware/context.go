package middleware

import (
	"github.com/deppfellow/go-crud/internal/logger"
	"github.com/deppfellow/go-crud/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

const (
	// UserIDKey and UserRoleKey are the echo context keys the auth
	// middleware stores the caller's identity under.
	UserIDKey   = "user_id"
	UserRoleKey = "user_role"

	// LoggerKey holds the request-scoped *zerolog.Logger in the echo context.
	LoggerKey = "logger"
)

// ContextEnhancer enriches each request with a request-scoped logger.
//
// The logger carries:
//   - request_id
//   - method, route path and client ip
//   - trace.id and span.id when a New Relic transaction exists
//   - user_id and user_role when auth already ran
//
// It is stored in the echo context (GetLogger) and in the request context
// (zerolog.Ctx).
type ContextEnhancer struct {
	server *server.Server
}

// NewContextEnhancer creates a ContextEnhancer on top of the server logger.
func NewContextEnhancer(s *server.Server) *ContextEnhancer {
	return &ContextEnhancer{server: s}
}

// EnhanceContext returns the echo middleware.
//
// For every request it:
//  1. reads the request id set by RequestID
//  2. derives a logger with the request fields
//  3. adds trace context when New Relic is on
//  4. adds user context when auth ran first
//  5. stores the logger with SetLogger
//
// Services that only hold a context.Context log through zerolog.Ctx and get
// the same fields.
func (ce *ContextEnhancer) EnhanceContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			contextLogger := ce.server.Logger.With().
				Str("request_id", GetRequestID(c)).
				Str("method", c.Request().Method).
				Str("path", c.Path()). // route template, e.g. /api/v1/contacts/:id
				Str("ip", c.RealIP()).
				Logger()

			if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
				contextLogger = logger.WithTraceContext(contextLogger, txn)
			}

			// Auth runs on route groups, so this is usually empty here and the
			// auth middleware calls SetLogger again with the user fields.
			if userID := GetUserID(c); userID != "" {
				contextLogger = contextLogger.With().Str(UserIDKey, userID).Logger()
			}

			if userRole := GetUserRole(c); userRole != "" {
				contextLogger = contextLogger.With().Str(UserRoleKey, userRole).Logger()
			}

			SetLogger(c, contextLogger)

			return next(c)
		}
	}
}

// SetLogger replaces the request-scoped logger in both contexts.
//
// The echo context gets a pointer for GetLogger. The request is swapped for
// one whose context carries l, which is what zerolog.Ctx reads.
func SetLogger(c echo.Context, l zerolog.Logger) {
	c.Set(LoggerKey, &l)
	c.SetRequest(c.Request().WithContext(l.WithContext(c.Request().Context())))
}

// GetUserID reads the caller id set by the auth middleware, or "".
func GetUserID(c echo.Context) string {
	if userID, ok := c.Get(UserIDKey).(string); ok {
		return userID
	}
	return ""
}

func GetUserRole(c echo.Context) string {
	if userRole, ok := c.Get(UserRoleKey).(string); ok {
		return userRole
	}
	return ""
}

// GetLogger returns the request-scoped logger, or a no-op logger when
// EnhanceContext did not run.
func GetLogger(c echo.Context) *zerolog.Logger {
	if logger, ok := c.Get(LoggerKey).(*zerolog.Logger); ok {
		return logger
	}

	logger := zerolog.Nop()
	return &logger
}
