package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/deppfellow/go-crud/internal/config"
	"github.com/deppfellow/go-crud/internal/crud"
	"github.com/deppfellow/go-crud/internal/errs"
	"github.com/deppfellow/go-crud/internal/server"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(rateLimit float64) *server.Server {
	logger := zerolog.Nop()
	return &server.Server{
		Config: &config.Config{
			Primary: config.Primary{Env: "test"},
			Crud:    config.CrudConfig{DefaultRows: 20, RateLimit: rateLimit},
		},
		Logger: &logger,
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errs.HTTPError {
	t.Helper()

	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, GetRequestID(c))
	})

	const incoming = "3f2c8a34-5b1e-4c6a-9d0e-7f8a9b0c1d2e"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, incoming)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, incoming, rec.Body.String())
	assert.Equal(t, incoming, rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.NotEqual(t, "<script>", rec.Body.String())
	assert.Len(t, rec.Body.String(), 36)
}

func TestNumericParam(t *testing.T) {
	e := echo.New()
	e.GET("/items/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Param("id"))
	}, NumericParam("id"))

	for path, status := range map[string]int{
		"/items/42":  http.StatusOK,
		"/items/abc": http.StatusNotFound,
		"/items/4a":  http.StatusNotFound,
		"/items/-1":  http.StatusNotFound,
	} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, status, rec.Code, path)
	}
}

func TestAuthenticated(t *testing.T) {
	auth := NewAuthMiddleware(testServer(0))
	auth.sessionClaims = func(context.Context) (*clerk.SessionClaims, bool) {
		claims := &clerk.SessionClaims{}
		claims.Subject = "user_1"
		claims.ActiveOrganizationRole = "org:member"
		claims.Claims.ActiveOrganizationPermissions = []string{"org:contacts:view"}
		return claims, true
	}

	var got crud.Principal
	handler := auth.authenticated(func(c echo.Context) error {
		p, ok := crud.PrincipalFromContext(c.Request().Context())
		require.True(t, ok)
		got = p
		assert.Equal(t, "user_1", GetUserID(c))
		return nil
	})

	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	require.NoError(t, handler(c))

	assert.Equal(t, crud.Principal{
		UserID:      "user_1",
		Role:        "org:member",
		Permissions: []string{"org:contacts:view"},
	}, got)
	assert.True(t, got.Has("org:contacts:view"))
}

func TestAuthenticated_NoClaims(t *testing.T) {
	auth := NewAuthMiddleware(testServer(0))
	auth.sessionClaims = func(context.Context) (*clerk.SessionClaims, bool) { return nil, false }

	called := false
	handler := auth.authenticated(func(echo.Context) error {
		called = true
		return nil
	})

	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	err := handler(c)

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.Status)
	assert.False(t, called)
}

func TestGlobalErrorHandler(t *testing.T) {
	global := NewGlobalMiddlewares(testServer(0))

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"http error", errs.NewForbiddenError("no", true), http.StatusForbidden, "FORBIDDEN"},
		{"route not found", echo.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
		{"unique violation", &pgconn.PgError{Code: "23505", TableName: "contacts", ConstraintName: "unique_contacts_email"}, http.StatusBadRequest, "CONTACT_ALREADY_EXISTS"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			global.GlobalErrorHandler(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}

func TestLimiter(t *testing.T) {
	s := testServer(1)
	global := NewGlobalMiddlewares(s)

	e := echo.New()
	e.HTTPErrorHandler = global.GlobalErrorHandler
	e.Use(NewRateLimitMiddleware(s).Limiter())
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	first := httptest.NewRecorder()
	e.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	e.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "TOO_MANY_REQUESTS", decodeError(t, second).Code)
}

func TestLimiter_Disabled(t *testing.T) {
	e := echo.New()
	e.Use(NewRateLimitMiddleware(testServer(0)).Limiter())
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for range 5 {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
