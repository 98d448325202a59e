package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deppfellow/go-crud/internal/config"
	"github.com/deppfellow/go-crud/internal/errs"
	"github.com/deppfellow/go-crud/internal/handler"
	"github.com/deppfellow/go-crud/internal/server"
	"github.com/deppfellow/go-crud/internal/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, env string) http.Handler {
	t.Helper()

	logger := zerolog.Nop()
	s := &server.Server{
		Config: &config.Config{
			Primary: config.Primary{Env: env},
			Crud:    config.DefaultCrudConfig(),
		},
		Logger: &logger,
	}

	// No dependencies are wired, so the contact service is never reached
	// past authentication.
	return NewRouter(s, handler.NewHandlers(s, &service.Services{}))
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestRouter_Status(t *testing.T) {
	rec := serve(newTestRouter(t, "test"), http.MethodGet, "/status")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouter_ContactsRequireAuth(t *testing.T) {
	r := newTestRouter(t, "test")

	for _, target := range []string{
		"/api/v1/contacts/search",
		"/api/v1/contacts/mine",
		"/api/v1/contacts/autocomplete",
		"/api/v1/contacts/1",
	} {
		rec := serve(r, http.MethodGet, target)
		require.Equal(t, http.StatusUnauthorized, rec.Code, target)

		var body errs.HTTPError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "UNAUTHORIZED", body.Code)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	rec := serve(newTestRouter(t, "test"), http.MethodGet, "/api/v1/nothing")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Route not found", body.Message)
}

func TestRouter_EmailPreviewOnlyOutsideProduction(t *testing.T) {
	rec := serve(newTestRouter(t, "development"), http.MethodGet, "/emails/preview/contact_welcome")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(newTestRouter(t, "production"), http.MethodGet, "/emails/preview/contact_welcome")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
