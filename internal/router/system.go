package router

import (
	"github.com/deppfellow/go-crud/internal/handler"
	"github.com/deppfellow/go-crud/internal/server"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers the endpoints that are not part of the API:
// health, docs and their static assets. Email previews are only mounted
// outside production.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers, s *server.Server) {
	r.GET("/status", h.Health.CheckHealth)

	r.Static("/static", "static")

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)

	if s.Config.Primary.Env != "production" {
		r.GET("/emails/preview/:template", h.Email.Preview)
	}
}
