package handler

import (
	"net/http"

	"github.com/deppfellow/go-crud/internal/errs"
	"github.com/deppfellow/go-crud/internal/lib/email"
	"github.com/deppfellow/go-crud/internal/server"
	"github.com/labstack/echo/v4"
)

// EmailPreviewHandler renders email templates with sample data. It is only
// routed outside production.
type EmailPreviewHandler struct {
	Handler
}

func NewEmailPreviewHandler(s *server.Server) *EmailPreviewHandler {
	return &EmailPreviewHandler{
		Handler: NewHandler(s),
	}
}

func (h *EmailPreviewHandler) Preview(c echo.Context) error {
	name := email.Template(c.Param("template"))

	data, ok := email.PreviewData[name]
	if !ok {
		return errs.NewNotFoundError("Unknown email template", true, nil)
	}

	html, err := email.Render(name, data)
	if err != nil {
		return err
	}

	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.HTML(http.StatusOK, html)
}
