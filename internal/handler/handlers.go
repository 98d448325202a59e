package handler

import (
	"github.com/deppfellow/go-crud/internal/crud"
	"github.com/deppfellow/go-crud/internal/model"
	"github.com/deppfellow/go-crud/internal/server"
	"github.com/deppfellow/go-crud/internal/service"
	"github.com/labstack/echo/v4"
)

// Handlers groups every HTTP handler so the router receives a single value.
type Handlers struct {
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
	Email   *EmailPreviewHandler
	Contact *ContactHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
		Email:   NewEmailPreviewHandler(s),
		Contact: NewContactHandler(s, services.Contact),
	}
}

// ContactHandler is the CRUD handler of contacts plus the "own contacts"
// grid, which uses an alternative search query.
type ContactHandler struct {
	*CrudHandler[model.Contact]

	service *service.ContactService
}

func NewContactHandler(s *server.Server, contacts *service.ContactService) *ContactHandler {
	return &ContactHandler{
		CrudHandler: NewCrudHandler[model.Contact](s, contacts),
		service:     contacts,
	}
}

// Register mounts the contact routes on g.
func (h *ContactHandler) Register(g *echo.Group) {
	g.GET("/mine", h.Mine())
	h.CrudHandler.Register(g, AllActions)
}

// Mine renders the grid of the caller's own contacts.
func (h *ContactHandler) Mine() echo.HandlerFunc {
	return h.SearchWith(crud.GridOptions[model.Contact]{Query: h.service.OwnSearchQuery})
}
