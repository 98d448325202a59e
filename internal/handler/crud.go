package handler

import (
	"net/http"

	"github.com/deppfellow/go-crud/internal/crud"
	"github.com/deppfellow/go-crud/internal/middleware"
	"github.com/deppfellow/go-crud/internal/server"
	"github.com/deppfellow/go-crud/internal/validation"
	"github.com/labstack/echo/v4"
)

// Actions selects which CRUD routes an entity exposes.
type Actions uint8

const (
	ActionGet Actions = 1 << iota
	ActionSearch
	ActionSave
	ActionDelete
	ActionAutocomplete

	AllActions      = ActionGet | ActionSearch | ActionSave | ActionDelete | ActionAutocomplete
	ReadOnlyActions = ActionGet | ActionSearch | ActionAutocomplete
)

// Has reports whether every action in other is enabled.
func (a Actions) Has(other Actions) bool {
	return a&other == other
}

// IDRequest binds the ":id" path parameter.
type IDRequest struct {
	ID int64 `param:"id" validate:"required,gt=0"`
}

func (r *IDRequest) Validate() error {
	return validation.Struct(r)
}

// CrudHandler exposes a crud.Service over HTTP. One is built per entity.
type CrudHandler[T any] struct {
	Handler

	service          crud.Service[T]
	limits           crud.Limits
	grid             crud.GridOptions[T]
	noResultsMessage string
}

type CrudOption[T any] func(*CrudHandler[T])

// WithSearchQuery replaces the service's default search query.
func WithSearchQuery[T any](query crud.QueryFunc[T]) CrudOption[T] {
	return func(h *CrudHandler[T]) {
		h.grid.Query = query
	}
}

// WithRowPreparer replaces the default row preparer, e.g. with crud.RawRows.
func WithRowPreparer[T any](prepare crud.RowPreparer[T]) CrudOption[T] {
	return func(h *CrudHandler[T]) {
		h.grid.PrepareRows = prepare
	}
}

// WithAccessLevels keeps the default rows but computes userAccessLevels with fn.
func WithAccessLevels[T any](fn crud.AccessLevelFunc[T]) CrudOption[T] {
	return func(h *CrudHandler[T]) {
		h.grid.PrepareRows = crud.PrepareGridRows(fn)
	}
}

func WithDefaultRows[T any](rows int) CrudOption[T] {
	return func(h *CrudHandler[T]) {
		if rows > 0 {
			h.limits.DefaultRows = rows
		}
	}
}

// WithMaxRows caps the "rows" a client may request.
func WithMaxRows[T any](rows int) CrudOption[T] {
	return func(h *CrudHandler[T]) {
		if rows > 0 {
			h.limits.MaxRows = rows
		}
	}
}

// WithNoResultsMessage changes the autocomplete placeholder label.
func WithNoResultsMessage[T any](message string) CrudOption[T] {
	return func(h *CrudHandler[T]) {
		h.noResultsMessage = message
	}
}

func NewCrudHandler[T any](s *server.Server, service crud.Service[T], opts ...CrudOption[T]) *CrudHandler[T] {
	h := &CrudHandler[T]{
		Handler:          NewHandler(s),
		service:          service,
		limits:           crud.Limits{DefaultRows: crud.DefaultRows, MaxRows: crud.DefaultMaxRows},
		noResultsMessage: crud.NoResultsMessage,
		grid: crud.GridOptions[T]{
			Query:       service.SearchQuery,
			PrepareRows: crud.PrepareGridRows(crud.UserAccessLevels[T](service)),
		},
	}

	if s.Config != nil {
		if s.Config.Crud.DefaultRows > 0 {
			h.limits.DefaultRows = s.Config.Crud.DefaultRows
		}
		if s.Config.Crud.MaxRows > 0 {
			h.limits.MaxRows = s.Config.Crud.MaxRows
		}
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Register mounts the enabled actions on g:
//
//	GET    /search        search (POST accepted too)
//	POST   /save          save
//	GET    /autocomplete  autocomplete
//	GET    /:id           get
//	DELETE /:id           delete
func (h *CrudHandler[T]) Register(g *echo.Group, actions Actions) {
	if actions.Has(ActionSearch) {
		search := h.Search()
		g.GET("/search", search)
		g.POST("/search", search)
	}

	if actions.Has(ActionSave) {
		g.POST("/save", h.Save())
	}

	if actions.Has(ActionAutocomplete) {
		g.GET("/autocomplete", h.Autocomplete())
	}

	if actions.Has(ActionGet) {
		g.GET("/:id", h.Get(), middleware.NumericParam("id"))
	}

	if actions.Has(ActionDelete) {
		g.DELETE("/:id", h.Delete(), middleware.NumericParam("id"))
	}
}

// Get renders the root entity.
func (h *CrudHandler[T]) Get() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *IDRequest) (T, error) {
		return h.service.GetRootEntityData(c.Request().Context(), req.ID)
	}, http.StatusOK, &IDRequest{})
}

// Search renders the paginated grid.
func (h *CrudHandler[T]) Search() echo.HandlerFunc {
	return h.SearchWith(h.grid)
}

// SearchWith renders a grid with a different query or row preparer than the
// handler default. Unset options fall back to the handler's.
func (h *CrudHandler[T]) SearchWith(opts crud.GridOptions[T]) echo.HandlerFunc {
	if opts.Query == nil {
		opts.Query = h.grid.Query
	}
	if opts.PrepareRows == nil {
		opts.PrepareRows = h.grid.PrepareRows
	}

	return Handle(h.Handler, func(c echo.Context, dto *crud.DTO) (*crud.Grid, error) {
		return crud.GetGridData(c.Request().Context(), dto, h.limits, opts)
	}, http.StatusOK, &crud.DTO{})
}

// Save responds with the id of the saved entity. Known save failures become
// 400 responses.
func (h *CrudHandler[T]) Save() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, dto *crud.DTO) (int64, error) {
		id, err := h.service.Save(c.Request().Context(), dto)
		if err != nil {
			return 0, crud.TranslateSaveError(err)
		}
		return id, nil
	}, http.StatusOK, &crud.DTO{})
}

// Delete responds with true once the entity is gone. Any failure, including
// a service reporting that nothing was removed, is a 400.
func (h *CrudHandler[T]) Delete() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *IDRequest) (bool, error) {
		removed, err := h.service.RemoveEntity(c.Request().Context(), req.ID)
		if err != nil {
			return false, crud.TranslateDeleteError(err)
		}
		if !removed {
			return false, crud.ErrNotRemoved()
		}
		return true, nil
	}, http.StatusOK, &IDRequest{})
}

// Autocomplete never answers with an empty list.
func (h *CrudHandler[T]) Autocomplete() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, dto *crud.DTO) ([]map[string]any, error) {
		results, err := h.service.AutocompleteSearch(c.Request().Context(), dto)
		if err != nil {
			return nil, err
		}
		return crud.TreatNoResults(results, h.noResultsMessage), nil
	}, http.StatusOK, &crud.DTO{})
}
