// Package crud contains the entity-agnostic pieces of the REST CRUD controller.
//
// It defines the contract an entity service must satisfy (Service), the
// per-request parameter container handed to services (DTO), the pagination
// bookkeeping used by the search grid, and the translation of service error
// kinds into client-facing HTTP errors.
//
// The HTTP side (routing, binding, JSON rendering) lives in the handler package,
// which builds a CrudHandler for each entity on top of these types.
package crud

import (
	"context"
	"slices"
)

// Service is the collaborator a CrudHandler delegates to.
//
// One implementation exists per entity. It owns persistence, business rules and
// permission decisions; the handler only extracts parameters, paginates and
// shapes responses.
type Service[T any] interface {
	// GetRootEntityData loads a single entity for editing/viewing.
	GetRootEntityData(ctx context.Context, id int64) (T, error)

	// SearchQuery builds the default search query for the grid.
	SearchQuery(ctx context.Context, dto *DTO) (Query[T], error)

	// Save creates or updates the root entity described by dto and returns its id.
	Save(ctx context.Context, dto *DTO) (int64, error)

	// RemoveEntity deletes the entity. A false result without error means
	// nothing was removed.
	RemoveEntity(ctx context.Context, id int64) (bool, error)

	// AutocompleteSearch returns lightweight rows for autocomplete widgets.
	AutocompleteSearch(ctx context.Context, dto *DTO) ([]map[string]any, error)

	PermissionChecker[T]
}

// PermissionChecker answers the per-row access questions used by the grid.
type PermissionChecker[T any] interface {
	CheckUserEditPermission(ctx context.Context, item T) bool
	CheckUserViewPermission(ctx context.Context, item T) bool
	CheckUserDeletePermission(ctx context.Context, item T) bool
}

// Query is a paginatable search. It replaces the ORM query + paginator pair:
// Count reports the total number of matching rows and Fetch loads one window.
type Query[T any] interface {
	Count(ctx context.Context) (int64, error)
	Fetch(ctx context.Context, offset, limit int) ([]T, error)
}

// Principal is the authenticated caller as seen by services.
type Principal struct {
	UserID      string
	Role        string
	Permissions []string
}

// Has reports whether the principal carries the given permission.
func (p Principal) Has(permission string) bool {
	return slices.Contains(p.Permissions, permission)
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by WithPrincipal.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
