// Package handler is the HTTP layer: it binds and validates requests,
// calls the service layer and writes responses.
//
// Every endpoint goes through the typed pipeline in base.go. Entity CRUD
// endpoints are produced by the generic CrudHandler in crud.go.
package handler
