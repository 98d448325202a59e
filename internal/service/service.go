// Package service contains the business logic.
//
// It sits between the handler and repository layers. Each entity service
// implements crud.Service so the generic CRUD handler can drive it: it decodes
// and validates the request DTO, enforces permissions and calls the
// repository, cache, storage and job collaborators.
package service
