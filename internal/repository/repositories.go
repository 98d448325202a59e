package repository

import (
	"github.com/deppfellow/go-crud/internal/server"
)

// Repositories groups every repository built on the shared pool.
type Repositories struct {
	Contact *ContactRepository
}

func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Contact: NewContactRepository(s.DB.Pool),
	}
}
