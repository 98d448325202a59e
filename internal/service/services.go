package service

import (
	"time"

	"github.com/deppfellow/go-crud/internal/lib/cache"
	"github.com/deppfellow/go-crud/internal/lib/job"
	"github.com/deppfellow/go-crud/internal/model"
	"github.com/deppfellow/go-crud/internal/repository"
	"github.com/deppfellow/go-crud/internal/server"
)

type Services struct {
	Auth    *AuthService
	Contact *ContactService
	Job     *job.JobService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	authService := NewAuthService(s)

	ttl := time.Duration(s.Config.Crud.CacheTTLSeconds) * time.Second
	contactCache := cache.NewEntityCache[model.Contact](s.Redis, "contact", ttl)

	// A nil *MinIOStorage must not end up inside a non-nil interface.
	var storage ObjectStore
	if s.Storage != nil {
		storage = s.Storage
	}

	var jobs WelcomeEnqueuer
	if s.Job != nil {
		jobs = s.Job
	}

	return &Services{
		Auth:    authService,
		Contact: NewContactService(repos.Contact, contactCache, storage, jobs, s.Logger),
		Job:     s.Job,
	}, nil
}
