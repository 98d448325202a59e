package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/go-crud/internal/config"
	"github.com/deppfellow/go-crud/internal/database"
	"github.com/deppfellow/go-crud/internal/handler"
	"github.com/deppfellow/go-crud/internal/logger"
	"github.com/deppfellow/go-crud/internal/repository"
	"github.com/deppfellow/go-crud/internal/router"
	"github.com/deppfellow/go-crud/internal/server"
	"github.com/deppfellow/go-crud/internal/service"
	"github.com/rs/zerolog"
)

const DefaultContextTimeout = 30

func main() {
	os.Exit(run())
}

// run returns the process exit code. Every failure path returns instead of
// exiting so the deferred logger and signal cleanup still run.
func run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLogger.Error().Err(err).Msg("failed to load config")
		return 1
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	if cfg.Primary.Env != "local" {
		if err := database.Migrate(context.Background(), &log, cfg); err != nil {
			log.Error().Err(err).Msg("failed to migrate database")
			return 1
		}
	}

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize server")
		return 1
	}

	repos := repository.NewRepositories(srv)

	services, err := service.NewService(srv, repos)
	if err != nil {
		log.Error().Err(err).Msg("could not create services")
		return 1
	}

	handlers := handler.NewHandlers(srv, services)

	r := router.NewRouter(srv, handlers)

	srv.SetupHTTPServer(r)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx, DefaultContextTimeout*time.Second); err != nil {
		log.Error().Err(err).Msg("server stopped")
		return 1
	}

	log.Info().Msg("server exited")
	return 0
}
