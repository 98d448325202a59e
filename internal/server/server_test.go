package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/deppfellow/go-crud/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(port string) *Server {
	logger := zerolog.Nop()
	s := &Server{
		Config: &config.Config{
			Server: config.ServerConfig{Port: port, ReadTimeout: 1, WriteTimeout: 1, IdleTimeout: 1},
		},
		Logger: &logger,
	}
	s.SetupHTTPServer(http.NotFoundHandler())
	return s
}

func TestRun_ListenFailureIsReturned(t *testing.T) {
	s := newTestServer("-1")

	err := s.Run(context.Background(), time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start server")
}

func TestRun_CancelledContextShutsDown(t *testing.T) {
	s := newTestServer("0")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, time.Second)
	}()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestRun_WithoutHTTPServer(t *testing.T) {
	logger := zerolog.Nop()
	s := &Server{Config: &config.Config{}, Logger: &logger}

	err := s.Run(context.Background(), time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP server not initialized")
}
