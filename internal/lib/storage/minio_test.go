package storage

import (
	"testing"

	"github.com/deppfellow/go-crud/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMinIOStorage_RequiresSettings(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.StorageConfig
	}{
		{"no endpoint", config.StorageConfig{AccessKey: "a", SecretKey: "b", Bucket: "c"}},
		{"no credentials", config.StorageConfig{Endpoint: "localhost:9000", Bucket: "c"}},
		{"no bucket", config.StorageConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMinIOStorage(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestNewMinIOStorage(t *testing.T) {
	s, err := NewMinIOStorage(config.StorageConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "avatars",
	})
	require.NoError(t, err)
	assert.Equal(t, "avatars", s.bucket)
}
