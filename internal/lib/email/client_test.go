package email

import (
	"testing"

	"github.com/deppfellow/go-crud/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPreviewData(t *testing.T) {
	for name, data := range PreviewData {
		t.Run(string(name), func(t *testing.T) {
			html, err := Render(name, data)
			require.NoError(t, err)
			assert.Contains(t, html, data["ContactName"])
		})
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := Render("missing", nil)
	assert.Error(t, err)
}

func TestSendEmailWithoutAPIKey(t *testing.T) {
	logger := zerolog.Nop()
	client := NewClient(&config.Config{}, &logger)

	assert.NoError(t, client.SendContactWelcomeEmail("ada@example.com", "Ada"))
}
