package job

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	to, name string
	err      error
}

func (m *fakeMailer) SendContactWelcomeEmail(to, name string) error {
	m.to, m.name = to, name
	return m.err
}

func newTestJobService(m Mailer) *JobService {
	logger := zerolog.Nop()
	return &JobService{mailer: m, logger: &logger}
}

func TestHandleContactWelcomeTask(t *testing.T) {
	mailer := &fakeMailer{}
	j := newTestJobService(mailer)

	task, err := NewContactWelcomeTask(7, "ada@example.com", "Ada")
	require.NoError(t, err)
	assert.Equal(t, TaskContactWelcome, task.Type())

	require.NoError(t, j.Mux().ProcessTask(context.Background(), task))
	assert.Equal(t, "ada@example.com", mailer.to)
	assert.Equal(t, "Ada", mailer.name)
}

func TestHandleContactWelcomeTask_MailerError(t *testing.T) {
	boom := errors.New("resend down")
	j := newTestJobService(&fakeMailer{err: boom})

	task, err := NewContactWelcomeTask(7, "ada@example.com", "Ada")
	require.NoError(t, err)

	assert.ErrorIs(t, j.handleContactWelcomeTask(context.Background(), task), boom)
}

func TestHandleContactWelcomeTask_BadPayload(t *testing.T) {
	j := newTestJobService(&fakeMailer{})

	err := j.handleContactWelcomeTask(context.Background(), asynq.NewTask(TaskContactWelcome, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
