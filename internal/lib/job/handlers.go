package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Mailer is the email capability needed by task handlers.
type Mailer interface {
	SendContactWelcomeEmail(to, name string) error
}

func (j *JobService) handleContactWelcomeTask(ctx context.Context, t *asynq.Task) error {
	var p ContactWelcomePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		// Malformed payloads will never succeed; skip retries.
		return fmt.Errorf("failed to unmarshal contact welcome payload: %v: %w", err, asynq.SkipRetry)
	}

	logger := j.logger.With().
		Str("type", TaskContactWelcome).
		Int64("contact_id", p.ContactID).
		Str("to", p.To).
		Logger()

	logger.Info().Msg("processing contact welcome task")

	if err := j.mailer.SendContactWelcomeEmail(p.To, p.Name); err != nil {
		logger.Error().Err(err).Msg("failed to send contact welcome email")
		// Returning the error lets asynq schedule a retry.
		return err
	}

	logger.Info().Msg("contact welcome email sent")

	return nil
}
