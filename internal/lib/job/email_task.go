package job

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// TaskContactWelcome greets a contact after it is created.
	TaskContactWelcome = "email:contact_welcome"
)

type ContactWelcomePayload struct {
	ContactID int64  `json:"contact_id"`
	To        string `json:"to"`
	Name      string `json:"name"`
}

// NewContactWelcomeTask builds the task: 3 retries, default queue, 30s timeout.
func NewContactWelcomeTask(contactID int64, to, name string) (*asynq.Task, error) {
	payload, err := json.Marshal(ContactWelcomePayload{
		ContactID: contactID,
		To:        to,
		Name:      name,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskContactWelcome,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue("default"),
		asynq.Timeout(30*time.Second),
	), nil
}
