// Package lib groups integrations that do not belong to a single layer:
// background jobs (asynq), transactional email (Resend), the entity read
// cache (redis) and upload storage (MinIO).
package lib
