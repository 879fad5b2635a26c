package model

import "time"

const (
	JobStatusQueued         = "queued"
	JobStatusProcessing     = "processing" // Worker picked it up, trying to get lock
	JobStatusSentToExecutor = "sent_to_executor"
	JobStatusCompleted      = "completed" // Webhook received
	JobStatusFailed         = "failed"    // Worker failed before sending or unrecoverable error
)

// EvaluationJob is one queued unit of submission evaluation work. The job id
// travels through Redis; the row is the durable record of its state.
type EvaluationJob struct {
	ID           string    `json:"id"`
	SubmissionID string    `json:"submission_id"`
	Status       string    `json:"status"`
	Attempts     int       `json:"attempts"`
	LastError    *string   `json:"last_error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
