package model

import "time"

type SubmissionStatus string

const (
	SubmissionPending      SubmissionStatus = "pending"
	SubmissionInQueue      SubmissionStatus = "in_queue"
	SubmissionProcessing   SubmissionStatus = "processing"
	SubmissionCompleted    SubmissionStatus = "completed"
	SubmissionWrongAnswer  SubmissionStatus = "wrong_answer"
	SubmissionTimeLimit    SubmissionStatus = "time_limit_exceeded"
	SubmissionRuntimeError SubmissionStatus = "runtime_error"
	SubmissionSystemError  SubmissionStatus = "system_error"
)

// Submission is an append-only record of one user's attempt at one level.
// Only the evaluation pipeline ever updates it, and only to record a verdict.
type Submission struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	LevelID     string           `json:"level_id"`
	Code        string           `json:"code"`
	Status      SubmissionStatus `json:"status"`
	Points      int              `json:"points"`
	SubmittedAt time.Time        `json:"submitted_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	TestResults  []SubmissionTestResult `json:"test_results,omitempty"`
	UserUsername *string                `json:"user_username,omitempty"` // For display
	LevelTitle   *string                `json:"level_title,omitempty"`   // For display
}

type SubmissionTestResult struct {
	ID              string           `json:"id"`
	SubmissionID    string           `json:"submission_id"`
	TestCaseID      string           `json:"test_case_id"`
	ActualOutput    *string          `json:"actual_output,omitempty"`
	Status          SubmissionStatus `json:"status"`
	ExecutionTimeMs *int             `json:"execution_time_ms,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}
