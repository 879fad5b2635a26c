package service

import (
	"context"
	"database/sql"
	"log"

	"reelcode/internal/common"
	"reelcode/internal/domain/model"
	"reelcode/internal/domain/repository"
	"reelcode/internal/realtime"

	"github.com/google/uuid"
)

type WebhookService struct {
	submissionRepo repository.SubmissionRepository
	levelRepo      repository.LevelRepository
	userRepo       repository.UserRepository
	jobRepo        repository.EvaluationJobRepository
	publisher      realtime.Publisher
	db             *sql.DB
}

func NewWebhookService(
	subRepo repository.SubmissionRepository,
	levelRepo repository.LevelRepository,
	userRepo repository.UserRepository,
	jobRepo repository.EvaluationJobRepository,
	publisher realtime.Publisher,
	db *sql.DB,
) *WebhookService {
	return &WebhookService{
		submissionRepo: subRepo,
		levelRepo:      levelRepo,
		userRepo:       userRepo,
		jobRepo:        jobRepo,
		publisher:      publisher,
		db:             db,
	}
}

// ExecutionResultPayload is what the external executor posts back.
type ExecutionResultPayload struct {
	JobID           string                    `json:"job_id"`
	OverallStatus   model.SubmissionStatus    `json:"overall_status"`
	ErrorOutput     *string                   `json:"error_output,omitempty"`
	TestCaseResults []TestCaseExecutionResult `json:"test_case_results,omitempty"`
}

type TestCaseExecutionResult struct {
	TestCaseID      string                 `json:"test_case_id"`
	ActualOutput    *string                `json:"actual_output,omitempty"`
	Status          model.SubmissionStatus `json:"status"`
	ExecutionTimeMs *int                   `json:"execution_time_ms,omitempty"`
}

// VerdictFromResults derives the submission verdict from per-test-case
// outcomes: completed only when every test case passed, otherwise the first
// failing case's status. The executor's overall status is advisory; this is
// the single scoring authority.
func VerdictFromResults(results []TestCaseExecutionResult) model.SubmissionStatus {
	if len(results) == 0 {
		return model.SubmissionSystemError
	}
	for _, res := range results {
		if res.Status != model.SubmissionCompleted {
			return res.Status
		}
	}
	return model.SubmissionCompleted
}

// HandleExecutionResult applies the executor's verdict. Idempotent per job:
// a replayed webhook for a finished job is ignored. Verdict, per-test
// results, and the point award all land in one transaction.
func (s *WebhookService) HandleExecutionResult(ctx context.Context, payload ExecutionResultPayload) error {
	log.Printf("Webhook received for JobID: %s, OverallStatus: %s", payload.JobID, payload.OverallStatus)

	job, err := s.jobRepo.GetJobByID(ctx, payload.JobID)
	if err != nil {
		return common.Errorf("job %s not found: %w", payload.JobID, common.ErrNotFound)
	}
	if job.Status == model.JobStatusCompleted || job.Status == model.JobStatusFailed {
		log.Printf("WARN: Job %s already processed (status: %s). Ignoring webhook.", job.ID, job.Status)
		return nil // Idempotency
	}

	submission, err := s.submissionRepo.GetSubmissionByID(ctx, job.SubmissionID)
	if err != nil {
		return common.Errorf("submission %s not found for job %s: %w", job.SubmissionID, job.ID, err)
	}
	level, err := s.levelRepo.FindLevelByID(ctx, submission.LevelID)
	if err != nil {
		return common.Errorf("level %s not found for submission %s: %w", submission.LevelID, submission.ID, err)
	}

	verdict := VerdictFromResults(payload.TestCaseResults)
	points := 0
	if verdict == model.SubmissionCompleted {
		points = level.Points
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.Errorf("failed to begin transaction for webhook: %w", err)
	}
	defer tx.Rollback()

	if err := s.submissionRepo.UpdateSubmissionVerdict(ctx, tx, submission.ID, verdict, points); err != nil {
		return common.Errorf("failed to update submission %s verdict: %w", submission.ID, err)
	}

	resultsToStore := make([]model.SubmissionTestResult, 0, len(payload.TestCaseResults))
	for _, res := range payload.TestCaseResults {
		resultsToStore = append(resultsToStore, model.SubmissionTestResult{
			ID:              uuid.NewString(),
			SubmissionID:    submission.ID,
			TestCaseID:      res.TestCaseID,
			ActualOutput:    res.ActualOutput,
			Status:          res.Status,
			ExecutionTimeMs: res.ExecutionTimeMs,
		})
	}
	if err := s.submissionRepo.CreateSubmissionTestResults(ctx, tx, resultsToStore); err != nil {
		return common.Errorf("failed to store test results for submission %s: %w", submission.ID, err)
	}

	if verdict == model.SubmissionCompleted {
		// Verdict and score commit or roll back together.
		if err := s.userRepo.AwardPoints(ctx, tx, submission.UserID, points, level.SortOrder); err != nil {
			return common.Errorf("failed to award points to user %s: %w", submission.UserID, err)
		}
	}

	if err := s.jobRepo.UpdateJobStatus(ctx, tx, job.ID, model.JobStatusCompleted, nil); err != nil {
		return common.Errorf("failed to mark job %s completed: %w", job.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return common.Errorf("failed to commit webhook transaction: %w", err)
	}

	if verdict == model.SubmissionCompleted {
		if err := s.publisher.Publish(ctx, realtime.Event{
			Type:   realtime.EventSubmissionCompleted,
			RoomID: level.RoomID,
			Payload: map[string]interface{}{
				"user_id":  submission.UserID,
				"level_id": level.ID,
				"points":   points,
			},
		}); err != nil {
			log.Printf("WARN: failed to publish submission_completed for room %s: %v", level.RoomID, err)
		}
	}

	log.Printf("Submission %s processed with verdict %s (%d points).", submission.ID, verdict, points)
	return nil
}

// MarkJobFailed records a terminal failure reported outside the normal result
// path (e.g. executor rejected the job). Idempotent per job like
// HandleExecutionResult: a late failure callback never overwrites a verdict
// that already landed.
func (s *WebhookService) MarkJobFailed(ctx context.Context, jobID, reason string) error {
	job, err := s.jobRepo.GetJobByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status == model.JobStatusCompleted || job.Status == model.JobStatusFailed {
		log.Printf("WARN: Job %s already processed (status: %s). Ignoring failure webhook.", job.ID, job.Status)
		return nil
	}
	if err := s.jobRepo.UpdateJobStatus(ctx, nil, job.ID, model.JobStatusFailed, &reason); err != nil {
		return err
	}
	return s.submissionRepo.UpdateSubmissionVerdict(ctx, nil, job.SubmissionID, model.SubmissionSystemError, 0)
}
