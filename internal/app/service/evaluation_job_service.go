package service

import (
	"context"
	"database/sql"
	"log"

	"reelcode/internal/common"
	"reelcode/internal/domain/model"
	"reelcode/internal/domain/repository"
	"reelcode/internal/platform/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type EvaluationJobService struct {
	jobRepo        repository.EvaluationJobRepository
	submissionRepo repository.SubmissionRepository
	rdb            *redis.Client
	db             *sql.DB
}

func NewEvaluationJobService(jobRepo repository.EvaluationJobRepository, subRepo repository.SubmissionRepository, rdb *redis.Client, db *sql.DB) *EvaluationJobService {
	return &EvaluationJobService{jobRepo: jobRepo, submissionRepo: subRepo, rdb: rdb, db: db}
}

// EnqueueEvaluationJob creates a job record inside the caller's transaction
// and pushes its ID to Redis. A Redis failure errors out so the surrounding
// transaction rolls back rather than leaving an orphaned job row.
func (s *EvaluationJobService) EnqueueEvaluationJob(ctx context.Context, tx *sql.Tx, submissionID string) (*model.EvaluationJob, error) {
	job := &model.EvaluationJob{
		ID:           uuid.NewString(),
		SubmissionID: submissionID,
		Status:       model.JobStatusQueued,
	}

	if err := s.jobRepo.CreateJob(ctx, tx, job); err != nil {
		return nil, common.Errorf("failed to create evaluation job in DB: %w", err)
	}

	if err := s.rdb.LPush(ctx, config.AppConfig.EvaluationQueueName, job.ID).Err(); err != nil {
		return nil, common.Errorf("failed to push job ID to Redis queue: %w", err)
	}

	if err := s.submissionRepo.UpdateSubmissionVerdict(ctx, tx, submissionID, model.SubmissionInQueue, 0); err != nil {
		return nil, common.Errorf("failed to update submission status to in_queue: %w", err)
	}

	log.Printf("Evaluation job %s for submission %s enqueued successfully.", job.ID, submissionID)
	return job, nil
}

// GetJob returns one job's state. Used by the admin surface to diagnose
// stuck evaluations.
func (s *EvaluationJobService) GetJob(ctx context.Context, jobID string) (*model.EvaluationJob, error) {
	return s.jobRepo.GetJobByID(ctx, jobID)
}
