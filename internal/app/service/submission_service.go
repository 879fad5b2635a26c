package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"reelcode/internal/common"
	"reelcode/internal/domain/model"
	"reelcode/internal/domain/repository"

	"github.com/google/uuid"
)

type SubmissionService struct {
	submissionRepo repository.SubmissionRepository
	levelRepo      repository.LevelRepository
	roomRepo       repository.RoomRepository
	jobService     *EvaluationJobService
	db             *sql.DB // For transactions
}

func NewSubmissionService(
	subRepo repository.SubmissionRepository,
	levelRepo repository.LevelRepository,
	roomRepo repository.RoomRepository,
	jobService *EvaluationJobService,
	db *sql.DB,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo: subRepo,
		levelRepo:      levelRepo,
		roomRepo:       roomRepo,
		jobService:     jobService,
		db:             db,
	}
}

type CreateSubmissionRequest struct {
	LevelID string `json:"level_id"`
	Code    string `json:"code"`
}

// CreateSubmission records an attempt and enqueues its evaluation in one
// transaction. The caller must be a participant of the level's room and the
// level must be active; the submission is always written as the caller's own.
func (s *SubmissionService) CreateSubmission(ctx context.Context, userID string, req CreateSubmissionRequest) (*model.Submission, error) {
	if req.LevelID == "" || req.Code == "" {
		return nil, fmt.Errorf("level_id and code are required: %w", common.ErrValidation)
	}

	level, err := s.levelRepo.FindLevelByID(ctx, req.LevelID)
	if err != nil {
		return nil, common.Errorf("level not found: %w", err)
	}
	ok, err := s.roomRepo.IsParticipant(ctx, level.RoomID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("user is not a participant of this room: %w", common.ErrForbidden)
	}
	if level.Status != model.LevelStatusActive {
		return nil, fmt.Errorf("level is not active: %w", common.ErrBadRequest)
	}

	submission := &model.Submission{
		ID:      uuid.NewString(),
		UserID:  userID,
		LevelID: level.ID,
		Code:    req.Code,
		Status:  model.SubmissionPending,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.submissionRepo.CreateSubmission(ctx, tx, submission); err != nil {
		return nil, common.Errorf("failed to create submission: %w", err)
	}

	job, err := s.jobService.EnqueueEvaluationJob(ctx, tx, submission.ID)
	if err != nil {
		return nil, common.Errorf("failed to enqueue evaluation job: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}

	submission.Status = model.SubmissionInQueue
	log.Printf("Submission %s created and job %s enqueued.", submission.ID, job.ID)
	return submission, nil
}

// GetSubmission returns one submission with per-test-case results. Owners
// only; anyone else gets ErrForbidden.
func (s *SubmissionService) GetSubmission(ctx context.Context, userID, submissionID string) (*model.Submission, error) {
	sub, err := s.submissionRepo.GetSubmissionByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.UserID != userID {
		return nil, fmt.Errorf("submission belongs to another user: %w", common.ErrForbidden)
	}

	results, err := s.submissionRepo.GetSubmissionTestResults(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	sub.TestResults = results
	return sub, nil
}

// ListMySubmissions returns the caller's own history, newest first.
func (s *SubmissionService) ListMySubmissions(ctx context.Context, userID string, limit, offset int) ([]model.Submission, int, error) {
	return s.submissionRepo.GetSubmissionsByUser(ctx, userID, limit, offset)
}
