package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"reelcode/internal/common"
	"reelcode/internal/domain/model"
)

type EvaluationJobRepository interface {
	CreateJob(ctx context.Context, tx *sql.Tx, job *model.EvaluationJob) error
	GetJobByID(ctx context.Context, id string) (*model.EvaluationJob, error)
	UpdateJobStatus(ctx context.Context, tx *sql.Tx, jobID, status string, lastError *string) error
}

type pgEvaluationJobRepository struct {
	db *sql.DB
}

func NewPgEvaluationJobRepository(db *sql.DB) EvaluationJobRepository {
	return &pgEvaluationJobRepository{db: db}
}

func (r *pgEvaluationJobRepository) CreateJob(ctx context.Context, tx *sql.Tx, job *model.EvaluationJob) error {
	query := `INSERT INTO evaluation_jobs (id, submission_id, status) VALUES ($1, $2, $3)`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, job.ID, job.SubmissionID, job.Status)
	} else {
		_, err = r.db.ExecContext(ctx, query, job.ID, job.SubmissionID, job.Status)
	}
	if err != nil {
		return fmt.Errorf("pgEvaluationJobRepository.CreateJob: %w", err)
	}
	return nil
}

func (r *pgEvaluationJobRepository) GetJobByID(ctx context.Context, id string) (*model.EvaluationJob, error) {
	query := `SELECT id, submission_id, status, attempts, last_error, created_at, updated_at
	          FROM evaluation_jobs WHERE id = $1`
	job := &model.EvaluationJob{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID, &job.SubmissionID, &job.Status, &job.Attempts, &job.LastError,
		&job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgEvaluationJobRepository.GetJobByID: %w", err)
	}
	return job, nil
}

func (r *pgEvaluationJobRepository) UpdateJobStatus(ctx context.Context, tx *sql.Tx, jobID, status string, lastError *string) error {
	query := `UPDATE evaluation_jobs
	          SET status = $1, last_error = $2, attempts = attempts + 1, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $3`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, status, lastError, jobID)
	} else {
		_, err = r.db.ExecContext(ctx, query, status, lastError, jobID)
	}
	if err != nil {
		return fmt.Errorf("pgEvaluationJobRepository.UpdateJobStatus: %w", err)
	}
	return nil
}
