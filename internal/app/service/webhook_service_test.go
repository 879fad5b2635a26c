package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"reelcode/internal/common"
	"reelcode/internal/domain/model"
)

type fakeJobRepo struct {
	jobs map[string]*model.EvaluationJob
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[string]*model.EvaluationJob)}
}

func (f *fakeJobRepo) CreateJob(ctx context.Context, tx *sql.Tx, job *model.EvaluationJob) error {
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeJobRepo) GetJobByID(ctx context.Context, id string) (*model.EvaluationJob, error) {
	j, ok := f.jobs[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copy := *j
	return &copy, nil
}

func (f *fakeJobRepo) UpdateJobStatus(ctx context.Context, tx *sql.Tx, jobID, status string, lastError *string) error {
	j, ok := f.jobs[jobID]
	if !ok {
		return common.ErrNotFound
	}
	j.Status = status
	j.Attempts++
	j.LastError = lastError
	return nil
}

func TestVerdictFromResults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		results []TestCaseExecutionResult
		want    model.SubmissionStatus
	}{
		{
			name: "no results means the executor broke",
			want: model.SubmissionSystemError,
		},
		{
			name: "all passing",
			results: []TestCaseExecutionResult{
				{TestCaseID: "tc-1", Status: model.SubmissionCompleted},
				{TestCaseID: "tc-2", Status: model.SubmissionCompleted},
			},
			want: model.SubmissionCompleted,
		},
		{
			name: "one wrong answer fails the submission",
			results: []TestCaseExecutionResult{
				{TestCaseID: "tc-1", Status: model.SubmissionCompleted},
				{TestCaseID: "tc-2", Status: model.SubmissionWrongAnswer},
			},
			want: model.SubmissionWrongAnswer,
		},
		{
			name: "first failure status wins",
			results: []TestCaseExecutionResult{
				{TestCaseID: "tc-1", Status: model.SubmissionTimeLimit},
				{TestCaseID: "tc-2", Status: model.SubmissionWrongAnswer},
			},
			want: model.SubmissionTimeLimit,
		},
		{
			name: "runtime error surfaces",
			results: []TestCaseExecutionResult{
				{TestCaseID: "tc-1", Status: model.SubmissionRuntimeError},
			},
			want: model.SubmissionRuntimeError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := VerdictFromResults(tt.results); got != tt.want {
				t.Errorf("VerdictFromResults = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMarkJobFailed(t *testing.T) {
	t.Parallel()

	jobRepo := newFakeJobRepo()
	jobRepo.jobs["job-1"] = &model.EvaluationJob{ID: "job-1", SubmissionID: "sub-1", Status: model.JobStatusSentToExecutor}
	subRepo := newFakeSubmissionRepo()
	subRepo.submissions["sub-1"] = &model.Submission{ID: "sub-1", UserID: "user-1", Status: model.SubmissionProcessing}

	svc := NewWebhookService(subRepo, nil, nil, jobRepo, &fakePublisher{}, nil)

	if err := svc.MarkJobFailed(context.Background(), "job-1", "executor rejected payload"); err != nil {
		t.Fatalf("MarkJobFailed returned error: %v", err)
	}
	if got := jobRepo.jobs["job-1"].Status; got != model.JobStatusFailed {
		t.Errorf("job status = %q, want %q", got, model.JobStatusFailed)
	}
	if got := subRepo.submissions["sub-1"].Status; got != model.SubmissionSystemError {
		t.Errorf("submission status = %q, want %q", got, model.SubmissionSystemError)
	}

	if err := svc.MarkJobFailed(context.Background(), "missing", "whatever"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("unknown job: err = %v, want ErrNotFound", err)
	}
}

// A late failure callback for a finished job must not disturb the verdict
// that already landed.
func TestMarkJobFailedIgnoresFinishedJob(t *testing.T) {
	t.Parallel()

	jobRepo := newFakeJobRepo()
	jobRepo.jobs["job-1"] = &model.EvaluationJob{ID: "job-1", SubmissionID: "sub-1", Status: model.JobStatusCompleted}
	subRepo := newFakeSubmissionRepo()
	subRepo.submissions["sub-1"] = &model.Submission{ID: "sub-1", UserID: "user-1", Status: model.SubmissionCompleted}

	svc := NewWebhookService(subRepo, nil, nil, jobRepo, &fakePublisher{}, nil)

	if err := svc.MarkJobFailed(context.Background(), "job-1", "too late"); err != nil {
		t.Fatalf("MarkJobFailed returned error: %v", err)
	}
	if got := jobRepo.jobs["job-1"].Status; got != model.JobStatusCompleted {
		t.Errorf("job status = %q, want %q untouched", got, model.JobStatusCompleted)
	}
	if got := subRepo.submissions["sub-1"].Status; got != model.SubmissionCompleted {
		t.Errorf("submission verdict = %q, want %q untouched", got, model.SubmissionCompleted)
	}
}
