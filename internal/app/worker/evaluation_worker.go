package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"reelcode/internal/common"
	"reelcode/internal/domain/model"
	"reelcode/internal/domain/repository"
	"reelcode/internal/platform/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EvaluationWorker drains the Redis queue and hands submissions to the
// external sandboxed executor. Submitted code is never run in this process.
type EvaluationWorker struct {
	rdb            *redis.Client
	jobRepo        repository.EvaluationJobRepository
	levelRepo      repository.LevelRepository
	submissionRepo repository.SubmissionRepository
	httpClient     *http.Client
}

func NewEvaluationWorker(rdb *redis.Client, jobRepo repository.EvaluationJobRepository, levelRepo repository.LevelRepository, subRepo repository.SubmissionRepository) *EvaluationWorker {
	return &EvaluationWorker{
		rdb:            rdb,
		jobRepo:        jobRepo,
		levelRepo:      levelRepo,
		submissionRepo: subRepo,
		httpClient:     &http.Client{Timeout: 15 * time.Second},
	}
}

// ExecutorRequest is the wire contract with the external executor service.
// The executor runs the code against each test case inside its sandbox and
// reports results to WebhookURL.
type ExecutorRequest struct {
	JobID          string             `json:"job_id"`
	Code           string             `json:"code"`
	TestCases      []ExecutorTestCase `json:"test_cases"`
	RuntimeLimitMs int                `json:"runtime_limit_ms"`
	MemoryLimitKb  int                `json:"memory_limit_kb"`
	WebhookURL     string             `json:"webhook_url"`
}

type ExecutorTestCase struct {
	ID             string `json:"id"`
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
}

func (w *EvaluationWorker) Start(ctx context.Context) {
	log.Println("Evaluation worker started, listening to queue:", config.AppConfig.EvaluationQueueName)
	for {
		select {
		case <-ctx.Done():
			log.Println("Evaluation worker stopping...")
			return
		default:
			result, err := w.rdb.BRPop(ctx, 0*time.Second, config.AppConfig.EvaluationQueueName).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					log.Printf("Worker BRPop exiting or timed out: %v", err)
					time.Sleep(1 * time.Second)
					continue
				}
				log.Printf("ERROR: Failed to BRPop from Redis queue '%s': %v", config.AppConfig.EvaluationQueueName, err)
				time.Sleep(5 * time.Second)
				continue
			}

			// result is [queueName, value]
			if len(result) < 2 || result[1] == "" {
				log.Println("WARN: BRPop returned empty job ID.")
				continue
			}
			jobID := result[1]
			log.Printf("Worker picked up job ID: %s", jobID)
			w.processJobWithLock(ctx, jobID)
		}
	}
}

// processJobWithLock serializes job dispatch across workers with a SETNX
// lock, released with a compare-and-delete so an expired lock taken by
// another worker is never deleted.
func (w *EvaluationWorker) processJobWithLock(ctx context.Context, jobID string) {
	lockValue := uuid.NewString()
	lockTTL := time.Duration(config.AppConfig.EvaluationLockTTLSecs) * time.Second

	ok, err := w.rdb.SetNX(ctx, config.AppConfig.EvaluationLockKey, lockValue, lockTTL).Result()
	if err != nil {
		log.Printf("ERROR: Failed to attempt lock acquisition for job %s: %v", jobID, err)
		w.requeueJob(ctx, jobID)
		return
	}
	if !ok {
		log.Printf("INFO: Could not acquire evaluation lock for job %s, another worker is busy. Re-queueing.", jobID)
		w.requeueJob(ctx, jobID)
		return
	}

	defer func() {
		script := redis.NewScript(`
            if redis.call("get", KEYS[1]) == ARGV[1] then
                return redis.call("del", KEYS[1])
            else
                return 0
            end
        `)
		deleted, err := script.Run(ctx, w.rdb, []string{config.AppConfig.EvaluationLockKey}, lockValue).Result()
		if err != nil {
			log.Printf("ERROR: Failed to release lock for job %s: %v", jobID, err)
		} else if deleted.(int64) != 1 {
			log.Printf("WARN: Did not release lock for job %s; it might have expired.", jobID)
		}
	}()

	w.handleJob(ctx, jobID)
}

func (w *EvaluationWorker) requeueJob(ctx context.Context, jobID string) {
	if err := w.rdb.RPush(ctx, config.AppConfig.EvaluationQueueName, jobID).Err(); err != nil {
		log.Printf("ERROR: Failed to re-queue job %s: %v", jobID, err)
	} else {
		log.Printf("INFO: Job %s re-queued.", jobID)
	}
}

// jobNotVisibleYet reports whether a job fetch failed because the row does
// not exist. The job id reaches Redis before the enqueuing transaction
// commits, so a fresh job can be popped before its row is readable; that is
// transient, not a lost job.
func jobNotVisibleYet(err error) bool {
	return errors.Is(err, common.ErrNotFound)
}

func (w *EvaluationWorker) handleJob(ctx context.Context, jobID string) {
	job, err := w.jobRepo.GetJobByID(ctx, jobID)
	if err != nil {
		if jobNotVisibleYet(err) {
			log.Printf("WARN: Job %s not in DB yet, re-queueing.", jobID)
			time.Sleep(500 * time.Millisecond)
			w.requeueJob(ctx, jobID)
			return
		}
		log.Printf("ERROR: Failed to fetch job %s from DB: %v", jobID, err)
		return
	}

	if err := w.jobRepo.UpdateJobStatus(ctx, nil, job.ID, model.JobStatusProcessing, nil); err != nil {
		log.Printf("ERROR: Failed to update job %s status to Processing: %v", job.ID, err)
	}

	submission, err := w.submissionRepo.GetSubmissionByID(ctx, job.SubmissionID)
	if err != nil {
		w.failJob(ctx, job, fmt.Sprintf("Failed to fetch submission %s: %v", job.SubmissionID, err))
		return
	}
	level, err := w.levelRepo.FindLevelByID(ctx, submission.LevelID)
	if err != nil {
		w.failJob(ctx, job, fmt.Sprintf("Failed to fetch level %s for submission %s: %v", submission.LevelID, submission.ID, err))
		return
	}
	testCases, err := w.levelRepo.GetTestCasesByLevelID(ctx, level.ID)
	if err != nil || len(testCases) == 0 {
		w.failJob(ctx, job, fmt.Sprintf("Failed to fetch test cases for level %s or none found: %v", level.ID, err))
		return
	}

	req := ExecutorRequest{
		JobID:          job.ID,
		Code:           submission.Code,
		RuntimeLimitMs: config.AppConfig.DefaultRuntimeLimitMs,
		MemoryLimitKb:  config.AppConfig.DefaultMemoryLimitKb,
		WebhookURL:     config.AppConfig.ExecutorWebhookURL,
	}
	for _, tc := range testCases {
		req.TestCases = append(req.TestCases, ExecutorTestCase{ID: tc.ID, Input: tc.Input, ExpectedOutput: tc.ExpectedOutput})
	}

	if err := w.sendToExecutor(ctx, req); err != nil {
		w.failJob(ctx, job, fmt.Sprintf("Failed to send job %s to executor: %v", job.ID, err))
		return
	}

	if err := w.jobRepo.UpdateJobStatus(ctx, nil, job.ID, model.JobStatusSentToExecutor, nil); err != nil {
		log.Printf("ERROR: Failed to update job %s status to sent_to_executor: %v", job.ID, err)
	}
	log.Printf("INFO: Job %s successfully sent to executor.", job.ID)
}

func (w *EvaluationWorker) failJob(ctx context.Context, job *model.EvaluationJob, errMsg string) {
	log.Printf("ERROR: %s (Job ID: %s)", errMsg, job.ID)
	if err := w.jobRepo.UpdateJobStatus(ctx, nil, job.ID, model.JobStatusFailed, &errMsg); err != nil {
		log.Printf("ERROR: Failed to update job %s status to failed: %v", job.ID, err)
	}
	if err := w.submissionRepo.UpdateSubmissionVerdict(ctx, nil, job.SubmissionID, model.SubmissionSystemError, 0); err != nil {
		log.Printf("ERROR: Failed to update submission %s status to system_error: %v", job.SubmissionID, err)
	}
}

func (w *EvaluationWorker) sendToExecutor(ctx context.Context, req ExecutorRequest) error {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal executor request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, config.AppConfig.ExecutorURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create executor request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("executor call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("executor returned status %d", resp.StatusCode)
	}
	return nil
}
