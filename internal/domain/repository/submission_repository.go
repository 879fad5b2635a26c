package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"reelcode/internal/common"
	"reelcode/internal/domain/model"
)

type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, tx *sql.Tx, sub *model.Submission) error
	GetSubmissionByID(ctx context.Context, id string) (*model.Submission, error)
	UpdateSubmissionVerdict(ctx context.Context, tx *sql.Tx, submissionID string, status model.SubmissionStatus, points int) error
	CreateSubmissionTestResults(ctx context.Context, tx *sql.Tx, results []model.SubmissionTestResult) error
	GetSubmissionTestResults(ctx context.Context, submissionID string) ([]model.SubmissionTestResult, error)
	GetSubmissionsByUser(ctx context.Context, userID string, limit, offset int) ([]model.Submission, int, error)
	GetLeaderboard(ctx context.Context, limit, offset int) ([]model.LeaderboardEntry, error)
	GetRoomLeaderboard(ctx context.Context, roomID string) ([]model.LeaderboardEntry, error)
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) CreateSubmission(ctx context.Context, tx *sql.Tx, sub *model.Submission) error {
	query := `INSERT INTO submissions (id, user_id, level_id, code, status)
	          VALUES ($1, $2, $3, $4, $5)`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, sub.ID, sub.UserID, sub.LevelID, sub.Code, sub.Status)
	} else {
		_, err = r.db.ExecContext(ctx, query, sub.ID, sub.UserID, sub.LevelID, sub.Code, sub.Status)
	}
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.CreateSubmission: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) GetSubmissionByID(ctx context.Context, id string) (*model.Submission, error) {
	query := `
		SELECT s.id, s.user_id, s.level_id, s.code, s.status, s.points, s.submitted_at, s.updated_at,
		       u.username, l.title
		FROM submissions s
		JOIN users u ON s.user_id = u.id
		JOIN levels l ON s.level_id = l.id
		WHERE s.id = $1`
	sub := &model.Submission{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&sub.ID, &sub.UserID, &sub.LevelID, &sub.Code, &sub.Status, &sub.Points,
		&sub.SubmittedAt, &sub.UpdatedAt, &sub.UserUsername, &sub.LevelTitle,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubmissionRepository.GetSubmissionByID: %w", err)
	}
	return sub, nil
}

// UpdateSubmissionVerdict is the only write path for an existing submission;
// rows are otherwise append-only.
func (r *pgSubmissionRepository) UpdateSubmissionVerdict(ctx context.Context, tx *sql.Tx, submissionID string, status model.SubmissionStatus, points int) error {
	query := `UPDATE submissions SET status = $1, points = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $3`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, status, points, submissionID)
	} else {
		_, err = r.db.ExecContext(ctx, query, status, points, submissionID)
	}
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.UpdateSubmissionVerdict: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) CreateSubmissionTestResults(ctx context.Context, tx *sql.Tx, results []model.SubmissionTestResult) error {
	if len(results) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO submission_test_results (id, submission_id, test_case_id, actual_output, status, execution_time_ms)
	                                     VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.CreateSubmissionTestResults prepare: %w", err)
	}
	defer stmt.Close()

	for _, res := range results {
		_, err := stmt.ExecContext(ctx, res.ID, res.SubmissionID, res.TestCaseID, res.ActualOutput, res.Status, res.ExecutionTimeMs)
		if err != nil {
			return fmt.Errorf("pgSubmissionRepository.CreateSubmissionTestResults exec for result %s: %w", res.ID, err)
		}
	}
	return nil
}

func (r *pgSubmissionRepository) GetSubmissionTestResults(ctx context.Context, submissionID string) ([]model.SubmissionTestResult, error) {
	query := `SELECT id, submission_id, test_case_id, actual_output, status, execution_time_ms, created_at
	          FROM submission_test_results WHERE submission_id = $1 ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, submissionID)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.GetSubmissionTestResults query: %w", err)
	}
	defer rows.Close()

	var results []model.SubmissionTestResult
	for rows.Next() {
		var res model.SubmissionTestResult
		if err := rows.Scan(&res.ID, &res.SubmissionID, &res.TestCaseID, &res.ActualOutput, &res.Status, &res.ExecutionTimeMs, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.GetSubmissionTestResults scan: %w", err)
		}
		results = append(results, res)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.GetSubmissionTestResults rows.Err: %w", err)
	}
	return results, nil
}

func (r *pgSubmissionRepository) GetSubmissionsByUser(ctx context.Context, userID string, limit, offset int) ([]model.Submission, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgSubmissionRepository.GetSubmissionsByUser count: %w", err)
	}

	query := `
		SELECT s.id, s.user_id, s.level_id, s.code, s.status, s.points, s.submitted_at, s.updated_at, l.title
		FROM submissions s
		JOIN levels l ON s.level_id = l.id
		WHERE s.user_id = $1
		ORDER BY s.submitted_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pgSubmissionRepository.GetSubmissionsByUser query: %w", err)
	}
	defer rows.Close()

	subs := []model.Submission{}
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(&s.ID, &s.UserID, &s.LevelID, &s.Code, &s.Status, &s.Points,
			&s.SubmittedAt, &s.UpdatedAt, &s.LevelTitle); err != nil {
			return nil, 0, fmt.Errorf("pgSubmissionRepository.GetSubmissionsByUser scan: %w", err)
		}
		subs = append(subs, s)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgSubmissionRepository.GetSubmissionsByUser rows.Err: %w", err)
	}
	return subs, total, nil
}

func (r *pgSubmissionRepository) GetLeaderboard(ctx context.Context, limit, offset int) ([]model.LeaderboardEntry, error) {
	query := `
		SELECT u.id, u.username, u.points,
		       (SELECT COUNT(DISTINCT s.level_id) FROM submissions s
		        WHERE s.user_id = u.id AND s.status = 'completed') as levels_solved
		FROM users u
		ORDER BY u.points DESC, u.username ASC
		LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.GetLeaderboard query: %w", err)
	}
	defer rows.Close()

	var entries []model.LeaderboardEntry
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.Points, &e.LevelsSolved); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.GetLeaderboard scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.GetLeaderboard rows.Err: %w", err)
	}
	for i := range entries {
		entries[i].Rank = offset + i + 1
	}
	return entries, nil
}

func (r *pgSubmissionRepository) GetRoomLeaderboard(ctx context.Context, roomID string) ([]model.LeaderboardEntry, error) {
	query := `
		SELECT u.id, u.username,
		       COALESCE(SUM(s.points), 0) as points,
		       COUNT(DISTINCT s.level_id) FILTER (WHERE s.status = 'completed') as levels_solved
		FROM room_participants rp
		JOIN users u ON rp.user_id = u.id
		LEFT JOIN submissions s ON s.user_id = u.id
		     AND s.level_id IN (SELECT id FROM levels WHERE room_id = $1)
		     AND s.status = 'completed'
		WHERE rp.room_id = $1
		GROUP BY u.id, u.username
		ORDER BY points DESC, u.username ASC`
	rows, err := r.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.GetRoomLeaderboard query: %w", err)
	}
	defer rows.Close()

	var entries []model.LeaderboardEntry
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.Points, &e.LevelsSolved); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.GetRoomLeaderboard scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.GetRoomLeaderboard rows.Err: %w", err)
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
