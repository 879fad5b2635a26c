package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"reelcode/internal/common"
	"reelcode/internal/domain/model"
)

type LevelRepository interface {
	CreateLevel(ctx context.Context, tx *sql.Tx, level *model.Level) error
	AddTestCases(ctx context.Context, tx *sql.Tx, levelID string, testCases []model.TestCase) error
	FindLevelByID(ctx context.Context, id string) (*model.Level, error)
	GetLevelsByRoomID(ctx context.Context, roomID string) ([]model.Level, error)
	GetTestCasesByLevelID(ctx context.Context, levelID string) ([]model.TestCase, error)
	UpdateLevelStatus(ctx context.Context, tx *sql.Tx, levelID string, status model.LevelStatus) error
}

type pgLevelRepository struct {
	db *sql.DB
}

func NewPgLevelRepository(db *sql.DB) LevelRepository {
	return &pgLevelRepository{db: db}
}

func (r *pgLevelRepository) CreateLevel(ctx context.Context, tx *sql.Tx, l *model.Level) error {
	query := `INSERT INTO levels (id, room_id, title, slug, description, initial_code, movie_reference, difficulty, points, sort_order, status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, l.ID, l.RoomID, l.Title, l.Slug, l.Description, l.InitialCode, l.MovieReference, l.Difficulty, l.Points, l.SortOrder, l.Status)
	} else {
		_, err = r.db.ExecContext(ctx, query, l.ID, l.RoomID, l.Title, l.Slug, l.Description, l.InitialCode, l.MovieReference, l.Difficulty, l.Points, l.SortOrder, l.Status)
	}
	if err != nil {
		return fmt.Errorf("pgLevelRepository.CreateLevel: %w", err)
	}
	return nil
}

func (r *pgLevelRepository) AddTestCases(ctx context.Context, tx *sql.Tx, levelID string, testCases []model.TestCase) error {
	if len(testCases) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO level_test_cases (id, level_id, input, expected_output, description, sort_order) VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return fmt.Errorf("pgLevelRepository.AddTestCases prepare: %w", err)
	}
	defer stmt.Close()

	for i, tc := range testCases {
		tc.SortOrder = i + 1 // Auto-assign sort order
		_, err := stmt.ExecContext(ctx, tc.ID, levelID, tc.Input, tc.ExpectedOutput, tc.Description, tc.SortOrder)
		if err != nil {
			return fmt.Errorf("pgLevelRepository.AddTestCases exec for test case %s: %w", tc.ID, err)
		}
	}
	return nil
}

const levelColumns = `id, room_id, title, slug, description, initial_code, movie_reference, difficulty, points, sort_order, status, created_at, updated_at`

func (r *pgLevelRepository) FindLevelByID(ctx context.Context, id string) (*model.Level, error) {
	query := `SELECT ` + levelColumns + ` FROM levels WHERE id = $1`
	level := &model.Level{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&level.ID, &level.RoomID, &level.Title, &level.Slug, &level.Description,
		&level.InitialCode, &level.MovieReference, &level.Difficulty, &level.Points,
		&level.SortOrder, &level.Status, &level.CreatedAt, &level.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgLevelRepository.FindLevelByID: %w", err)
	}
	return level, nil
}

func (r *pgLevelRepository) GetLevelsByRoomID(ctx context.Context, roomID string) ([]model.Level, error) {
	query := `SELECT ` + levelColumns + ` FROM levels WHERE room_id = $1 ORDER BY sort_order ASC`
	rows, err := r.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("pgLevelRepository.GetLevelsByRoomID query: %w", err)
	}
	defer rows.Close()

	var levels []model.Level
	for rows.Next() {
		var l model.Level
		if err := rows.Scan(&l.ID, &l.RoomID, &l.Title, &l.Slug, &l.Description,
			&l.InitialCode, &l.MovieReference, &l.Difficulty, &l.Points,
			&l.SortOrder, &l.Status, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgLevelRepository.GetLevelsByRoomID scan: %w", err)
		}
		levels = append(levels, l)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgLevelRepository.GetLevelsByRoomID rows.Err: %w", err)
	}
	return levels, nil
}

func (r *pgLevelRepository) GetTestCasesByLevelID(ctx context.Context, levelID string) ([]model.TestCase, error) {
	query := `SELECT id, level_id, input, expected_output, description, sort_order, created_at
	          FROM level_test_cases WHERE level_id = $1 ORDER BY sort_order ASC`
	rows, err := r.db.QueryContext(ctx, query, levelID)
	if err != nil {
		return nil, fmt.Errorf("pgLevelRepository.GetTestCasesByLevelID query: %w", err)
	}
	defer rows.Close()

	var testCases []model.TestCase
	for rows.Next() {
		var tc model.TestCase
		if err := rows.Scan(&tc.ID, &tc.LevelID, &tc.Input, &tc.ExpectedOutput, &tc.Description, &tc.SortOrder, &tc.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgLevelRepository.GetTestCasesByLevelID scan: %w", err)
		}
		testCases = append(testCases, tc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgLevelRepository.GetTestCasesByLevelID rows.Err: %w", err)
	}
	return testCases, nil
}

func (r *pgLevelRepository) UpdateLevelStatus(ctx context.Context, tx *sql.Tx, levelID string, status model.LevelStatus) error {
	query := `UPDATE levels SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, status, levelID)
	} else {
		_, err = r.db.ExecContext(ctx, query, status, levelID)
	}
	if err != nil {
		return fmt.Errorf("pgLevelRepository.UpdateLevelStatus: %w", err)
	}
	return nil
}
