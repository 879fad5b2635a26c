package model

import "time"

type LevelDifficulty string
type LevelStatus string

const (
	DifficultyEasy   LevelDifficulty = "easy"
	DifficultyMedium LevelDifficulty = "medium"
	DifficultyHard   LevelDifficulty = "hard"

	LevelStatusWaiting   LevelStatus = "waiting"
	LevelStatusActive    LevelStatus = "active"
	LevelStatusCompleted LevelStatus = "completed"
)

type Level struct {
	ID             string          `json:"id"`
	RoomID         string          `json:"room_id"`
	Title          string          `json:"title"`
	Slug           string          `json:"slug"`
	Description    string          `json:"description"`
	InitialCode    string          `json:"initial_code"`
	MovieReference string          `json:"movie_reference"`
	Difficulty     LevelDifficulty `json:"difficulty"`
	Points         int             `json:"points"`
	SortOrder      int             `json:"sort_order"`
	Status         LevelStatus     `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	TestCases      []TestCase      `json:"test_cases,omitempty"`
}

// TestCase holds one literal input/expected pair for a level. Test vectors
// are shown to players, so nothing here is hidden.
type TestCase struct {
	ID             string    `json:"id"`
	LevelID        string    `json:"level_id"`
	Input          string    `json:"input"`
	ExpectedOutput string    `json:"expected_output"`
	Description    string    `json:"description"`
	SortOrder      int       `json:"sort_order"`
	CreatedAt      time.Time `json:"created_at"`
}

// PointsForDifficulty maps a level's difficulty to the points awarded for
// solving it.
func PointsForDifficulty(d LevelDifficulty) int {
	switch d {
	case DifficultyMedium:
		return 200
	case DifficultyHard:
		return 300
	default:
		return 100
	}
}
