package model

type LeaderboardEntry struct {
	Rank         int    `json:"rank"`
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	Points       int    `json:"points"`
	LevelsSolved int    `json:"levels_solved"`
}
