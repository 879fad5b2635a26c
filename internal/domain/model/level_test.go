package model

import "testing"

func TestPointsForDifficulty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		difficulty LevelDifficulty
		want       int
	}{
		{DifficultyEasy, 100},
		{DifficultyMedium, 200},
		{DifficultyHard, 300},
		{LevelDifficulty("unknown"), 100},
	}

	for _, tt := range tests {
		if got := PointsForDifficulty(tt.difficulty); got != tt.want {
			t.Errorf("PointsForDifficulty(%q) = %d, want %d", tt.difficulty, got, tt.want)
		}
	}
}
