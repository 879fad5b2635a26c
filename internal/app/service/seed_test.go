package service

import (
	"testing"

	"reelcode/internal/domain/model"
)

func TestDefaultLevelCatalog(t *testing.T) {
	t.Parallel()

	catalog := defaultLevelCatalog()
	if len(catalog) != 3 {
		t.Fatalf("catalog size = %d, want 3", len(catalog))
	}

	wantOrder := []model.LevelDifficulty{model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard}
	for i, lvl := range catalog {
		if lvl.Difficulty != wantOrder[i] {
			t.Errorf("level %d difficulty = %q, want %q", i, lvl.Difficulty, wantOrder[i])
		}
		if lvl.Title == "" || lvl.MovieReference == "" || lvl.InitialCode == "" {
			t.Errorf("level %d is missing title, movie reference or starter code", i)
		}
		if len(lvl.TestCases) < 2 {
			t.Errorf("level %d has %d test cases, want at least 2", i, len(lvl.TestCases))
		}
		for j, tc := range lvl.TestCases {
			if tc.ExpectedOutput == "" {
				t.Errorf("level %d test case %d has no expected output", i, j)
			}
		}
	}

	// The first puzzle's vectors drive the executor contract.
	first := catalog[0].TestCases
	if first[0].Input != "hello" || first[0].ExpectedOutput != "h\ne\nl\nl\no" {
		t.Errorf("unexpected first vector: %+v", first[0])
	}
}
