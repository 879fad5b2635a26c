package service

import "reelcode/internal/domain/model"

type seedTestCase struct {
	Input          string
	ExpectedOutput string
	Description    string
}

type seedLevel struct {
	Title          string
	Description    string
	InitialCode    string
	MovieReference string
	Difficulty     model.LevelDifficulty
	TestCases      []seedTestCase
}

// defaultLevelCatalog is the fixed puzzle set seeded into every new room,
// ordered easy to hard.
func defaultLevelCatalog() []seedLevel {
	return []seedLevel{
		{
			Title:          "Digital Rain",
			MovieReference: "The Matrix",
			Difficulty:     model.DifficultyEasy,
			Description: "The Matrix has you. Write a function that takes a word and " +
				"prints it as digital rain: every character on its own line.",
			InitialCode: "function digitalRain(word) {\n  // your code here\n}\n",
			TestCases: []seedTestCase{
				{Input: "hello", ExpectedOutput: "h\ne\nl\nl\no", Description: "plain word"},
				{Input: "neo", ExpectedOutput: "n\ne\no", Description: "the One"},
			},
		},
		{
			Title:          "Roar Cipher",
			MovieReference: "Jurassic Park",
			Difficulty:     model.DifficultyMedium,
			Description: "Dennis Nedry locked the park systems behind a reversed " +
				"passphrase. Write a function that returns its input reversed.",
			InitialCode: "function roarCipher(phrase) {\n  // your code here\n}\n",
			TestCases: []seedTestCase{
				{Input: "clever girl", ExpectedOutput: "lrig revelc", Description: "raptor wisdom"},
				{Input: "hold onto your butts", ExpectedOutput: "sttub ruoy otno dloh", Description: "famous last words"},
			},
		},
		{
			Title:          "Infinity Sum",
			MovieReference: "Avengers",
			Difficulty:     model.DifficultyHard,
			Description: "Thanos scattered the stones' power values across a " +
				"space-separated list. Write a function that returns their sum.",
			InitialCode: "function infinitySum(stones) {\n  // your code here\n}\n",
			TestCases: []seedTestCase{
				{Input: "1 2 3", ExpectedOutput: "6", Description: "three stones"},
				{Input: "10 -4 6 0", ExpectedOutput: "12", Description: "negative power"},
				{Input: "100", ExpectedOutput: "100", Description: "single stone"},
			},
		},
	}
}
