package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"reelcode/internal/common"
	"reelcode/internal/domain/model"
)

type fakeLevelRepo struct {
	levels    map[string]*model.Level // keyed by ID
	testCases map[string][]model.TestCase
}

func newFakeLevelRepo() *fakeLevelRepo {
	return &fakeLevelRepo{
		levels:    make(map[string]*model.Level),
		testCases: make(map[string][]model.TestCase),
	}
}

func (f *fakeLevelRepo) CreateLevel(ctx context.Context, tx *sql.Tx, level *model.Level) error {
	f.levels[level.ID] = level
	return nil
}

func (f *fakeLevelRepo) AddTestCases(ctx context.Context, tx *sql.Tx, levelID string, tcs []model.TestCase) error {
	f.testCases[levelID] = append(f.testCases[levelID], tcs...)
	return nil
}

func (f *fakeLevelRepo) FindLevelByID(ctx context.Context, id string) (*model.Level, error) {
	l, ok := f.levels[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copy := *l
	return &copy, nil
}

func (f *fakeLevelRepo) GetLevelsByRoomID(ctx context.Context, roomID string) ([]model.Level, error) {
	var out []model.Level
	for _, l := range f.levels {
		if l.RoomID == roomID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeLevelRepo) GetTestCasesByLevelID(ctx context.Context, levelID string) ([]model.TestCase, error) {
	return f.testCases[levelID], nil
}

func (f *fakeLevelRepo) UpdateLevelStatus(ctx context.Context, tx *sql.Tx, levelID string, status model.LevelStatus) error {
	l, ok := f.levels[levelID]
	if !ok {
		return common.ErrNotFound
	}
	l.Status = status
	return nil
}

func TestGetLevelRequiresMembership(t *testing.T) {
	t.Parallel()

	roomRepo := newFakeRoomRepo()
	roomRepo.rooms["ABC234"] = &model.Room{ID: "room-1", Code: "ABC234"}
	roomRepo.participants["room-1"] = map[string]bool{"member": true}

	levelRepo := newFakeLevelRepo()
	levelRepo.levels["lvl-1"] = &model.Level{ID: "lvl-1", RoomID: "room-1", Title: "Digital Rain"}
	levelRepo.testCases["lvl-1"] = []model.TestCase{{ID: "tc-1", LevelID: "lvl-1", Input: "neo"}}

	svc := NewLevelService(levelRepo, roomRepo)

	level, err := svc.GetLevel(context.Background(), "member", "lvl-1")
	if err != nil {
		t.Fatalf("member read failed: %v", err)
	}
	if len(level.TestCases) != 1 {
		t.Errorf("test cases attached = %d, want 1", len(level.TestCases))
	}

	_, err = svc.GetLevel(context.Background(), "stranger", "lvl-1")
	if !errors.Is(err, common.ErrForbidden) {
		t.Errorf("stranger read: err = %v, want ErrForbidden", err)
	}

	_, err = svc.GetLevel(context.Background(), "member", "missing")
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("missing level: err = %v, want ErrNotFound", err)
	}
}

func TestGetRoomLevelsRequiresMembership(t *testing.T) {
	t.Parallel()

	roomRepo := newFakeRoomRepo()
	roomRepo.rooms["ABC234"] = &model.Room{ID: "room-1", Code: "ABC234"}
	roomRepo.participants["room-1"] = map[string]bool{"member": true}

	levelRepo := newFakeLevelRepo()
	levelRepo.levels["lvl-1"] = &model.Level{ID: "lvl-1", RoomID: "room-1"}
	levelRepo.levels["lvl-2"] = &model.Level{ID: "lvl-2", RoomID: "room-1"}
	levelRepo.levels["other"] = &model.Level{ID: "other", RoomID: "room-2"}

	svc := NewLevelService(levelRepo, roomRepo)

	levels, err := svc.GetRoomLevels(context.Background(), "member", "ABC234")
	if err != nil {
		t.Fatalf("member read failed: %v", err)
	}
	if len(levels) != 2 {
		t.Errorf("levels = %d, want 2", len(levels))
	}

	_, err = svc.GetRoomLevels(context.Background(), "stranger", "ABC234")
	if !errors.Is(err, common.ErrForbidden) {
		t.Errorf("stranger read: err = %v, want ErrForbidden", err)
	}
}
