package service

import (
	"context"
	"fmt"

	"reelcode/internal/common"
	"reelcode/internal/domain/model"
	"reelcode/internal/domain/repository"
)

type LevelService struct {
	levelRepo repository.LevelRepository
	roomRepo  repository.RoomRepository
}

func NewLevelService(levelRepo repository.LevelRepository, roomRepo repository.RoomRepository) *LevelService {
	return &LevelService{levelRepo: levelRepo, roomRepo: roomRepo}
}

// GetRoomLevels returns a room's levels with their test cases. Participants
// only.
func (s *LevelService) GetRoomLevels(ctx context.Context, userID, code string) ([]model.Level, error) {
	room, err := s.roomRepo.FindRoomByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.requireParticipant(ctx, room.ID, userID); err != nil {
		return nil, err
	}

	levels, err := s.levelRepo.GetLevelsByRoomID(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	for i := range levels {
		testCases, err := s.levelRepo.GetTestCasesByLevelID(ctx, levels[i].ID)
		if err != nil {
			return nil, err
		}
		levels[i].TestCases = testCases
	}
	return levels, nil
}

// GetLevel returns one level, checking membership of the owning room.
func (s *LevelService) GetLevel(ctx context.Context, userID, levelID string) (*model.Level, error) {
	level, err := s.levelRepo.FindLevelByID(ctx, levelID)
	if err != nil {
		return nil, err
	}
	if err := s.requireParticipant(ctx, level.RoomID, userID); err != nil {
		return nil, err
	}

	testCases, err := s.levelRepo.GetTestCasesByLevelID(ctx, level.ID)
	if err != nil {
		return nil, err
	}
	level.TestCases = testCases
	return level, nil
}

func (s *LevelService) requireParticipant(ctx context.Context, roomID, userID string) error {
	ok, err := s.roomRepo.IsParticipant(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("user is not a participant of this room: %w", common.ErrForbidden)
	}
	return nil
}
