package service

import (
	"context"
	"fmt"

	"reelcode/internal/common"
	"reelcode/internal/domain/model"
	"reelcode/internal/domain/repository"
)

type LeaderboardService struct {
	submissionRepo repository.SubmissionRepository
	roomRepo       repository.RoomRepository
}

func NewLeaderboardService(subRepo repository.SubmissionRepository, roomRepo repository.RoomRepository) *LeaderboardService {
	return &LeaderboardService{submissionRepo: subRepo, roomRepo: roomRepo}
}

func (s *LeaderboardService) Global(ctx context.Context, limit, offset int) ([]model.LeaderboardEntry, error) {
	return s.submissionRepo.GetLeaderboard(ctx, limit, offset)
}

// Room returns the per-room standings; participants only.
func (s *LeaderboardService) Room(ctx context.Context, userID, code string) ([]model.LeaderboardEntry, error) {
	room, err := s.roomRepo.FindRoomByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	ok, err := s.roomRepo.IsParticipant(ctx, room.ID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("user is not a participant of this room: %w", common.ErrForbidden)
	}
	return s.submissionRepo.GetRoomLeaderboard(ctx, room.ID)
}
