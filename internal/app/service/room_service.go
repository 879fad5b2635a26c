package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math/big"

	"reelcode/internal/common"
	"reelcode/internal/domain/model"
	"reelcode/internal/domain/repository"
	"reelcode/internal/platform/config"
	"reelcode/internal/realtime"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// Ambiguous characters (0/O, 1/I) are left out so codes survive being read
// aloud or scribbled on a whiteboard.
const roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const createRoomMaxRetries = 3

type RoomService struct {
	roomRepo  repository.RoomRepository
	levelRepo repository.LevelRepository
	publisher realtime.Publisher
	db        *sql.DB // For transactions
}

func NewRoomService(
	roomRepo repository.RoomRepository,
	levelRepo repository.LevelRepository,
	publisher realtime.Publisher,
	db *sql.DB,
) *RoomService {
	return &RoomService{
		roomRepo:  roomRepo,
		levelRepo: levelRepo,
		publisher: publisher,
		db:        db,
	}
}

type CreateRoomRequest struct {
	Name string `json:"name"`
}

// GenerateRoomCode returns a random join code of length n.
func GenerateRoomCode(n int) (string, error) {
	code := make([]byte, n)
	max := big.NewInt(int64(len(roomCodeAlphabet)))
	for i := range code {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate room code: %w", err)
		}
		code[i] = roomCodeAlphabet[idx.Int64()]
	}
	return string(code), nil
}

// CreateRoom creates the room and its seeded level set in one transaction, so
// a failure partway leaves nothing behind.
func (s *RoomService) CreateRoom(ctx context.Context, userID string, req CreateRoomRequest) (*model.Room, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("room name is required: %w", common.ErrValidation)
	}

	var lastErr error
	for attempt := 0; attempt < createRoomMaxRetries; attempt++ {
		code, err := GenerateRoomCode(config.AppConfig.RoomCodeLength)
		if err != nil {
			return nil, err
		}
		room, err := s.createRoomWithCode(ctx, userID, req.Name, code)
		if err != nil {
			// Code collision: roll the dice again.
			if errors.Is(err, common.ErrConflict) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return room, nil
	}
	return nil, common.Errorf("could not allocate a unique room code: %w", lastErr)
}

func (s *RoomService) createRoomWithCode(ctx context.Context, userID, name, code string) (*model.Room, error) {
	room := &model.Room{
		ID:          uuid.NewString(),
		Code:        code,
		Name:        name,
		Status:      model.RoomStatusWaiting,
		CreatedByID: userID,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.roomRepo.CreateRoom(ctx, tx, room); err != nil {
		return nil, err
	}

	for i, seed := range defaultLevelCatalog() {
		level := &model.Level{
			ID:             uuid.NewString(),
			RoomID:         room.ID,
			Title:          seed.Title,
			Slug:           slug.Make(seed.Title),
			Description:    seed.Description,
			InitialCode:    seed.InitialCode,
			MovieReference: seed.MovieReference,
			Difficulty:     seed.Difficulty,
			Points:         model.PointsForDifficulty(seed.Difficulty),
			SortOrder:      i + 1,
			Status:         model.LevelStatusWaiting,
		}
		if err := s.levelRepo.CreateLevel(ctx, tx, level); err != nil {
			return nil, common.Errorf("failed to seed level %q: %w", seed.Title, err)
		}

		testCases := make([]model.TestCase, 0, len(seed.TestCases))
		for j, tc := range seed.TestCases {
			testCases = append(testCases, model.TestCase{
				ID:             uuid.NewString(),
				LevelID:        level.ID,
				Input:          tc.Input,
				ExpectedOutput: tc.ExpectedOutput,
				Description:    tc.Description,
				SortOrder:      j + 1,
			})
		}
		if err := s.levelRepo.AddTestCases(ctx, tx, level.ID, testCases); err != nil {
			return nil, common.Errorf("failed to seed test cases for level %q: %w", seed.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit room creation: %w", err)
	}

	log.Printf("Room %s created with code %s by user %s", room.ID, room.Code, userID)
	return room, nil
}

func (s *RoomService) ListRooms(ctx context.Context, limit, offset int) ([]model.Room, int, error) {
	return s.roomRepo.ListRooms(ctx, limit, offset)
}

func (s *RoomService) GetRoomByCode(ctx context.Context, code string) (*model.Room, error) {
	return s.roomRepo.FindRoomByCode(ctx, code)
}

// JoinRoom adds the caller to the room. Only the caller's own identity can be
// inserted, and a second join of the same room is a conflict.
func (s *RoomService) JoinRoom(ctx context.Context, userID, code string) (*model.RoomParticipant, error) {
	room, err := s.roomRepo.FindRoomByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	participant := &model.RoomParticipant{
		ID:     uuid.NewString(),
		RoomID: room.ID,
		UserID: userID,
	}
	if err := s.roomRepo.AddParticipant(ctx, participant); err != nil {
		return nil, err
	}

	s.publish(ctx, realtime.Event{
		Type:    realtime.EventParticipantJoined,
		RoomID:  room.ID,
		Payload: map[string]string{"user_id": userID},
	})
	return participant, nil
}

// GetParticipants lists a room's members. Visibility requires membership: a
// caller who never joined the room gets ErrForbidden regardless of the room.
func (s *RoomService) GetParticipants(ctx context.Context, userID, code string) ([]model.RoomParticipant, error) {
	room, err := s.roomRepo.FindRoomByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.requireParticipant(ctx, room.ID, userID); err != nil {
		return nil, err
	}
	return s.roomRepo.ListParticipants(ctx, room.ID)
}

// nextLevelToActivate picks the level an activation should promote: none if a
// level is already active, otherwise the waiting level with the lowest sort
// order. Applying it repeatedly can never yield two active levels.
func nextLevelToActivate(levels []model.Level) *model.Level {
	var next *model.Level
	for i := range levels {
		switch levels[i].Status {
		case model.LevelStatusActive:
			return nil
		case model.LevelStatusWaiting:
			if next == nil || levels[i].SortOrder < next.SortOrder {
				next = &levels[i]
			}
		}
	}
	return next
}

// Activate flips the room to active and guarantees exactly one active level.
// Creator only.
func (s *RoomService) Activate(ctx context.Context, userID, code string) (*model.Room, error) {
	room, err := s.roomRepo.FindRoomByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.CreatedByID != userID {
		return nil, fmt.Errorf("only the room creator can change room status: %w", common.ErrForbidden)
	}

	levels, err := s.levelRepo.GetLevelsByRoomID(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	next := nextLevelToActivate(levels)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.roomRepo.UpdateRoomStatus(ctx, tx, room.ID, model.RoomStatusActive); err != nil {
		return nil, err
	}
	if next != nil {
		if err := s.levelRepo.UpdateLevelStatus(ctx, tx, next.ID, model.LevelStatusActive); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit room activation: %w", err)
	}

	room.Status = model.RoomStatusActive
	s.publish(ctx, realtime.Event{Type: realtime.EventRoomActivated, RoomID: room.ID})
	if next != nil {
		s.publish(ctx, realtime.Event{
			Type:    realtime.EventLevelActivated,
			RoomID:  room.ID,
			Payload: map[string]string{"level_id": next.ID, "title": next.Title},
		})
	}
	return room, nil
}

// Deactivate puts the room back to waiting. Level statuses are untouched; a
// later Activate resumes the level that was already in flight.
func (s *RoomService) Deactivate(ctx context.Context, userID, code string) (*model.Room, error) {
	room, err := s.roomRepo.FindRoomByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.CreatedByID != userID {
		return nil, fmt.Errorf("only the room creator can change room status: %w", common.ErrForbidden)
	}

	if err := s.roomRepo.UpdateRoomStatus(ctx, nil, room.ID, model.RoomStatusWaiting); err != nil {
		return nil, err
	}
	room.Status = model.RoomStatusWaiting
	s.publish(ctx, realtime.Event{Type: realtime.EventRoomDeactivated, RoomID: room.ID})
	return room, nil
}

// Advance completes the active level and promotes the next waiting one.
// Creator only; requires an active room.
func (s *RoomService) Advance(ctx context.Context, userID, code string) error {
	room, err := s.roomRepo.FindRoomByCode(ctx, code)
	if err != nil {
		return err
	}
	if room.CreatedByID != userID {
		return fmt.Errorf("only the room creator can advance levels: %w", common.ErrForbidden)
	}
	if room.Status != model.RoomStatusActive {
		return fmt.Errorf("room is not active: %w", common.ErrBadRequest)
	}

	levels, err := s.levelRepo.GetLevelsByRoomID(ctx, room.ID)
	if err != nil {
		return err
	}
	var current *model.Level
	for i := range levels {
		if levels[i].Status == model.LevelStatusActive {
			current = &levels[i]
			break
		}
	}
	if current == nil {
		return fmt.Errorf("room has no active level: %w", common.ErrBadRequest)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.levelRepo.UpdateLevelStatus(ctx, tx, current.ID, model.LevelStatusCompleted); err != nil {
		return err
	}

	var next *model.Level
	for i := range levels {
		if levels[i].Status == model.LevelStatusWaiting && levels[i].SortOrder > current.SortOrder {
			if next == nil || levels[i].SortOrder < next.SortOrder {
				next = &levels[i]
			}
		}
	}
	if next != nil {
		if err := s.levelRepo.UpdateLevelStatus(ctx, tx, next.ID, model.LevelStatusActive); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return common.Errorf("failed to commit level advance: %w", err)
	}

	s.publish(ctx, realtime.Event{
		Type:    realtime.EventLevelCompleted,
		RoomID:  room.ID,
		Payload: map[string]string{"level_id": current.ID},
	})
	if next != nil {
		s.publish(ctx, realtime.Event{
			Type:    realtime.EventLevelActivated,
			RoomID:  room.ID,
			Payload: map[string]string{"level_id": next.ID, "title": next.Title},
		})
	}
	return nil
}

// RequireMembership resolves a room by code and verifies the caller joined
// it. Used by anything that gates on the closed-group visibility rule.
func (s *RoomService) RequireMembership(ctx context.Context, userID, code string) (*model.Room, error) {
	room, err := s.roomRepo.FindRoomByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.requireParticipant(ctx, room.ID, userID); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *RoomService) requireParticipant(ctx context.Context, roomID, userID string) error {
	ok, err := s.roomRepo.IsParticipant(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("user is not a participant of this room: %w", common.ErrForbidden)
	}
	return nil
}

func (s *RoomService) publish(ctx context.Context, event realtime.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("WARN: failed to publish %s event for room %s: %v", event.Type, event.RoomID, err)
	}
}
