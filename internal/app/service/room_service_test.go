package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"reelcode/internal/common"
	"reelcode/internal/domain/model"
	"reelcode/internal/realtime"
)

type fakeRoomRepo struct {
	rooms        map[string]*model.Room // keyed by code
	participants map[string]map[string]bool
	addErr       error
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{
		rooms:        make(map[string]*model.Room),
		participants: make(map[string]map[string]bool),
	}
}

func (f *fakeRoomRepo) CreateRoom(ctx context.Context, tx *sql.Tx, room *model.Room) error {
	f.rooms[room.Code] = room
	return nil
}

func (f *fakeRoomRepo) FindRoomByID(ctx context.Context, id string) (*model.Room, error) {
	for _, r := range f.rooms {
		if r.ID == id {
			copy := *r
			return &copy, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeRoomRepo) FindRoomByCode(ctx context.Context, code string) (*model.Room, error) {
	r, ok := f.rooms[code]
	if !ok {
		return nil, common.ErrNotFound
	}
	copy := *r
	return &copy, nil
}

func (f *fakeRoomRepo) ListRooms(ctx context.Context, limit, offset int) ([]model.Room, int, error) {
	return nil, 0, nil
}

func (f *fakeRoomRepo) UpdateRoomStatus(ctx context.Context, tx *sql.Tx, roomID string, status model.RoomStatus) error {
	for _, r := range f.rooms {
		if r.ID == roomID {
			r.Status = status
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeRoomRepo) AddParticipant(ctx context.Context, p *model.RoomParticipant) error {
	if f.addErr != nil {
		return f.addErr
	}
	if f.participants[p.RoomID] == nil {
		f.participants[p.RoomID] = make(map[string]bool)
	}
	if f.participants[p.RoomID][p.UserID] {
		return common.ErrConflict
	}
	f.participants[p.RoomID][p.UserID] = true
	return nil
}

func (f *fakeRoomRepo) ListParticipants(ctx context.Context, roomID string) ([]model.RoomParticipant, error) {
	var out []model.RoomParticipant
	for userID := range f.participants[roomID] {
		out = append(out, model.RoomParticipant{RoomID: roomID, UserID: userID})
	}
	return out, nil
}

func (f *fakeRoomRepo) IsParticipant(ctx context.Context, roomID, userID string) (bool, error) {
	return f.participants[roomID][userID], nil
}

type fakePublisher struct {
	events []realtime.Event
}

func (f *fakePublisher) Publish(ctx context.Context, event realtime.Event) error {
	f.events = append(f.events, event)
	return nil
}

func TestGenerateRoomCode(t *testing.T) {
	t.Parallel()

	code, err := GenerateRoomCode(6)
	if err != nil {
		t.Fatalf("GenerateRoomCode returned error: %v", err)
	}
	if len(code) != 6 {
		t.Errorf("code length = %d, want 6", len(code))
	}
	for _, c := range code {
		if !strings.ContainsRune(roomCodeAlphabet, c) {
			t.Errorf("code %q contains character %q outside the alphabet", code, c)
		}
	}
	if strings.ContainsAny(code, "0O1I") {
		t.Errorf("code %q contains an ambiguous character", code)
	}
}

func TestNextLevelToActivate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		levels []model.Level
		wantID string // "" means nil
	}{
		{
			name:   "empty room yields nothing",
			levels: nil,
		},
		{
			name: "existing active level blocks promotion",
			levels: []model.Level{
				{ID: "a", Status: model.LevelStatusActive, SortOrder: 1},
				{ID: "b", Status: model.LevelStatusWaiting, SortOrder: 2},
			},
		},
		{
			name: "lowest waiting sort order wins",
			levels: []model.Level{
				{ID: "c", Status: model.LevelStatusWaiting, SortOrder: 3},
				{ID: "a", Status: model.LevelStatusWaiting, SortOrder: 1},
				{ID: "b", Status: model.LevelStatusWaiting, SortOrder: 2},
			},
			wantID: "a",
		},
		{
			name: "completed levels are skipped",
			levels: []model.Level{
				{ID: "a", Status: model.LevelStatusCompleted, SortOrder: 1},
				{ID: "b", Status: model.LevelStatusWaiting, SortOrder: 2},
			},
			wantID: "b",
		},
		{
			name: "all completed yields nothing",
			levels: []model.Level{
				{ID: "a", Status: model.LevelStatusCompleted, SortOrder: 1},
				{ID: "b", Status: model.LevelStatusCompleted, SortOrder: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := nextLevelToActivate(tt.levels)
			if tt.wantID == "" {
				if got != nil {
					t.Errorf("nextLevelToActivate = %q, want nil", got.ID)
				}
				return
			}
			if got == nil {
				t.Fatalf("nextLevelToActivate = nil, want %q", tt.wantID)
			}
			if got.ID != tt.wantID {
				t.Errorf("nextLevelToActivate = %q, want %q", got.ID, tt.wantID)
			}
		})
	}
}

func TestJoinRoomUnknownCode(t *testing.T) {
	t.Parallel()

	repo := newFakeRoomRepo()
	svc := NewRoomService(repo, nil, &fakePublisher{}, nil)

	_, err := svc.JoinRoom(context.Background(), "user-1", "ZZZZZZ")
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("JoinRoom with unknown code: err = %v, want ErrNotFound", err)
	}
}

func TestJoinRoomTwiceConflicts(t *testing.T) {
	t.Parallel()

	repo := newFakeRoomRepo()
	repo.rooms["ABC234"] = &model.Room{ID: "room-1", Code: "ABC234", CreatedByID: "creator"}
	pub := &fakePublisher{}
	svc := NewRoomService(repo, nil, pub, nil)

	if _, err := svc.JoinRoom(context.Background(), "user-1", "ABC234"); err != nil {
		t.Fatalf("first join failed: %v", err)
	}
	_, err := svc.JoinRoom(context.Background(), "user-1", "ABC234")
	if !errors.Is(err, common.ErrConflict) {
		t.Errorf("second join: err = %v, want ErrConflict", err)
	}
	if len(pub.events) != 1 {
		t.Errorf("published %d events, want 1", len(pub.events))
	}
	if len(pub.events) > 0 && pub.events[0].Type != realtime.EventParticipantJoined {
		t.Errorf("event type = %q, want %q", pub.events[0].Type, realtime.EventParticipantJoined)
	}
}

func TestGetParticipantsRequiresMembership(t *testing.T) {
	t.Parallel()

	repo := newFakeRoomRepo()
	repo.rooms["ABC234"] = &model.Room{ID: "room-1", Code: "ABC234", CreatedByID: "creator"}
	repo.participants["room-1"] = map[string]bool{"member": true}
	svc := NewRoomService(repo, nil, &fakePublisher{}, nil)

	if _, err := svc.GetParticipants(context.Background(), "member", "ABC234"); err != nil {
		t.Errorf("member read failed: %v", err)
	}
	_, err := svc.GetParticipants(context.Background(), "stranger", "ABC234")
	if !errors.Is(err, common.ErrForbidden) {
		t.Errorf("stranger read: err = %v, want ErrForbidden", err)
	}
}

func TestDeactivateCreatorOnly(t *testing.T) {
	t.Parallel()

	repo := newFakeRoomRepo()
	repo.rooms["ABC234"] = &model.Room{
		ID:          "room-1",
		Code:        "ABC234",
		Status:      model.RoomStatusActive,
		CreatedByID: "creator",
	}
	pub := &fakePublisher{}
	svc := NewRoomService(repo, nil, pub, nil)

	_, err := svc.Deactivate(context.Background(), "member", "ABC234")
	if !errors.Is(err, common.ErrForbidden) {
		t.Errorf("non-creator deactivate: err = %v, want ErrForbidden", err)
	}

	room, err := svc.Deactivate(context.Background(), "creator", "ABC234")
	if err != nil {
		t.Fatalf("creator deactivate failed: %v", err)
	}
	if room.Status != model.RoomStatusWaiting {
		t.Errorf("room status = %q, want %q", room.Status, model.RoomStatusWaiting)
	}
	if len(pub.events) != 1 || pub.events[0].Type != realtime.EventRoomDeactivated {
		t.Errorf("published events = %+v, want one %s", pub.events, realtime.EventRoomDeactivated)
	}
}

func TestAdvanceRequiresActiveRoom(t *testing.T) {
	t.Parallel()

	repo := newFakeRoomRepo()
	repo.rooms["ABC234"] = &model.Room{
		ID:          "room-1",
		Code:        "ABC234",
		Status:      model.RoomStatusWaiting,
		CreatedByID: "creator",
	}
	svc := NewRoomService(repo, nil, &fakePublisher{}, nil)

	err := svc.Advance(context.Background(), "creator", "ABC234")
	if !errors.Is(err, common.ErrBadRequest) {
		t.Errorf("advance on waiting room: err = %v, want ErrBadRequest", err)
	}

	err = svc.Advance(context.Background(), "member", "ABC234")
	if !errors.Is(err, common.ErrForbidden) {
		t.Errorf("non-creator advance: err = %v, want ErrForbidden", err)
	}
}
