package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"reelcode/internal/common"
	"reelcode/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type RoomRepository interface {
	CreateRoom(ctx context.Context, tx *sql.Tx, room *model.Room) error
	FindRoomByID(ctx context.Context, id string) (*model.Room, error)
	FindRoomByCode(ctx context.Context, code string) (*model.Room, error)
	ListRooms(ctx context.Context, limit, offset int) ([]model.Room, int, error)
	UpdateRoomStatus(ctx context.Context, tx *sql.Tx, roomID string, status model.RoomStatus) error

	AddParticipant(ctx context.Context, participant *model.RoomParticipant) error
	ListParticipants(ctx context.Context, roomID string) ([]model.RoomParticipant, error)
	IsParticipant(ctx context.Context, roomID, userID string) (bool, error)
}

type pgRoomRepository struct {
	db *sql.DB
}

func NewPgRoomRepository(db *sql.DB) RoomRepository {
	return &pgRoomRepository{db: db}
}

func (r *pgRoomRepository) CreateRoom(ctx context.Context, tx *sql.Tx, room *model.Room) error {
	query := `INSERT INTO rooms (id, code, name, status, created_by)
	          VALUES ($1, $2, $3, $4, $5)`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, room.ID, room.Code, room.Name, room.Status, room.CreatedByID)
	} else {
		_, err = r.db.ExecContext(ctx, query, room.ID, room.Code, room.Name, room.Status, room.CreatedByID)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint for code
			return fmt.Errorf("room with this code already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgRoomRepository.CreateRoom: %w", err)
	}
	return nil
}

const roomSelect = `
	SELECT r.id, r.code, r.name, r.status, r.created_by, r.created_at, r.updated_at,
	       u.username as created_by_username
	FROM rooms r
	LEFT JOIN users u ON r.created_by = u.id`

func (r *pgRoomRepository) FindRoomByID(ctx context.Context, id string) (*model.Room, error) {
	return r.findOne(ctx, roomSelect+` WHERE r.id = $1`, id)
}

func (r *pgRoomRepository) FindRoomByCode(ctx context.Context, code string) (*model.Room, error) {
	return r.findOne(ctx, roomSelect+` WHERE r.code = $1`, code)
}

func (r *pgRoomRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.Room, error) {
	room := &model.Room{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&room.ID, &room.Code, &room.Name, &room.Status, &room.CreatedByID,
		&room.CreatedAt, &room.UpdatedAt, &room.CreatedByUsername,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgRoomRepository.findOne: %w", err)
	}
	return room, nil
}

func (r *pgRoomRepository) ListRooms(ctx context.Context, limit, offset int) ([]model.Room, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgRoomRepository.ListRooms count: %w", err)
	}

	query := `
		SELECT r.id, r.code, r.name, r.status, r.created_by, r.created_at, r.updated_at,
		       u.username as created_by_username,
		       (SELECT COUNT(*) FROM room_participants rp WHERE rp.room_id = r.id) as participant_count
		FROM rooms r
		LEFT JOIN users u ON r.created_by = u.id
		ORDER BY r.created_at DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pgRoomRepository.ListRooms query: %w", err)
	}
	defer rows.Close()

	rooms := []model.Room{}
	for rows.Next() {
		var room model.Room
		if err := rows.Scan(&room.ID, &room.Code, &room.Name, &room.Status, &room.CreatedByID,
			&room.CreatedAt, &room.UpdatedAt, &room.CreatedByUsername, &room.ParticipantCount); err != nil {
			return nil, 0, fmt.Errorf("pgRoomRepository.ListRooms scan: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgRoomRepository.ListRooms rows.Err: %w", err)
	}
	return rooms, total, nil
}

func (r *pgRoomRepository) UpdateRoomStatus(ctx context.Context, tx *sql.Tx, roomID string, status model.RoomStatus) error {
	query := `UPDATE rooms SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, status, roomID)
	} else {
		_, err = r.db.ExecContext(ctx, query, status, roomID)
	}
	if err != nil {
		return fmt.Errorf("pgRoomRepository.UpdateRoomStatus: %w", err)
	}
	return nil
}

func (r *pgRoomRepository) AddParticipant(ctx context.Context, p *model.RoomParticipant) error {
	query := `INSERT INTO room_participants (id, room_id, user_id) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, p.ID, p.RoomID, p.UserID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique (room_id, user_id)
			return fmt.Errorf("user already joined this room: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgRoomRepository.AddParticipant: %w", err)
	}
	return nil
}

func (r *pgRoomRepository) ListParticipants(ctx context.Context, roomID string) ([]model.RoomParticipant, error) {
	query := `
		SELECT rp.id, rp.room_id, rp.user_id, rp.joined_at, u.username, u.points
		FROM room_participants rp
		JOIN users u ON rp.user_id = u.id
		WHERE rp.room_id = $1
		ORDER BY rp.joined_at ASC`
	rows, err := r.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("pgRoomRepository.ListParticipants query: %w", err)
	}
	defer rows.Close()

	participants := []model.RoomParticipant{}
	for rows.Next() {
		var p model.RoomParticipant
		if err := rows.Scan(&p.ID, &p.RoomID, &p.UserID, &p.JoinedAt, &p.Username, &p.Points); err != nil {
			return nil, fmt.Errorf("pgRoomRepository.ListParticipants scan: %w", err)
		}
		participants = append(participants, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgRoomRepository.ListParticipants rows.Err: %w", err)
	}
	return participants, nil
}

func (r *pgRoomRepository) IsParticipant(ctx context.Context, roomID, userID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM room_participants WHERE room_id = $1 AND user_id = $2)`
	if err := r.db.QueryRowContext(ctx, query, roomID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("pgRoomRepository.IsParticipant: %w", err)
	}
	return exists, nil
}
