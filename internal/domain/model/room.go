package model

import "time"

type RoomStatus string

const (
	RoomStatusWaiting RoomStatus = "waiting"
	RoomStatusActive  RoomStatus = "active"
)

type Room struct {
	ID                string     `json:"id"`
	Code              string     `json:"code"`
	Name              string     `json:"name"`
	Status            RoomStatus `json:"status"`
	CreatedByID       string     `json:"created_by_id"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	CreatedByUsername *string    `json:"created_by_username,omitempty"` // For display
	ParticipantCount  *int       `json:"participant_count,omitempty"`   // For listings
}

type RoomParticipant struct {
	ID       string    `json:"id"`
	RoomID   string    `json:"room_id"`
	UserID   string    `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
	Username *string   `json:"username,omitempty"` // For display
	Points   *int      `json:"points,omitempty"`   // For display
}
