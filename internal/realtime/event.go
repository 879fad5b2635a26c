package realtime

// Event is one room-scoped notification pushed to subscribed clients.
type Event struct {
	Type    string      `json:"type"`
	RoomID  string      `json:"room_id"`
	Payload interface{} `json:"payload,omitempty"`
}

const (
	EventParticipantJoined   = "participant_joined"
	EventRoomActivated       = "room_activated"
	EventRoomDeactivated     = "room_deactivated"
	EventLevelActivated      = "level_activated"
	EventLevelCompleted      = "level_completed"
	EventSubmissionCompleted = "submission_completed"
)
