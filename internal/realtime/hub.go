package realtime

import (
	"encoding/json"
	"log"
	"sync"
)

// Hub fans room events out to connected clients. Each client is a buffered
// channel the websocket write pump drains.
type Hub struct {
	rooms map[string]map[*Client]bool
	mu    sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]bool),
	}
}

// Subscribe adds a client to a room's subscriber set.
func (h *Hub) Subscribe(roomID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
}

// Unsubscribe removes a client and closes its send channel. Safe to call once
// per client; the empty room set is dropped.
func (h *Hub) Unsubscribe(roomID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.rooms[roomID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)
			if len(clients) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
}

// Broadcast delivers an event to every client subscribed to its room. Slow
// clients are skipped rather than blocking the hub.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.rooms[event.RoomID]
	if !ok {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ERROR: hub failed to marshal event %s: %v", event.Type, err)
		return
	}
	for client := range clients {
		select {
		case client.send <- data:
		default:
			// Channel full; the client's pumps will clean up on disconnect.
		}
	}
}

// SubscriberCount reports how many clients are subscribed to a room.
func (h *Hub) SubscriberCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}
