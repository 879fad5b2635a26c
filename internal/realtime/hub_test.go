package realtime

import (
	"encoding/json"
	"testing"
)

func testClient() *Client {
	return &Client{send: make(chan []byte, 1)}
}

func TestHubBroadcastReachesRoomOnly(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	inRoom := testClient()
	elsewhere := testClient()
	hub.Subscribe("room-1", inRoom)
	hub.Subscribe("room-2", elsewhere)

	hub.Broadcast(Event{Type: EventParticipantJoined, RoomID: "room-1", Payload: map[string]string{"user_id": "u1"}})

	select {
	case raw := <-inRoom.send:
		var got Event
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Fatalf("broadcast payload is not valid JSON: %v", err)
		}
		if got.Type != EventParticipantJoined || got.RoomID != "room-1" {
			t.Errorf("got event %+v", got)
		}
	default:
		t.Fatal("subscribed client received nothing")
	}

	select {
	case <-elsewhere.send:
		t.Fatal("client in another room received the event")
	default:
	}
}

func TestHubSlowClientIsSkipped(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	slow := testClient()
	hub.Subscribe("room-1", slow)

	// Fill the buffer, then broadcast twice more. Neither extra broadcast
	// may block.
	hub.Broadcast(Event{Type: EventRoomActivated, RoomID: "room-1"})
	hub.Broadcast(Event{Type: EventRoomActivated, RoomID: "room-1"})
	hub.Broadcast(Event{Type: EventRoomActivated, RoomID: "room-1"})

	if n := len(slow.send); n != 1 {
		t.Errorf("buffered messages = %d, want 1", n)
	}
}

func TestHubUnsubscribe(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	client := testClient()
	hub.Subscribe("room-1", client)

	if n := hub.SubscriberCount("room-1"); n != 1 {
		t.Fatalf("subscriber count = %d, want 1", n)
	}

	hub.Unsubscribe("room-1", client)

	if n := hub.SubscriberCount("room-1"); n != 0 {
		t.Errorf("subscriber count after unsubscribe = %d, want 0", n)
	}
	if _, open := <-client.send; open {
		t.Error("send channel still open after unsubscribe")
	}

	// A second unsubscribe of the same client is a no-op.
	hub.Unsubscribe("room-1", client)
}
