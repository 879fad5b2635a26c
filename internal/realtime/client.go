package realtime

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 256
)

// Client is one websocket connection subscribed to a single room.
type Client struct {
	hub    *Hub
	roomID string
	userID string
	conn   *websocket.Conn
	send   chan []byte
}

func NewClient(hub *Hub, roomID, userID string, conn *websocket.Conn) *Client {
	return &Client{
		hub:    hub,
		roomID: roomID,
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}
}

// Start registers the client and runs its pumps. Blocks until the connection
// drops; unsubscribes on the way out.
func (c *Client) Start() {
	c.hub.Subscribe(c.roomID, c)
	go c.writePump()
	c.readPump()
}

// readPump discards inbound messages; the stream is server-to-client only.
// It exists to notice closes and answer pings.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unsubscribe(c.roomID, c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WARN: websocket read for user %s: %v", c.userID, err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
