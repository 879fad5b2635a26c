package realtime

import (
	"context"
	"encoding/json"
	"log"

	"reelcode/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

// Publisher is how services emit room events without knowing about sockets.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// RedisPublisher pushes events through Redis pub/sub so fan-out still works
// when the API runs as more than one instance.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	channel := config.AppConfig.RoomEventChannelPrefix + event.RoomID
	return p.rdb.Publish(ctx, channel, data).Err()
}

// Bridge subscribes to all room event channels and relays messages into the
// local hub. Run it once per API instance; it returns when ctx is cancelled.
type Bridge struct {
	rdb *redis.Client
	hub *Hub
}

func NewBridge(rdb *redis.Client, hub *Hub) *Bridge {
	return &Bridge{rdb: rdb, hub: hub}
}

func (b *Bridge) Run(ctx context.Context) {
	pattern := config.AppConfig.RoomEventChannelPrefix + "*"
	pubsub := b.rdb.PSubscribe(ctx, pattern)
	defer pubsub.Close()

	log.Printf("Realtime bridge listening on %s", pattern)
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			log.Println("Realtime bridge stopping...")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("WARN: realtime bridge dropped malformed event: %v", err)
				continue
			}
			b.hub.Broadcast(event)
		}
	}
}
