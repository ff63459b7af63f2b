package replication

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cbodonnell/settlers/pkg/game/events"
	"github.com/cbodonnell/settlers/pkg/game/mirror"
	"github.com/cbodonnell/settlers/pkg/game/types"
	"github.com/cbodonnell/settlers/pkg/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var _ Publisher = &RedisPublisher{}

// RedisPublisher publishes on Redis pub/sub channels.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisClient parses url and checks that the server answers.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %v", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %v", err)
	}
	return client, nil
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{
		client: client,
	}
}

func (p *RedisPublisher) PublishEvent(ctx context.Context, sessionID uuid.UUID, event events.Event) error {
	b, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %v", err)
	}
	if err := p.client.Publish(ctx, EventsChannel(sessionID), b).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %v", err)
	}
	return nil
}

func (p *RedisPublisher) PublishSnapshot(ctx context.Context, snapshot *types.GameSnapshot) error {
	b, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %v", err)
	}
	if err := p.client.Publish(ctx, SnapshotChannel(snapshot.SessionID), b).Err(); err != nil {
		return fmt.Errorf("failed to publish snapshot: %v", err)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// Follower keeps a mirror up to date from the snapshots published by an
// authority process.
type Follower struct {
	client *redis.Client
	mirror *mirror.Mirror
}

func NewFollower(client *redis.Client, m *mirror.Mirror) *Follower {
	return &Follower{
		client: client,
		mirror: m,
	}
}

// Start subscribes to every session snapshot channel until ctx is done.
func (f *Follower) Start(ctx context.Context) {
	pubsub := f.client.PSubscribe(ctx, SnapshotPattern)
	defer pubsub.Close()
	log.Info("Following snapshots on %s", SnapshotPattern)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			log.Info("Follower stopped")
			return
		case msg, ok := <-ch:
			if !ok {
				log.Warn("Snapshot subscription closed")
				return
			}
			if err := f.apply(msg.Payload); err != nil {
				log.Error("Failed to apply snapshot from %s: %v", msg.Channel, err)
			}
		}
	}
}

func (f *Follower) apply(payload string) error {
	snapshot := &types.GameSnapshot{}
	if err := json.Unmarshal([]byte(payload), snapshot); err != nil {
		return fmt.Errorf("failed to unmarshal snapshot: %v", err)
	}
	if !f.mirror.Apply(snapshot) {
		log.Debug("Ignoring stale snapshot %d of session %s", snapshot.Sequence, snapshot.SessionID)
	}
	return nil
}
