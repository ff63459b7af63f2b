package workers

import (
	"context"
	"fmt"

	"github.com/cbodonnell/settlers/pkg/game/events"
	"github.com/cbodonnell/settlers/pkg/game/mirror"
	"github.com/cbodonnell/settlers/pkg/game/types"
	"github.com/cbodonnell/settlers/pkg/log"
	"github.com/cbodonnell/settlers/pkg/messages"
	"github.com/cbodonnell/settlers/pkg/replication"
	"github.com/google/uuid"
)

// Broadcaster sends messages to every connected client.
type Broadcaster interface {
	SendMessageToAll(ctx context.Context, msg *messages.Message)
	// SendMessageToEach sends every client the message build returns for it.
	SendMessageToEach(ctx context.Context, build func(clientID uint32) (*messages.Message, error))
}

type ServerMessageWorker struct {
	broadcaster       Broadcaster
	mirror            *mirror.Mirror
	publisher         replication.Publisher
	serverMessageChan <-chan ServerMessage
}

type ServerMessage struct {
	Type    messages.MessageType
	Message interface{}
}

type NewServerMessageWorkerOptions struct {
	Broadcaster       Broadcaster
	Mirror            *mirror.Mirror
	Publisher         replication.Publisher
	ServerMessageChan <-chan ServerMessage
}

// NewServerMessageWorker creates a new ServerMessageWorker.
// The worker broadcasts game events and snapshots produced by the game loop,
// keeps the local mirror current and replicates both to other processes.
func NewServerMessageWorker(opts NewServerMessageWorkerOptions) *ServerMessageWorker {
	if opts.Publisher == nil {
		opts.Publisher = replication.NoopPublisher{}
	}
	return &ServerMessageWorker{
		broadcaster:       opts.Broadcaster,
		mirror:            opts.Mirror,
		publisher:         opts.Publisher,
		serverMessageChan: opts.ServerMessageChan,
	}
}

func (w *ServerMessageWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-w.serverMessageChan:
			switch msg.Type {
			case messages.MessageTypeServerGameEvent:
				if err := w.handleServerGameEvent(ctx, msg); err != nil {
					log.Error("Failed to handle server game event message: %v", err)
				}
			case messages.MessageTypeServerGameSnapshot:
				if err := w.handleServerGameSnapshot(ctx, msg); err != nil {
					log.Error("Failed to handle server game snapshot message: %v", err)
				}
			default:
				log.Error("Unknown server message type: %v", msg.Type)
			}
		}
	}
}

// GameEvent is the message of a ServerGameEvent broadcast
type GameEvent struct {
	SessionID uuid.UUID
	Event     events.Event
}

func (w *ServerMessageWorker) handleServerGameEvent(ctx context.Context, msg ServerMessage) error {
	gameEvent, ok := msg.Message.(*GameEvent)
	if !ok {
		return fmt.Errorf("failed to cast server game event message")
	}

	m, err := messages.NewMessage(0, messages.MessageTypeServerGameEvent, gameEvent.Event)
	if err != nil {
		return fmt.Errorf("failed to build game event message: %v", err)
	}
	w.broadcaster.SendMessageToAll(ctx, m)

	if err := w.publisher.PublishEvent(ctx, gameEvent.SessionID, gameEvent.Event); err != nil {
		return fmt.Errorf("failed to replicate game event: %v", err)
	}

	return nil
}

func (w *ServerMessageWorker) handleServerGameSnapshot(ctx context.Context, msg ServerMessage) error {
	snapshot, ok := msg.Message.(*types.GameSnapshot)
	if !ok {
		return fmt.Errorf("failed to cast server game snapshot message")
	}

	// the mirror and replication only ever see the public view
	public := snapshot.RedactFor(0)
	if w.mirror != nil && !w.mirror.Apply(public) {
		log.Debug("Skipping stale snapshot %d", snapshot.Sequence)
		return nil
	}

	w.broadcaster.SendMessageToEach(ctx, func(clientID uint32) (*messages.Message, error) {
		m, err := messages.NewMessage(clientID, messages.MessageTypeServerGameSnapshot, snapshot.RedactFor(types.PlayerID(clientID)))
		if err != nil {
			return nil, fmt.Errorf("failed to build game snapshot message: %v", err)
		}
		return m, nil
	})

	if err := w.publisher.PublishSnapshot(ctx, public); err != nil {
		return fmt.Errorf("failed to replicate game snapshot: %v", err)
	}

	return nil
}
