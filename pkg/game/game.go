package game

import (
	"context"
	"fmt"
	"time"

	"github.com/cbodonnell/settlers/pkg/game/events"
	"github.com/cbodonnell/settlers/pkg/game/rules"
	"github.com/cbodonnell/settlers/pkg/game/types"
	"github.com/cbodonnell/settlers/pkg/log"
	"github.com/cbodonnell/settlers/pkg/messages"
	"github.com/cbodonnell/settlers/pkg/queue"
	"github.com/cbodonnell/settlers/pkg/workers"
)

// GameManager runs the game loop of a single session. It is the only
// goroutine that executes commands on the engine.
type GameManager struct {
	engine              *rules.Engine
	clientMessageQueue  queue.Queue
	serverEventQueue    queue.Queue
	serverMessageChan   chan<- workers.ServerMessage
	saveMatchResultChan chan<- workers.SaveMatchResultRequest
	gameLoopInterval    time.Duration

	// pending holds events published since the last broadcast
	pending     []events.Event
	resultSaved bool
	now         func() time.Time
}

// NewGameManagerOptions contains options for creating a new GameManager.
type NewGameManagerOptions struct {
	Engine              *rules.Engine
	ClientMessageQueue  queue.Queue
	ServerEventQueue    queue.Queue
	ServerMessageChan   chan<- workers.ServerMessage
	SaveMatchResultChan chan<- workers.SaveMatchResultRequest
	GameLoopInterval    time.Duration
}

func NewGameManager(opts NewGameManagerOptions) *GameManager {
	gm := &GameManager{
		engine:              opts.Engine,
		clientMessageQueue:  opts.ClientMessageQueue,
		serverEventQueue:    opts.ServerEventQueue,
		serverMessageChan:   opts.ServerMessageChan,
		saveMatchResultChan: opts.SaveMatchResultChan,
		gameLoopInterval:    opts.GameLoopInterval,
		now:                 time.Now,
	}
	// handlers run under the engine lock; collecting is all they may do
	gm.engine.Events().Subscribe(func(ev events.Event) {
		gm.pending = append(gm.pending, ev)
	})
	return gm
}

// Start starts the game loop.
func (gm *GameManager) Start(ctx context.Context) error {
	ticker := time.NewTicker(gm.gameLoopInterval)
	defer ticker.Stop()

	log.Info("Session %s started", gm.engine.SessionID())
	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-ticker.C:
			err := gm.gameTick(ctx, t)
			if err != nil {
				log.Error("Failed to run game tick: %v", err)
			}
		}
	}
}

// gameTick runs one iteration of the game loop.
func (gm *GameManager) gameTick(ctx context.Context, _ time.Time) error {
	gm.processConnectionEvents()
	gm.processClientMessages()
	if err := gm.broadcast(ctx); err != nil {
		return fmt.Errorf("failed to broadcast: %v", err)
	}
	if err := gm.saveMatchResult(ctx); err != nil {
		return fmt.Errorf("failed to request match result save: %v", err)
	}

	return nil
}

// processConnectionEvents seats connecting players and removes the ones that left.
func (gm *GameManager) processConnectionEvents() {
	pendingEvents, err := gm.serverEventQueue.ReadAllMessages()
	if err != nil {
		log.Error("Failed to read connection events: %v", err)
		return
	}
	for _, item := range pendingEvents {
		switch event := item.(type) {
		case *types.ConnectPlayerEvent:
			name := event.Name
			if name == "" {
				name = fmt.Sprintf("player-%d", event.ClientID)
			}
			if err := gm.engine.AddPlayer(types.PlayerID(event.ClientID), name); err != nil {
				log.Warn("Failed to seat client %d: %v", event.ClientID, err)
				continue
			}
			log.Debug("Client %d seated as %s", event.ClientID, name)
		case *types.DisconnectPlayerEvent:
			if err := gm.engine.RemovePlayer(types.PlayerID(event.ClientID)); err != nil {
				log.Debug("Client %d was not seated: %v", event.ClientID, err)
				continue
			}
			log.Debug("Client %d left the session", event.ClientID)
		default:
			log.Error("unhandled connection event type: %T", event)
		}
	}
}

// processClientMessages executes all pending client commands in arrival order.
func (gm *GameManager) processClientMessages() {
	pendingMessages, err := gm.clientMessageQueue.ReadAllMessages()
	if err != nil {
		log.Error("Failed to read client messages: %v", err)
		return
	}
	for _, item := range pendingMessages {
		message, ok := item.(*messages.Message)
		if !ok {
			log.Error("Failed to cast message to messages.Message")
			continue
		}

		cmd, err := CommandFromMessage(message)
		if err != nil {
			log.Warn("Dropping %s message from client %d: %v", message.Type, message.ClientID, err)
			continue
		}
		gm.engine.Execute(cmd)
	}
}

// broadcast forwards the collected events followed by a fresh snapshot.
// Nothing is sent when nothing changed.
func (gm *GameManager) broadcast(ctx context.Context) error {
	if len(gm.pending) == 0 {
		return nil
	}
	pending := gm.pending
	gm.pending = nil

	sessionID := gm.engine.SessionID()
	for _, ev := range pending {
		if err := gm.send(ctx, workers.ServerMessage{
			Type:    messages.MessageTypeServerGameEvent,
			Message: &workers.GameEvent{SessionID: sessionID, Event: ev},
		}); err != nil {
			return err
		}
	}

	return gm.send(ctx, workers.ServerMessage{
		Type:    messages.MessageTypeServerGameSnapshot,
		Message: gm.engine.Snapshot(),
	})
}

func (gm *GameManager) send(ctx context.Context, msg workers.ServerMessage) error {
	select {
	case gm.serverMessageChan <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// saveMatchResult requests a save of the final result once the session is over.
func (gm *GameManager) saveMatchResult(ctx context.Context) error {
	if gm.resultSaved {
		return nil
	}
	if _, over := gm.engine.Winner(); !over {
		return nil
	}

	result := MatchResultFromSnapshot(gm.engine.Snapshot(), gm.engine.VictoryPointsTarget(), gm.now())
	select {
	case gm.saveMatchResultChan <- workers.SaveMatchResultRequest{Result: result}:
		gm.resultSaved = true
		log.Info("Session %s won by %s", result.SessionID, result.WinnerName)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
