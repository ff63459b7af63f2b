package workers

import (
	"context"

	gametypes "github.com/cbodonnell/settlers/pkg/game/types"
	"github.com/cbodonnell/settlers/pkg/log"
	"github.com/cbodonnell/settlers/pkg/network"
	"github.com/cbodonnell/settlers/pkg/queue"
)

type ConnectionEventWorker struct {
	clientEventChan  <-chan network.ClientEvent
	serverEventQueue queue.Queue
}

type NewConnectionEventWorkerOptions struct {
	ClientEventChan  <-chan network.ClientEvent
	ServerEventQueue queue.Queue
}

// NewConnectionEventWorker creates a new ConnectionEventWorker.
// The worker processes client events like connect and disconnect
// and writes server events to a queue for the game loop to process.
func NewConnectionEventWorker(opts NewConnectionEventWorkerOptions) *ConnectionEventWorker {
	return &ConnectionEventWorker{
		clientEventChan:  opts.ClientEventChan,
		serverEventQueue: opts.ServerEventQueue,
	}
}

func (w *ConnectionEventWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-w.clientEventChan:
			switch event.Type {
			case network.ClientEventTypeConnect:
				w.handleClientConnect(event)
			case network.ClientEventTypeDisconnect:
				w.handleClientDisconnect(event)
			default:
				log.Error("Unknown client event type: %v", event.Type)
			}
		}
	}
}

func (w *ConnectionEventWorker) handleClientConnect(event network.ClientEvent) {
	data, ok := event.Data.(network.ClientConnectData)
	if !ok {
		log.Error("Failed to cast client connect data")
		return
	}

	if err := w.serverEventQueue.Enqueue(&gametypes.ConnectPlayerEvent{
		ClientID: event.ClientID,
		UserID:   data.UserID,
		Name:     data.Name,
	}); err != nil {
		log.Error("Failed to enqueue connect player event: %v", err)
	}
}

func (w *ConnectionEventWorker) handleClientDisconnect(event network.ClientEvent) {
	if err := w.serverEventQueue.Enqueue(&gametypes.DisconnectPlayerEvent{
		ClientID: event.ClientID,
	}); err != nil {
		log.Error("Failed to enqueue disconnect player event: %v", err)
	}
}
