package network

import (
	"context"
	"fmt"
	"net/http"
	"time"

	authproviders "github.com/cbodonnell/settlers/pkg/auth/providers"
	"github.com/cbodonnell/settlers/pkg/log"
	"github.com/cbodonnell/settlers/pkg/messages"
	"github.com/cbodonnell/settlers/pkg/queue"
	"nhooyr.io/websocket"
)

type NetworkManager struct {
	AuthProvider  authproviders.AuthProvider
	ClientManager *ClientManager
	MessageQueue  queue.Queue
	WSServer      *WSServer
}

type NewNetworkManagerOptions struct {
	AuthProvider  authproviders.AuthProvider
	ClientManager *ClientManager
	MessageQueue  queue.Queue
	WSPort        int
	WSServerTLS   *TLSConfig
}

func NewNetworkManager(options NewNetworkManagerOptions) *NetworkManager {
	return &NetworkManager{
		AuthProvider:  options.AuthProvider,
		ClientManager: options.ClientManager,
		MessageQueue:  options.MessageQueue,
		WSServer: NewWSServer(NewWSServerOptions{
			Port: options.WSPort,
			TLS:  options.WSServerTLS,
		}),
	}
}

func (n *NetworkManager) Start(ctx context.Context) {
	go n.WSServer.Start(ctx, n.handleDisconnect, n.handleMessage)
}

// Handler serves WebSocket clients on an existing HTTP server.
func (n *NetworkManager) Handler(ctx context.Context) func(w http.ResponseWriter, r *http.Request) {
	return n.WSServer.Handler(ctx, n.handleDisconnect, n.handleMessage).ServeHTTP
}

func (n *NetworkManager) handleDisconnect(conn *websocket.Conn) {
	clientID := n.ClientManager.GetClientIDByWSConn(conn)
	if clientID != 0 {
		n.ClientManager.DisconnectClient(clientID)
		log.Info("Client %d disconnected", clientID)
		return
	}

	log.Debug("Connection closed before login")
}

// handleMessage stamps a message with the client id of its connection and
// routes it. Only login messages are accepted before the connection logs in.
func (n *NetworkManager) handleMessage(ctx context.Context, conn *websocket.Conn, message *messages.Message) {
	clientID := n.ClientManager.GetClientIDByWSConn(conn)
	if message.Type == messages.MessageTypeClientLogin {
		if clientID != 0 {
			log.Warn("Client %d sent a second login message", clientID)
			return
		}
		n.login(ctx, conn, message)
		return
	}

	if clientID == 0 {
		log.Warn("Received %s message from unknown client that is not a login message", message.Type)
		return
	}
	message.ClientID = clientID

	switch message.Type {
	case messages.MessageTypeClientPing:
		if err := n.handleClientPing(ctx, message); err != nil {
			log.Error("Failed to handle client ping: %v", err)
		}
	default:
		if !message.Type.IsClientCommand() {
			log.Warn("Received unexpected %s message from client %d", message.Type, clientID)
			return
		}
		if err := n.MessageQueue.Enqueue(message); err != nil {
			log.Error("Failed to enqueue message: %v", err)
		}
	}
}

func (n *NetworkManager) login(ctx context.Context, conn *websocket.Conn, message *messages.Message) {
	clientID, err := n.handleClientLogin(ctx, conn, message)
	if err != nil {
		log.Error("Failed to handle client login: %v", err)
		failure, err := messages.NewMessage(0, messages.MessageTypeServerLoginFailure, &messages.ServerLoginFailure{
			Reason: err.Error(),
		})
		if err != nil {
			log.Error("Failed to build server login failure: %v", err)
			return
		}
		if err := WriteMessageToWS(ctx, conn, failure); err != nil {
			log.Error("Failed to send server login failure: %v", err)
		}
		return
	}
	log.Info("Client %d connected", clientID)

	success, err := messages.NewMessage(0, messages.MessageTypeServerLoginSuccess, &messages.ServerLoginSuccess{
		ClientID: clientID,
	})
	if err != nil {
		log.Error("Failed to build server login success: %v", err)
		return
	}
	if err := n.SendMessageToClient(ctx, clientID, success); err != nil {
		log.Error("Failed to send server login success: %v", err)
	}
}

// handleClientLogin handles a client login message.
func (n *NetworkManager) handleClientLogin(ctx context.Context, conn *websocket.Conn, message *messages.Message) (uint32, error) {
	clientLogin := &messages.ClientLogin{}
	if err := message.DecodePayload(clientLogin); err != nil {
		return 0, fmt.Errorf("failed to decode client login: %v", err)
	}

	token, err := n.AuthProvider.VerifyToken(ctx, clientLogin.IDToken)
	if err != nil {
		return 0, fmt.Errorf("failed to verify token: %v", err)
	}

	clientID, err := n.ClientManager.ConnectClient(conn, token.UID, token.Name)
	if err != nil {
		return 0, fmt.Errorf("failed to connect client: %v", err)
	}

	return clientID, nil
}

func (n *NetworkManager) handleClientPing(ctx context.Context, message *messages.Message) error {
	ping := &messages.ClientPing{}
	if err := message.DecodePayload(ping); err != nil {
		return fmt.Errorf("failed to decode client ping: %v", err)
	}

	pong, err := messages.NewMessage(0, messages.MessageTypeServerPong, &messages.ServerPong{
		ClientPingTimestamp: ping.Timestamp,
		ServerTimestamp:     time.Now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("failed to build pong message: %v", err)
	}

	if err := n.SendMessageToClient(ctx, message.ClientID, pong); err != nil {
		return fmt.Errorf("failed to write pong message to client: %v", err)
	}

	return nil
}

// SendMessageToAll sends msg to every logged in client. Failures are logged per client.
func (n *NetworkManager) SendMessageToAll(ctx context.Context, msg *messages.Message) {
	for _, client := range n.ClientManager.GetClients() {
		if err := WriteMessageToWS(ctx, client.WSConn, msg); err != nil {
			log.Error("Failed to send message to client %d: %v", client.ID, err)
		}
	}
}

// SendMessageToEach sends every logged in client the message build returns for
// its client id. Clients whose message cannot be built or sent are skipped.
func (n *NetworkManager) SendMessageToEach(ctx context.Context, build func(clientID uint32) (*messages.Message, error)) {
	for _, client := range n.ClientManager.GetClients() {
		msg, err := build(client.ID)
		if err != nil {
			log.Error("Failed to build message for client %d: %v", client.ID, err)
			continue
		}
		if err := WriteMessageToWS(ctx, client.WSConn, msg); err != nil {
			log.Error("Failed to send message to client %d: %v", client.ID, err)
		}
	}
}

func (n *NetworkManager) SendMessageToClient(ctx context.Context, clientID uint32, msg *messages.Message) error {
	client, err := n.ClientManager.GetClient(clientID)
	if err != nil {
		return fmt.Errorf("failed to get client %d: %v", clientID, err)
	}

	if err := WriteMessageToWS(ctx, client.WSConn, msg); err != nil {
		return fmt.Errorf("failed to send message to client %d: %v", clientID, err)
	}

	return nil
}
