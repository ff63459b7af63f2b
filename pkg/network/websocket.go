package network

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cbodonnell/settlers/pkg/log"
	"github.com/cbodonnell/settlers/pkg/messages"
	"nhooyr.io/websocket"
)

const (
	// WriteTimeout bounds a single websocket write
	WriteTimeout = 5 * time.Second
)

// WSServer represents a WebSocket server.
type WSServer struct {
	port int
	tls  *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewWSServerOptions struct {
	Port int
	TLS  *TLSConfig
}

// NewWSServer creates a new WebSocket server.
func NewWSServer(opts NewWSServerOptions) *WSServer {
	return &WSServer{
		port: opts.Port,
		tls:  opts.TLS,
	}
}

type DisconnectHandler func(conn *websocket.Conn)

type MessageHandler func(ctx context.Context, conn *websocket.Conn, message *messages.Message)

// Handler upgrades requests to WebSocket connections and serves them until they close.
func (s *WSServer) Handler(ctx context.Context, disconnectHandler DisconnectHandler, messageHandler MessageHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			log.Error("Failed to accept WebSocket connection: %v", err)
			return
		}
		conn.SetReadLimit(messages.MessageBufferSize)
		log.Debug("New WebSocket connection from %s", r.RemoteAddr)
		s.handleWSConnection(ctx, r.RemoteAddr, conn, disconnectHandler, messageHandler)
	})
}

// Start starts the WebSocket server.
func (s *WSServer) Start(ctx context.Context, disconnectHandler DisconnectHandler, messageHandler MessageHandler) {
	addr := fmt.Sprintf(":%d", s.port)
	server := &http.Server{
		Addr:    addr,
		Handler: s.Handler(ctx, disconnectHandler, messageHandler),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	var listenAndServe func() error
	if s.tls != nil {
		log.Info("WebSocket server listening on %s with TLS", addr)
		listenAndServe = func() error {
			return server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("WebSocket server listening on %s", addr)
		listenAndServe = server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("WebSocket server closed")
			return
		}
		log.Error("WebSocket server error: %v", err)
	}
}

// handleWSConnection reads messages until the connection closes. Messages are
// handled in arrival order.
func (s *WSServer) handleWSConnection(ctx context.Context, remoteAddr string, conn *websocket.Conn, disconnectHandler DisconnectHandler, messageHandler MessageHandler) {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		disconnectHandler(conn)
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		_, b, err := conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				log.Trace("Connection closed for %s", remoteAddr)
			default:
				log.Debug("Error reading WebSocket message from %s: %v", remoteAddr, err)
			}
			return
		}

		message, err := messages.DeserializeMessage(b)
		if err != nil {
			log.Warn("Dropping malformed message from %s: %v", remoteAddr, err)
			continue
		}

		messageHandler(ctx, conn, message)
	}
}

// WriteMessageToWS writes a Message to a WebSocket connection
func WriteMessageToWS(ctx context.Context, conn *websocket.Conn, msg *messages.Message) error {
	b, err := messages.SerializeMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, WriteTimeout)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageBinary, b); err != nil {
		return fmt.Errorf("failed to write message to WebSocket connection: %v", err)
	}

	return nil
}

// ReadMessageFromWS reads a Message from a WebSocket connection
func ReadMessageFromWS(ctx context.Context, conn *websocket.Conn) (*messages.Message, error) {
	_, b, err := conn.Read(ctx)
	if err != nil {
		return nil, err
	}

	msg, err := messages.DeserializeMessage(b)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize message: %v", err)
	}

	return msg, nil
}
