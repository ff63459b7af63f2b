package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cbodonnell/settlers/pkg/api/handlers"
	"github.com/cbodonnell/settlers/pkg/api/middleware"
	authhandlers "github.com/cbodonnell/settlers/pkg/auth/handlers"
	"github.com/cbodonnell/settlers/pkg/game/mirror"
	"github.com/cbodonnell/settlers/pkg/log"
	"github.com/cbodonnell/settlers/pkg/repositories"
	"github.com/gorilla/mux"
)

type APIServer struct {
	server *http.Server
	tls    *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Port        int
	TLS         *TLSConfig
	AllowOrigin string
	Repository  repositories.Repository
	Mirror      *mirror.Mirror
	// AuthHandler serves POST /auth/login when set
	AuthHandler authhandlers.AuthHandler
	// WSHandler serves /ws when set, sharing the API port with game clients
	WSHandler http.HandlerFunc
}

// NewRouter returns the API routes
func NewRouter(opts NewAPIServerOptions) *mux.Router {
	r := mux.NewRouter()
	if opts.WSHandler != nil {
		// the upgrade needs the raw ResponseWriter, so no middleware here
		r.HandleFunc("/ws", opts.WSHandler)
	}

	api := r.NewRoute().Subrouter()
	api.Use(middleware.NewLoggingMiddleware(), middleware.NewCORSMiddleware(opts.AllowOrigin))
	api.HandleFunc("/healthz", handlers.HandleHealthz()).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/version", handlers.HandleVersion()).Methods(http.MethodGet, http.MethodOptions)
	if opts.Mirror != nil {
		api.HandleFunc("/session", handlers.HandleGetSession(opts.Mirror)).Methods(http.MethodGet, http.MethodOptions)
	}
	if opts.Repository != nil {
		api.HandleFunc("/results", handlers.HandleListResults(opts.Repository)).Methods(http.MethodGet, http.MethodOptions)
		api.HandleFunc("/results/{sessionID}", handlers.HandleGetResult(opts.Repository)).Methods(http.MethodGet, http.MethodOptions)
	}
	if opts.AuthHandler != nil {
		api.HandleFunc("/auth/login", opts.AuthHandler.HandleLogin()).Methods(http.MethodPost, http.MethodOptions)
	}
	return r
}

// NewAPIServer creates a new http.Server for handling API requests
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: NewRouter(opts),
	}
	return &APIServer{
		server: server,
		tls:    opts.TLS,
	}
}

// Start serves until Stop is called
func (s *APIServer) Start() {
	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return
		}
		log.Error("API server error: %v", err)
	}
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
