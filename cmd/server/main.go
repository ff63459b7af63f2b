package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cbodonnell/settlers/pkg/api"
	authhandlers "github.com/cbodonnell/settlers/pkg/auth/handlers"
	authproviders "github.com/cbodonnell/settlers/pkg/auth/providers"
	"github.com/cbodonnell/settlers/pkg/config"
	"github.com/cbodonnell/settlers/pkg/game"
	"github.com/cbodonnell/settlers/pkg/game/mirror"
	"github.com/cbodonnell/settlers/pkg/game/rules"
	"github.com/cbodonnell/settlers/pkg/log"
	"github.com/cbodonnell/settlers/pkg/network"
	"github.com/cbodonnell/settlers/pkg/queue"
	"github.com/cbodonnell/settlers/pkg/replication"
	"github.com/cbodonnell/settlers/pkg/repositories"
	"github.com/cbodonnell/settlers/pkg/version"
	"github.com/cbodonnell/settlers/pkg/workers"
	"github.com/redis/go-redis/v9"
)

func main() {
	envFile := flag.String("env-file", "", "Path to a .env file")
	logLevel := flag.String("log-level", "", "Log level, overrides SETTLERS_LOG_LEVEL")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	parsedLogLevel, err := log.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting %s server version %s", cfg.Mode, version.Get())
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repository, err := newRepository(ctx, cfg.Database)
	if err != nil {
		panic(fmt.Sprintf("Failed to create repository: %v", err))
	}
	defer repository.Close(context.Background())

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = replication.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			panic(fmt.Sprintf("Failed to connect to redis: %v", err))
		}
		defer redisClient.Close()
	}

	sessionMirror := mirror.New()
	apiServerOpts := api.NewAPIServerOptions{
		Port:        cfg.APIPort,
		TLS:         apiTLSConfig(cfg),
		AllowOrigin: cfg.AllowOrigin,
		Repository:  repository,
		Mirror:      sessionMirror,
	}

	switch cfg.Mode {
	case config.ModeObserver:
		follower := replication.NewFollower(redisClient, sessionMirror)
		go follower.Start(ctx)
	default:
		if err := startAuthority(ctx, cfg, &apiServerOpts, repository, redisClient, sessionMirror); err != nil {
			panic(err.Error())
		}
	}

	server := api.NewAPIServer(apiServerOpts)
	go server.Start()

	<-ctx.Done()
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop server: %v", err)
	}
}

// startAuthority wires the game server around a new rules engine and
// registers its login and websocket routes on the API server.
func startAuthority(ctx context.Context, cfg *config.Config, apiServerOpts *api.NewAPIServerOptions, repository repositories.Repository, redisClient *redis.Client, sessionMirror *mirror.Mirror) error {
	authProvider, authHandler, err := newAuth(ctx, cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to create auth provider: %v", err)
	}
	apiServerOpts.AuthHandler = authHandler

	clientManager := network.NewClientManager()
	clientMessageQueue := queue.NewInMemoryQueue(10000)
	networkManager := network.NewNetworkManager(network.NewNetworkManagerOptions{
		AuthProvider:  authProvider,
		ClientManager: clientManager,
		MessageQueue:  clientMessageQueue,
		WSPort:        cfg.WSPort,
		WSServerTLS:   wsTLSConfig(cfg),
	})
	if cfg.WSPort > 0 {
		networkManager.Start(ctx)
	} else {
		apiServerOpts.WSHandler = networkManager.Handler(ctx)
	}

	serverEventQueue := queue.NewInMemoryQueue(1000)
	connectionEventWorker := workers.NewConnectionEventWorker(workers.NewConnectionEventWorkerOptions{
		ClientEventChan:  clientManager.GetClientEventChan(),
		ServerEventQueue: serverEventQueue,
	})
	go connectionEventWorker.Start(ctx)

	var publisher replication.Publisher = replication.NoopPublisher{}
	if redisClient != nil {
		publisher = replication.NewRedisPublisher(redisClient)
	}

	serverMessageChannelSize := 100
	serverMessageChan := make(chan workers.ServerMessage, serverMessageChannelSize)
	serverMessageWorker := workers.NewServerMessageWorker(workers.NewServerMessageWorkerOptions{
		Broadcaster:       networkManager,
		Mirror:            sessionMirror,
		Publisher:         publisher,
		ServerMessageChan: serverMessageChan,
	})
	go serverMessageWorker.Start(ctx)

	saveMatchResultChan := make(chan workers.SaveMatchResultRequest, 1)
	saveMatchResultWorker := workers.NewSaveMatchResultWorker(workers.NewSaveMatchResultWorkerOptions{
		Repository:          repository,
		SaveMatchResultChan: saveMatchResultChan,
	})
	go saveMatchResultWorker.Start(ctx)

	engineOpts := cfg.Game.EngineOptions()
	engineOpts.Logger = log.Default()
	engine := rules.NewEngine(engineOpts)
	log.Info("Created session %s", engine.SessionID())

	gameManager := game.NewGameManager(game.NewGameManagerOptions{
		Engine:              engine,
		ClientMessageQueue:  clientMessageQueue,
		ServerEventQueue:    serverEventQueue,
		ServerMessageChan:   serverMessageChan,
		SaveMatchResultChan: saveMatchResultChan,
		GameLoopInterval:    cfg.TickInterval,
	})

	log.Info("Starting game manager")
	go func() {
		if err := gameManager.Start(ctx); err != nil {
			log.Error("Game manager stopped: %v", err)
		}
	}()
	return nil
}

func newAuth(ctx context.Context, cfg config.AuthConfig) (authproviders.AuthProvider, authhandlers.AuthHandler, error) {
	switch cfg.Provider {
	case config.AuthProviderFirebase:
		provider, err := authproviders.NewFirebaseAuthProvider(ctx, cfg.FirebaseProjectID, cfg.FirebaseAPIKey)
		if err != nil {
			return nil, nil, err
		}
		var handler authhandlers.AuthHandler
		if cfg.FirebaseAPIKey != "" {
			handler = authhandlers.NewFirebaseAuthHandler(authhandlers.NewFirebaseAuthHandlerOptions{
				APIKey: cfg.FirebaseAPIKey,
			})
		}
		return provider, handler, nil
	default:
		provider, err := authproviders.NewJWTAuthProvider(authproviders.NewJWTAuthProviderOptions{
			Secret: cfg.JWTSecret,
			Issuer: cfg.JWTIssuer,
		})
		if err != nil {
			return nil, nil, err
		}
		return provider, authhandlers.NewGuestAuthHandler(provider), nil
	}
}

func newRepository(ctx context.Context, cfg config.DatabaseConfig) (repositories.Repository, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %v", err)
	}

	switch u.Scheme {
	case "sqlite":
		return repositories.NewSQLiteRepository(ctx, u.Host+u.Path, filepath.Join(cfg.MigrationsDir, "sqlite"))
	case "postgres", "postgresql":
		return repositories.NewPostgresRepository(ctx, u.String(), filepath.Join(cfg.MigrationsDir, "postgres"))
	default:
		return nil, fmt.Errorf("unknown database type %s", u.Scheme)
	}
}

func apiTLSConfig(cfg *config.Config) *api.TLSConfig {
	if cfg.TLSCertFile == "" {
		return nil
	}
	return &api.TLSConfig{CertFile: cfg.TLSCertFile, KeyFile: cfg.TLSKeyFile}
}

func wsTLSConfig(cfg *config.Config) *network.TLSConfig {
	if cfg.TLSCertFile == "" {
		return nil
	}
	return &network.TLSConfig{CertFile: cfg.TLSCertFile, KeyFile: cfg.TLSKeyFile}
}
