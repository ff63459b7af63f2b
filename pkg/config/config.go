// Package config loads the server settings from SETTLERS_* environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cbodonnell/settlers/pkg/game/constants"
	"github.com/cbodonnell/settlers/pkg/game/rules"
	"github.com/joho/godotenv"
)

const EnvPrefix = "SETTLERS_"

const (
	// ModeAuthority runs the rules engine and accepts game clients
	ModeAuthority = "authority"
	// ModeObserver follows an authority through redis and serves the read API only
	ModeObserver = "observer"
)

const (
	AuthProviderJWT      = "jwt"
	AuthProviderFirebase = "firebase"
)

type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Mode     string `env:"MODE" envDefault:"authority"`
	// WSPort serves game clients on a dedicated port. Zero mounts them on /ws of the API server.
	WSPort      int    `env:"WS_PORT" envDefault:"8888"`
	APIPort     int    `env:"API_PORT" envDefault:"9090"`
	AllowOrigin string `env:"ALLOW_ORIGIN" envDefault:"*"`
	TLSCertFile string `env:"TLS_CERT_FILE"`
	TLSKeyFile  string `env:"TLS_KEY_FILE"`
	// RedisURL enables replication to observers when set
	RedisURL     string        `env:"REDIS_URL"`
	TickInterval time.Duration `env:"TICK_INTERVAL" envDefault:"50ms"`

	Auth     AuthConfig     `envPrefix:"AUTH_"`
	Database DatabaseConfig `envPrefix:"DATABASE_"`
	Game     GameConfig     `envPrefix:"GAME_"`
}

type AuthConfig struct {
	Provider          string `env:"PROVIDER" envDefault:"jwt"`
	JWTSecret         string `env:"JWT_SECRET"`
	JWTIssuer         string `env:"JWT_ISSUER" envDefault:"settlers"`
	FirebaseProjectID string `env:"FIREBASE_PROJECT_ID"`
	FirebaseAPIKey    string `env:"FIREBASE_API_KEY"`
}

type DatabaseConfig struct {
	// URL is sqlite://<path> or a postgresql:// connection string
	URL           string `env:"URL" envDefault:"sqlite://settlers.db"`
	MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"./migrations"`
}

type GameConfig struct {
	MaxPlayers            int  `env:"MAX_PLAYERS" envDefault:"4"`
	VictoryPointsTarget   int  `env:"VICTORY_POINTS_TARGET" envDefault:"7"`
	MaxCardsBeforeDiscard int  `env:"MAX_CARDS_BEFORE_DISCARD" envDefault:"6"`
	RevealRandomTiles     bool `env:"REVEAL_RANDOM_TILES" envDefault:"true"`
	// Seed fixes the dice and board. Zero picks a time based seed.
	Seed int64 `env:"SEED"`
}

// Load reads envFile into the environment, then parses and validates the
// configuration. Variables already set take precedence over the file. An
// empty envFile loads ./.env when it exists.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %v", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %v", err)
	}

	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Mode {
	case ModeAuthority:
	case ModeObserver:
		if c.RedisURL == "" {
			return fmt.Errorf("observer mode requires %sREDIS_URL", EnvPrefix)
		}
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}

	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return fmt.Errorf("TLS requires both a certificate and a key file")
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive")
	}

	if c.Mode == ModeAuthority {
		if err := c.Auth.validate(); err != nil {
			return err
		}
		if err := c.Game.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c AuthConfig) validate() error {
	switch c.Provider {
	case AuthProviderJWT:
		if c.JWTSecret == "" {
			return fmt.Errorf("the jwt auth provider requires %sAUTH_JWT_SECRET", EnvPrefix)
		}
	case AuthProviderFirebase:
		if c.FirebaseProjectID == "" {
			return fmt.Errorf("the firebase auth provider requires %sAUTH_FIREBASE_PROJECT_ID", EnvPrefix)
		}
	default:
		return fmt.Errorf("unknown auth provider %q", c.Provider)
	}
	return nil
}

func (c GameConfig) validate() error {
	if c.MaxPlayers < constants.MinPlayers {
		return fmt.Errorf("max players must be at least %d", constants.MinPlayers)
	}
	if c.VictoryPointsTarget < 1 {
		return fmt.Errorf("victory points target must be positive")
	}
	if c.MaxCardsBeforeDiscard < 1 {
		return fmt.Errorf("max cards before discard must be positive")
	}
	return nil
}

// EngineOptions returns the rules engine settings for a new session
func (c GameConfig) EngineOptions() rules.NewEngineOptions {
	opts := rules.DefaultEngineOptions()
	opts.MaxPlayers = c.MaxPlayers
	opts.VictoryPointsTarget = c.VictoryPointsTarget
	opts.MaxCardsBeforeDiscard = c.MaxCardsBeforeDiscard
	opts.RevealRandomTiles = c.RevealRandomTiles
	if c.Seed != 0 {
		opts.Seed = c.Seed
	}
	return opts
}
