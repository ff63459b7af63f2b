package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_defaults(t *testing.T) {
	t.Setenv("SETTLERS_AUTH_JWT_SECRET", "secret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ModeAuthority, cfg.Mode)
	assert.Equal(t, 8888, cfg.WSPort)
	assert.Equal(t, 9090, cfg.APIPort)
	assert.Equal(t, 50*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, AuthProviderJWT, cfg.Auth.Provider)
	assert.Equal(t, "settlers", cfg.Auth.JWTIssuer)
	assert.Equal(t, "sqlite://settlers.db", cfg.Database.URL)
	assert.Equal(t, 4, cfg.Game.MaxPlayers)
	assert.Equal(t, 7, cfg.Game.VictoryPointsTarget)
	assert.Equal(t, 6, cfg.Game.MaxCardsBeforeDiscard)
	assert.True(t, cfg.Game.RevealRandomTiles)
}

func TestLoad_environment(t *testing.T) {
	t.Setenv("SETTLERS_AUTH_PROVIDER", "firebase")
	t.Setenv("SETTLERS_AUTH_FIREBASE_PROJECT_ID", "settlers-dev")
	t.Setenv("SETTLERS_GAME_VICTORY_POINTS_TARGET", "10")
	t.Setenv("SETTLERS_GAME_SEED", "42")
	t.Setenv("SETTLERS_TICK_INTERVAL", "200ms")
	t.Setenv("SETTLERS_WS_PORT", "0")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "settlers-dev", cfg.Auth.FirebaseProjectID)
	assert.Equal(t, 0, cfg.WSPort)
	assert.Equal(t, 200*time.Millisecond, cfg.TickInterval)

	opts := cfg.Game.EngineOptions()
	assert.Equal(t, 10, opts.VictoryPointsTarget)
	assert.Equal(t, int64(42), opts.Seed)
	assert.Equal(t, 4, opts.MaxPlayers)
}

func TestLoad_envFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SETTLERS_AUTH_JWT_SECRET=from-file\nSETTLERS_API_PORT=7070\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("SETTLERS_AUTH_JWT_SECRET")
		os.Unsetenv("SETTLERS_API_PORT")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, 7070, cfg.APIPort)

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoad_parseError(t *testing.T) {
	t.Setenv("SETTLERS_AUTH_JWT_SECRET", "secret")
	t.Setenv("SETTLERS_API_PORT", "not-a-port")

	_, err := Load("")
	assert.ErrorContains(t, err, "failed to parse environment")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Mode:         ModeAuthority,
			TickInterval: time.Second,
			Auth:         AuthConfig{Provider: AuthProviderJWT, JWTSecret: "secret"},
			Game:         GameConfig{MaxPlayers: 4, VictoryPointsTarget: 7, MaxCardsBeforeDiscard: 6},
		}
	}

	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{name: "valid", modify: func(c *Config) {}},
		{name: "unknown mode", modify: func(c *Config) { c.Mode = "leader" }, wantErr: true},
		{name: "observer without redis", modify: func(c *Config) { c.Mode = ModeObserver }, wantErr: true},
		{name: "observer skips auth", modify: func(c *Config) {
			c.Mode = ModeObserver
			c.RedisURL = "redis://localhost:6379/0"
			c.Auth = AuthConfig{}
		}},
		{name: "missing jwt secret", modify: func(c *Config) { c.Auth.JWTSecret = "" }, wantErr: true},
		{name: "firebase without project", modify: func(c *Config) { c.Auth.Provider = AuthProviderFirebase }, wantErr: true},
		{name: "unknown provider", modify: func(c *Config) { c.Auth.Provider = "ldap" }, wantErr: true},
		{name: "half tls", modify: func(c *Config) { c.TLSCertFile = "cert.pem" }, wantErr: true},
		{name: "zero tick", modify: func(c *Config) { c.TickInterval = 0 }, wantErr: true},
		{name: "single seat", modify: func(c *Config) { c.Game.MaxPlayers = 1 }, wantErr: true},
		{name: "zero target", modify: func(c *Config) { c.Game.VictoryPointsTarget = 0 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.modify(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
