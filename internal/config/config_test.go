package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         50000,
			MaxClients:   10,
			ReadTimeout:  0,
			WriteTimeout: 30 * time.Second,
		},
		Game: GameConfig{
			MaxRooms:        10,
			DefaultGridSize: 4,
			MaxGridDim:      6,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestServerAddr(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "0.0.0.0:50000", cfg.Server.Addr())
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 50000, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Server.MaxClients)
	assert.Equal(t, 10, cfg.Game.MaxRooms)
	assert.Equal(t, 4, cfg.Game.DefaultGridSize)
	assert.Equal(t, 6, cfg.Game.MaxGridDim)
	assert.False(t, cfg.Game.EnforceTurnOrder)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
server:
  host: 127.0.0.1
  port: 51000
  max_clients: 4
  write_timeout: 10s
game:
  max_rooms: 2
  default_grid_size: 3
  max_grid_dim: 6
  enforce_turn_order: true
logging:
  level: debug
  format: console
`), 0o644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:51000", cfg.Server.Addr())
	assert.Equal(t, 4, cfg.Server.MaxClients)
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 2, cfg.Game.MaxRooms)
	assert.Equal(t, 3, cfg.Game.DefaultGridSize)
	assert.True(t, cfg.Game.EnforceTurnOrder)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.yaml")
	err := os.WriteFile(path, []byte(`
logging:
  level: warn
`), 0o644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50000, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Game.MaxRooms)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestInvalidLoggingLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}

func TestInvalidLoggingFormat(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidatePortRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		port := rapid.IntRange(1, 65535).Draw(t, "port")
		cfg := validConfig()
		cfg.Server.Port = port
		assert.NoError(t, cfg.Validate())
	})
}

func TestValidatePortOutOfRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		port := rapid.OneOf(
			rapid.IntRange(-1000, 0),
			rapid.IntRange(65536, 100000),
		).Draw(t, "port")
		cfg := validConfig()
		cfg.Server.Port = port
		assert.Error(t, cfg.Validate())
	})
}

func TestValidateGameBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := validConfig()
		cfg.Game.MaxRooms = rapid.IntRange(1, 1000).Draw(t, "max_rooms")
		cfg.Game.DefaultGridSize = rapid.IntRange(1, 20).Draw(t, "default_grid_size")
		cfg.Game.MaxGridDim = rapid.IntRange(3, 50).Draw(t, "max_grid_dim")
		assert.NoError(t, cfg.Validate())
	})
}

func TestValidateGameRejectsTinyGrid(t *testing.T) {
	cfg := validConfig()
	cfg.Game.MaxGridDim = 2
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "game.max_grid_dim")
}

func TestValidateAggregatesErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Game.MaxRooms = 0
	cfg.Logging.Level = "bogus"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "game.max_rooms")
	assert.Contains(t, err.Error(), "logging.level")
}
