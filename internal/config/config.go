// Package config provides Viper-based configuration loading for the
// dots-and-boxes server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds TCP listener settings.
type ServerConfig struct {
	// Host is the bind address for the TCP listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the listener.
	Port int `mapstructure:"port"`
	// MaxClients is the maximum number of concurrent client connections.
	// Connections beyond the limit are closed at accept.
	MaxClients int `mapstructure:"max_clients"`
	// ReadTimeout is the per-read timeout for client connections.
	// Zero disables read deadlines (idle clients are allowed).
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-write timeout for client connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// GameConfig holds room and rule settings.
type GameConfig struct {
	// MaxRooms is the number of concurrently active room slots.
	MaxRooms int `mapstructure:"max_rooms"`
	// DefaultGridSize is the box count per side used when CREATE_ROOM
	// omits grid_size.
	DefaultGridSize int `mapstructure:"default_grid_size"`
	// MaxGridDim is the maximum dot count per axis. Requested sizes are
	// clamped so that size+1 never exceeds this.
	MaxGridDim int `mapstructure:"max_grid_dim"`
	// EnforceTurnOrder rejects PLACE_LINE from the seat whose turn it is
	// not. The rule engine itself never checks this; the original server
	// let either seated player move at any time, so the gate defaults off.
	EnforceTurnOrder bool `mapstructure:"enforce_turn_order"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Game    GameConfig    `mapstructure:"game"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGame(c.Game); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var errs []string
	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", s.Port))
	}
	if s.MaxClients < 1 {
		errs = append(errs, fmt.Sprintf("server.max_clients must be >= 1, got %d", s.MaxClients))
	}
	if s.ReadTimeout < 0 {
		errs = append(errs, "server.read_timeout must not be negative")
	}
	if s.WriteTimeout < 0 {
		errs = append(errs, "server.write_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGame(g GameConfig) error {
	var errs []string
	if g.MaxRooms < 1 {
		errs = append(errs, fmt.Sprintf("game.max_rooms must be >= 1, got %d", g.MaxRooms))
	}
	if g.DefaultGridSize < 1 {
		errs = append(errs, fmt.Sprintf("game.default_grid_size must be >= 1, got %d", g.DefaultGridSize))
	}
	if g.MaxGridDim < 3 {
		errs = append(errs, fmt.Sprintf("game.max_grid_dim must be >= 3, got %d", g.MaxGridDim))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with DOTBOXD_ prefix
	v.SetEnvPrefix("DOTBOXD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Default returns the built-in configuration used when no config file is given.
//
// Postcondition: The returned Config passes Validate.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Unmarshalling fixed defaults cannot fail.
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 50000)
	v.SetDefault("server.max_clients", 10)
	v.SetDefault("server.read_timeout", "0")
	v.SetDefault("server.write_timeout", "30s")

	v.SetDefault("game.max_rooms", 10)
	v.SetDefault("game.default_grid_size", 4)
	v.SetDefault("game.max_grid_dim", 6)
	v.SetDefault("game.enforce_turn_order", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
