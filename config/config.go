// Package config defines the whiteboard application configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Store driver names accepted in the config file.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig `json:"server" yaml:"server"`
	Store    StoreConfig  `json:"store" yaml:"store"`
	LogLevel string       `json:"log_level" yaml:"log_level"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Addr      string `json:"addr" yaml:"addr"`             // listen address, e.g., ":3000"
	StaticDir string `json:"static_dir" yaml:"static_dir"` // frontend files; empty disables
	WSBuffer  int    `json:"ws_buffer" yaml:"ws_buffer"`   // pending events per ws client
}

// StoreConfig selects and configures the todo store.
type StoreConfig struct {
	Driver string `json:"driver" yaml:"driver"` // "sqlite" or "memory"
	Path   string `json:"path" yaml:"path"`     // sqlite database file
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:     ":3000",
			WSBuffer: 64,
		},
		Store: StoreConfig{
			Driver: DriverSQLite,
			Path:   "./whiteboard.db",
		},
		LogLevel: "info",
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the daemon cannot run with.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver == DriverSQLite && c.Store.Path == "" {
		return fmt.Errorf("sqlite store requires a path")
	}
	return nil
}
