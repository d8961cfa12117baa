package server

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// Config represents the forjid configuration file.
type Config struct {
	// Addr is the listen address. Can be overridden by CLI flag.
	Addr string `yaml:"addr"`
	// Name names the published tree.
	Name string `yaml:"name"`
	// WatcherExpiry drops watchers idle for longer.
	WatcherExpiry time.Duration `yaml:"watcherExpiry"`
	// PushInterval is how often websocket watchers are sent changes.
	PushInterval time.Duration `yaml:"pushInterval"`
	// Datasources enables the Datasource object type in the tree.
	Datasources bool `yaml:"datasources"`
	// Initial is merged into the tree at startup.
	Initial map[string]any `yaml:"initial"`
}

// LoadConfig loads a YAML configuration file over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Addr:          "localhost:8420",
		Name:          "forjid",
		WatcherExpiry: 60 * time.Second,
		PushInterval:  100 * time.Millisecond,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.WatcherExpiry < 0 {
		return fmt.Errorf("%w: negative watcherExpiry", ErrConfig)
	}
	if c.PushInterval <= 0 {
		return fmt.Errorf("%w: pushInterval must be positive", ErrConfig)
	}
	return nil
}
