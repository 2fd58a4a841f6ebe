// Package config holds the CLI client's settings.
package config

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/flagx"
)

// Config holds runtime settings for the taskkeeper CLI.
//
// Fields:
//   - ServerAddr: host:port of the server's gRPC endpoint.
//   - RequestTimeout: deadline applied to every call.
type Config struct {
	ServerAddr     string        `env:"TASKKEEPER_SERVER_ADDR"`
	RequestTimeout time.Duration `env:"TASKKEEPER_REQUEST_TIMEOUT"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerAddr = "127.0.0.1:50051"
	c.RequestTimeout = 10 * time.Second
}

// Load constructs a Config, applies defaults, then overlays values from
// JSON (-c / -config), the environment and command-line flags. Later
// sources take precedence over earlier ones.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, flagx.ConfigPath(args)); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	if cfg.ServerAddr == "" {
		return nil, errors.New("server address is required")
	}
	if cfg.RequestTimeout <= 0 {
		return nil, errors.New("request timeout must be positive")
	}
	return cfg, nil
}
