package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the docvault CLI.
//
// RPCTimeout bounds each call to the vault server. Blob transfers to the
// object store use the same limit.
type Config struct {
	ServerEndpointAddr string
	SessionDBPath      string
	RPCTimeout         time.Duration
	LogLevel           string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.SessionDBPath = "docvault.db"
	c.RPCTimeout = 30 * time.Second
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	args := os.Args[1:]

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
