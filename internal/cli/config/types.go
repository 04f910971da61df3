// Package config provides configuration management for the leapq CLI.
package config

import "time"

// Config holds all CLI configuration options.
type Config struct {
	Dialect   string             `koanf:"dialect"`
	StatePath string             `koanf:"state_path"`
	Output    string             `koanf:"output"`
	Verbose   bool               `koanf:"verbose"`
	Precision int32              `koanf:"precision"`
	History   bool               `koanf:"history"`
	Bindings  map[string]float64 `koanf:"bindings"`
	Backend   BackendConfig      `koanf:"backend"`
	Serve     ServeConfig        `koanf:"serve"`
}

// BackendConfig configures the mock backend used by estimate.
type BackendConfig struct {
	Samples int    `koanf:"samples"`
	Seed    uint64 `koanf:"seed"`
}

// ServeConfig configures the HTTP API.
// SessionSecret signs session cookies; when empty a random key is used and
// sessions end with the process.
type ServeConfig struct {
	Addr          string        `koanf:"addr"`
	SessionSecret string        `koanf:"session_secret"`
	ShutdownGrace time.Duration `koanf:"shutdown_grace"`
}

// Default configuration values.
const (
	DefaultDialect   = "quil"
	DefaultStateFile = ".leapq/history.db"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultPrecision = 16
	DefaultSamples   = 1000
	DefaultServeAddr = "127.0.0.1:8080"
)
