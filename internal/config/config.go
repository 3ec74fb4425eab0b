// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig        `koanf:"server"`
	Discord       DiscordConfig       `koanf:"discord"`
	LocalPresence LocalPresenceConfig `koanf:"local_presence"`
	Logging       LoggingConfig       `koanf:"logging"`
	Supervisor    SupervisorConfig    `koanf:"supervisor"`
	Metrics       MetricsConfig       `koanf:"metrics"`

	// Source is the config file that was loaded, empty when none was.
	Source string `koanf:"-"`
}

// ServerConfig holds the HTTP listener and control channel settings.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	AllowedOrigins    []string      `koanf:"allowed_origins"`

	// Engine.IO heartbeat and frame limit.
	PingInterval time.Duration `koanf:"ping_interval"`
	PingTimeout  time.Duration `koanf:"ping_timeout"`
	MaxPayload   int64         `koanf:"max_payload"`
}

// Addr returns host:port for the listener.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// DiscordConfig holds the desktop client IPC settings.
type DiscordConfig struct {
	// ClientID is the application used to look up the local user when a
	// producer connects.
	ClientID string `koanf:"client_id"`

	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	CallTimeout    time.Duration `koanf:"call_timeout"`

	// IPCDir overrides socket discovery. Ignored on Windows.
	IPCDir string `koanf:"ipc_dir"`

	// SkipDuplicateActivity drops updates identical to the last one applied.
	SkipDuplicateActivity bool `koanf:"skip_duplicate_activity"`

	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig tunes the dial circuit breaker.
type BreakerConfig struct {
	// Threshold is the number of consecutive failed dials before the
	// breaker opens. 0 disables the breaker.
	Threshold uint32        `koanf:"threshold"`
	Timeout   time.Duration `koanf:"timeout"`
}

// LocalPresenceConfig holds the bundle watcher settings.
type LocalPresenceConfig struct {
	// Dir is the directory to watch. Empty disables the watcher.
	Dir      string        `koanf:"dir"`
	Debounce time.Duration `koanf:"debounce"`
}

// Enabled reports whether a directory is configured.
func (l LocalPresenceConfig) Enabled() bool {
	return l.Dir != ""
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// SupervisorConfig mirrors the suture failure policy.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// MetricsConfig controls the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}
