// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tomtom215/presencebridge/internal/validation"
)

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateDiscord(); err != nil {
		return err
	}

	if err := c.validateLocalPresence(); err != nil {
		return err
	}

	if err := c.validateMetrics(); err != nil {
		return err
	}

	if err := c.validateSupervisor(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateServer validates the listener and Engine.IO settings
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if err := requirePositive("HTTP_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout); err != nil {
		return err
	}
	if c.Server.Host == "" {
		return fmt.Errorf("HTTP_HOST is required")
	}
	if err := requirePositive("SOCKETIO_PING_INTERVAL", c.Server.PingInterval); err != nil {
		return err
	}
	if err := requirePositive("SOCKETIO_PING_TIMEOUT", c.Server.PingTimeout); err != nil {
		return err
	}
	if c.Server.MaxPayload < 1024 {
		return fmt.Errorf("SOCKETIO_MAX_PAYLOAD must be at least 1024 bytes")
	}
	return c.validateOrigins()
}

// validateOrigins rejects a wildcard mixed with explicit origins, which
// usually means the wildcard was left in by mistake.
func (c *Config) validateOrigins() error {
	if len(c.Server.AllowedOrigins) < 2 {
		return nil
	}
	for _, o := range c.Server.AllowedOrigins {
		if o == "*" {
			return fmt.Errorf("CORS_ORIGINS cannot mix * with explicit origins")
		}
	}
	return nil
}

// discordIDs is validated with the same rules as producer payloads.
type discordIDs struct {
	ClientID string `json:"DISCORD_CLIENT_ID" validate:"required,snowflake"`
}

// validateDiscord validates the IPC settings
func (c *Config) validateDiscord() error {
	if verr := validation.ValidateStruct(&discordIDs{ClientID: c.Discord.ClientID}); verr != nil {
		return fmt.Errorf("DISCORD_CLIENT_ID must be a numeric application id")
	}
	if err := requirePositive("DISCORD_CONNECT_TIMEOUT", c.Discord.ConnectTimeout); err != nil {
		return err
	}
	if err := requirePositive("DISCORD_CALL_TIMEOUT", c.Discord.CallTimeout); err != nil {
		return err
	}
	if c.Discord.CallTimeout > c.Discord.ConnectTimeout {
		return fmt.Errorf("DISCORD_CALL_TIMEOUT must not exceed DISCORD_CONNECT_TIMEOUT")
	}
	if c.Discord.IPCDir != "" {
		if err := requireDir("DISCORD_IPC_DIR", c.Discord.IPCDir); err != nil {
			return err
		}
	}
	if c.Discord.Breaker.Threshold > 0 {
		return requirePositive("DISCORD_BREAKER_TIMEOUT", c.Discord.Breaker.Timeout)
	}
	return nil
}

// validateLocalPresence validates the watcher settings (only if enabled)
func (c *Config) validateLocalPresence() error {
	if !c.LocalPresence.Enabled() {
		return nil
	}
	if err := requireDir("LOCAL_PRESENCE_DIR", c.LocalPresence.Dir); err != nil {
		return err
	}
	return requirePositive("LOCAL_PRESENCE_DEBOUNCE", c.LocalPresence.Debounce)
}

// validateMetrics validates the metrics endpoint path (only if enabled)
func (c *Config) validateMetrics() error {
	if !c.Metrics.Enabled {
		return nil
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("METRICS_PATH must start with /")
	}
	switch c.Metrics.Path {
	case "/", "/healthz", "/socket.io", "/ws":
		return fmt.Errorf("METRICS_PATH %s collides with a built-in route", c.Metrics.Path)
	}
	return nil
}

// validateSupervisor validates the failure policy
func (c *Config) validateSupervisor() error {
	if c.Supervisor.FailureThreshold <= 0 {
		return fmt.Errorf("SUPERVISOR_FAILURE_THRESHOLD must be positive")
	}
	if c.Supervisor.FailureDecay <= 0 {
		return fmt.Errorf("SUPERVISOR_FAILURE_DECAY must be positive")
	}
	if err := requirePositive("SUPERVISOR_FAILURE_BACKOFF", c.Supervisor.FailureBackoff); err != nil {
		return err
	}
	if c.Supervisor.ShutdownTimeout <= c.Server.ShutdownTimeout {
		return fmt.Errorf("SUPERVISOR_SHUTDOWN_TIMEOUT must exceed HTTP_SHUTDOWN_TIMEOUT")
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if err := c.validateLogLevel(); err != nil {
		return err
	}
	return c.validateLogFormat()
}

// validateLogLevel validates the log level configuration
func (c *Config) validateLogLevel() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	return nil
}

// validateLogFormat validates the log format configuration
func (c *Config) validateLogFormat() error {
	if c.Logging.Format == "" {
		return nil
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

func requirePositive(name string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%s must be positive", name)
	}
	return nil
}

func requireDir(name, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s %s is not a directory", name, path)
	}
	return nil
}
