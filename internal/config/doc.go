// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

/*
Package config provides centralized configuration management for PresenceBridge.

# Configuration Sources

Configuration is layered with Koanf v2, later layers overriding earlier ones:

 1. Built-in defaults (structs provider)
 2. An optional YAML file: the --config flag, CONFIG_PATH, or the first of
    DefaultConfigPaths that exists
 3. Mapped environment variables

Unmapped environment variables are ignored.

# Environment Variables

Server:
  - HTTP_HOST: Bind address (default: 127.0.0.1)
  - HTTP_PORT: Listen port (default: 3020)
  - CORS_ORIGINS: Comma-separated allowed origins (default: *)
  - SOCKETIO_PING_INTERVAL, SOCKETIO_PING_TIMEOUT, SOCKETIO_MAX_PAYLOAD

Only the websocket transport of the control channel is served. Engine.IO
long polling is refused with error code 0 (Transport unknown), so
socket.io-client producers must connect with transports: ["websocket"].

Discord:
  - DISCORD_CLIENT_ID: Application used for the discordUser bootstrap
  - DISCORD_CONNECT_TIMEOUT: Bound on a session connect, dial and READY wait (default: 10s)
  - DISCORD_CALL_TIMEOUT: Bound on one IPC command after READY (default: 5s)
  - DISCORD_IPC_DIR: Directory holding discord-ipc-N, overriding discovery
  - DISCORD_SKIP_DUPLICATES: Skip activities identical to the last one sent
  - DISCORD_BREAKER_THRESHOLD: Consecutive dial failures before the breaker opens (0 disables)
  - DISCORD_BREAKER_TIMEOUT: Open state duration

Local presences:
  - LOCAL_PRESENCE_DIR: Directory to watch (empty disables)
  - LOCAL_PRESENCE_DEBOUNCE: Changes are reported this long after the first
    one, even while writes continue (default: 1s)

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

Metrics:
  - METRICS_ENABLED, METRICS_PATH

Supervisor:
  - SUPERVISOR_FAILURE_THRESHOLD, SUPERVISOR_FAILURE_DECAY,
    SUPERVISOR_FAILURE_BACKOFF, SUPERVISOR_SHUTDOWN_TIMEOUT

# Example YAML

	server:
	  host: 127.0.0.1
	  port: 3020
	discord:
	  client_id: "503557087041683458"
	  skip_duplicate_activity: true
	  breaker:
	    threshold: 3
	    timeout: 30s
	local_presence:
	  dir: /home/me/presences
	logging:
	  level: debug
	  format: console
*/
package config
