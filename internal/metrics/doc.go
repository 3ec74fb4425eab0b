// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

/*
Package metrics provides Prometheus metrics collection and export for observability.

Collectors are registered with the default registry at package init through
promauto and exposed by the HTTP server at /metrics:

	curl http://127.0.0.1:3020/metrics

# Available Metrics

HTTP Metrics:
  - http_requests_total: Total HTTP requests (counter)
    Labels: method, endpoint, status
  - http_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint

Socket.IO Metrics:
  - socketio_clients_connected: Connected producers (gauge)
  - socketio_events_total: Events received (counter)
    Labels: event
  - socketio_events_rejected_total: Events dropped before dispatch (counter)
    Labels: event, reason

Session Metrics:
  - presence_sessions_active: Open platform sessions (gauge)
  - presence_updates_total: Presence updates by outcome (counter)
    Labels: outcome (applied, cleared, duplicate, dropped)
  - presence_dispatch_queue_seconds: Time an event waits in its lane (histogram)

Discord IPC Metrics:
  - discord_connects_total: Connection attempts by result (counter)
    Labels: result
  - discord_connect_duration_seconds: Dial plus handshake time (histogram)
  - discord_commands_total: Commands sent (counter)
    Labels: command, result

Circuit Breaker Metrics:
  - circuit_breaker_state: 0 closed, 1 half-open, 2 open (gauge)
    Labels: name
  - circuit_breaker_requests_total: Requests by result (counter)
    Labels: name, result
  - circuit_breaker_transitions_total: State changes (counter)
    Labels: name, from, to

Local Presence Metrics:
  - local_presence_reloads_total: Directory reloads by result (counter)
    Labels: result

Application Metrics:
  - app_info: Build information (gauge, always 1)
    Labels: version, go_version
*/
package metrics
