// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// Socket.IO Metrics
	SocketIOClientsConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "socketio_clients_connected",
			Help: "Current number of connected Socket.IO producers",
		},
	)

	SocketIOEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socketio_events_total",
			Help: "Total number of Socket.IO events received",
		},
		[]string{"event"},
	)

	SocketIOEventsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socketio_events_rejected_total",
			Help: "Total number of Socket.IO events dropped before dispatch",
		},
		[]string{"event", "reason"}, // "decode", "validation", "unknown"
	)

	// Session Metrics
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "presence_sessions_active",
			Help: "Current number of open platform sessions",
		},
	)

	PresenceUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presence_updates_total",
			Help: "Total number of presence updates by outcome",
		},
		[]string{"outcome"},
	)

	DispatchQueueDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "presence_dispatch_queue_seconds",
			Help:    "Time an event waits in its identity lane before running",
			Buckets: []float64{.0001, .001, .01, .1, .5, 1, 5, 10},
		},
	)

	// Discord IPC Metrics
	DiscordConnectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discord_connects_total",
			Help: "Total number of Discord IPC connection attempts by result",
		},
		[]string{"result"},
	)

	DiscordConnectDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "discord_connect_duration_seconds",
			Help:    "Duration of Discord IPC dial and handshake in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	DiscordCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discord_commands_total",
			Help: "Total number of Discord IPC commands by result",
		},
		[]string{"command", "result"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through the circuit breaker",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Local Presence Metrics
	LocalPresenceReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "local_presence_reloads_total",
			Help: "Total number of local presence directory reloads",
		},
		[]string{"result"},
	)

	// Application Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application build information",
		},
		[]string{"version", "go_version"},
	)
)

// Presence update outcomes.
const (
	OutcomeApplied   = "applied"
	OutcomeCleared   = "cleared"
	OutcomeDuplicate = "duplicate"
	OutcomeDropped   = "dropped"
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackClient tracks connected Socket.IO producers
func TrackClient(inc bool) {
	if inc {
		SocketIOClientsConnected.Inc()
	} else {
		SocketIOClientsConnected.Dec()
	}
}

// RecordSocketIOEvent counts a received event
func RecordSocketIOEvent(event string) {
	SocketIOEventsTotal.WithLabelValues(event).Inc()
}

// RecordSocketIORejected counts an event dropped before dispatch
func RecordSocketIORejected(event, reason string) {
	SocketIOEventsRejected.WithLabelValues(event, reason).Inc()
}

// RecordPresenceUpdate counts a presence update outcome
func RecordPresenceUpdate(outcome string) {
	PresenceUpdatesTotal.WithLabelValues(outcome).Inc()
}

// RecordQueueWait records how long an event waited in its lane
func RecordQueueWait(d time.Duration) {
	DispatchQueueDuration.Observe(d.Seconds())
}

// SetSessionsActive sets the open session gauge
func SetSessionsActive(n int) {
	SessionsActive.Set(float64(n))
}

// RecordDiscordConnect records a connection attempt. result is "success" or
// an error kind.
func RecordDiscordConnect(result string, duration time.Duration) {
	DiscordConnectsTotal.WithLabelValues(result).Inc()
	DiscordConnectDuration.Observe(duration.Seconds())
}

// RecordDiscordCommand records a command round trip
func RecordDiscordCommand(command string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	DiscordCommandsTotal.WithLabelValues(command, result).Inc()
}

// RecordLocalPresenceReload records a directory reload
func RecordLocalPresenceReload(err error) {
	if err != nil {
		LocalPresenceReloads.WithLabelValues("error").Inc()
		return
	}
	LocalPresenceReloads.WithLabelValues("success").Inc()
}

// SetAppInfo publishes build information
func SetAppInfo(version, goVersion string) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
}
