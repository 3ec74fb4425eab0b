// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/presencebridge/internal/logging"
)

// StatusText is served at the root path.
const StatusText = "presencebridge is running. Go to https://github.com/tomtom215/presencebridge for help and support."

// Health statuses.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
)

// HealthStatus is the /healthz body.
type HealthStatus struct {
	Status         string  `json:"status"`
	Version        string  `json:"version"`
	Sessions       int     `json:"sessions"`
	Clients        int     `json:"clients"`
	DiscordRunning bool    `json:"discord_running"`
	DiscordError   string  `json:"discord_error,omitempty"`
	Uptime         float64 `json:"uptime_seconds"`
}

// Handler serves the status and health routes.
type Handler struct {
	deps      Deps
	startTime time.Time
}

// NewHandler creates a Handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{deps: deps, startTime: time.Now()}
}

// Root answers with a one-line status.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(StatusText)); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Failed to write status text")
	}
}

// Healthz reports bridge state. A missing Discord client degrades the
// status; the response is still 200.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{
		Status:  StatusOK,
		Version: h.deps.Version,
		Uptime:  time.Since(h.startTime).Seconds(),
	}
	if h.deps.Sessions != nil {
		health.Sessions = h.deps.Sessions.Len()
	}
	if h.deps.Clients != nil {
		health.Clients = h.deps.Clients.GetClientCount()
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.deps.ProbeTimeout)
	defer cancel()

	running, err := h.deps.Probe(ctx)
	switch {
	case err != nil:
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Discord process probe failed")
		health.Status = StatusDegraded
		health.DiscordError = err.Error()
	case !running:
		health.Status = StatusDegraded
	}
	health.DiscordRunning = running

	respondJSON(w, r, http.StatusOK, health)
}

// respondJSON writes body as JSON. Health data is never cached.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to write JSON response")
	}
}
