// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/presencebridge/internal/config"
	"github.com/tomtom215/presencebridge/internal/discord"
	"github.com/tomtom215/presencebridge/internal/middleware"
)

// SessionCounter reports open platform sessions.
type SessionCounter interface {
	Len() int
}

// ClientCounter reports connected control channel clients.
type ClientCounter interface {
	GetClientCount() int
}

// ProcessProbe reports whether the Discord desktop client is running.
type ProcessProbe func(ctx context.Context) (bool, error)

// Deps wires the router to the rest of the process.
type Deps struct {
	Version  string
	Sessions SessionCounter
	Clients  ClientCounter

	// Socket serves the control channel on /socket.io/ and /ws.
	Socket http.Handler

	// Origins are the CORS allowed origins.
	Origins []string

	Metrics config.MetricsConfig

	// Probe defaults to discord.ProcessRunning.
	Probe ProcessProbe

	// ProbeTimeout bounds Probe per health request. Defaults to 2s.
	ProbeTimeout time.Duration
}

// NewRouter builds the HTTP handler.
func NewRouter(deps Deps) http.Handler {
	if deps.Probe == nil {
		deps.Probe = discord.ProcessRunning
	}
	if deps.ProbeTimeout <= 0 {
		deps.ProbeTimeout = 2 * time.Second
	}
	h := NewHandler(deps)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(corsHandler(deps.Origins))

	if deps.Metrics.Enabled {
		r.Handle(deps.Metrics.Path, promhttp.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		r.Get("/", h.Root)
		r.Get("/healthz", h.Healthz)
	})

	if deps.Socket != nil {
		r.Handle("/socket.io", deps.Socket)
		r.Handle("/socket.io/", deps.Socket)
		r.Handle("/ws", deps.Socket)
	}

	return r
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           86400, // 24 hours
	})
}
