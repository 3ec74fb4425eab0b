// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

/*
Package middleware provides HTTP middleware for the status and health routes.

Key Components:

  - Request ID: UUID-based request tracking, mirrored into the logging
    correlation id so handler log lines can be grouped
  - Prometheus Metrics: request count and latency per chi route pattern

Both are chi-compatible (func(http.Handler) http.Handler):

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Group(func(r chi.Router) {
	    r.Use(middleware.PrometheusMetrics)
	    r.Get("/healthz", h.Healthz)
	})

The control channel routes are mounted outside the metrics group: a
websocket request lasts as long as the producer stays connected, so its
duration says nothing about request latency.
*/
package middleware
