// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

/*
Package api provides the HTTP surface of the bridge.

Routes:

  - GET /            plain text status line
  - GET /healthz     JSON health report (sessions, clients, Discord process)
  - GET /metrics     Prometheus exposition, when enabled
  - /socket.io/, /ws Socket.IO control channel (websocket transport)

Middleware Stack:

	r.Use(middleware.RequestID)   // X-Request-ID + logging correlation id
	r.Use(chimiddleware.RealIP)   // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(...))      // go-chi/cors, must be global for preflight

The status and health routes additionally run middleware.PrometheusMetrics.

Usage Example:

	router := api.NewRouter(api.Deps{
	    Version:  version,
	    Sessions: registry,
	    Clients:  hub,
	    Socket:   websocket.ServeWS(hub, dispatcher, wsConfig),
	    Origins:  cfg.Server.AllowedOrigins,
	    Metrics:  cfg.Metrics,
	})
	srv := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
*/
package api
