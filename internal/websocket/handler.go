// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

package websocket

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/presencebridge/internal/logging"
)

// Config tunes the Engine.IO session.
type Config struct {
	PingInterval   time.Duration
	PingTimeout    time.Duration
	MaxPayload     int64
	AllowedOrigins []string
}

// DefaultConfig returns the Engine.IO v4 reference defaults.
func DefaultConfig() Config {
	return Config{
		PingInterval:   25 * time.Second,
		PingTimeout:    20 * time.Second,
		MaxPayload:     1_000_000,
		AllowedOrigins: []string{"*"},
	}
}

// Engine.IO handshake error codes.
const (
	eioErrTransportUnknown   = 0
	eioErrUnknownSID         = 1
	eioErrUnsupportedVersion = 5
)

const registerTimeout = 5 * time.Second

// ServeWS upgrades Engine.IO websocket requests and attaches the client to
// hub. Polling is refused.
func ServeWS(hub *Hub, handler Handler, cfg Config) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      originChecker(cfg.AllowedOrigins),
		HandshakeTimeout: 10 * time.Second,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if v := q.Get("EIO"); v != "" && v != "4" {
			writeHandshakeError(w, eioErrUnsupportedVersion, "Unsupported protocol version")
			return
		}
		if t := q.Get("transport"); t != "" && t != "websocket" {
			logging.Warn().Str("transport", t).Str("remote", r.RemoteAddr).
				Msg("refusing non-websocket transport, connect with transports: [\"websocket\"]")
			writeHandshakeError(w, eioErrTransportUnknown, "Transport unknown")
			return
		}
		if q.Get("sid") != "" {
			// Upgrades from an existing polling session.
			writeHandshakeError(w, eioErrUnknownSID, "Session ID unknown")
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logging.Warn().Err(err).Msg("websocket upgrade error")
			return
		}

		client := NewClient(hub, conn, handler, cfg)
		select {
		case hub.Register <- client:
		case <-time.After(registerTimeout):
			logging.Error().Msg("websocket hub not running, closing connection")
			_ = conn.Close()
			return
		}
		client.Start()
	}
}

func writeHandshakeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]any{"code": code, "message": message})
}

// originChecker allows requests without an Origin header, since desktop
// companions are not browsers, and browser origins on the allow list.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		logging.Warn().Str("origin", origin).Msg("websocket connection rejected from unauthorized origin")
		return false
	}
}
