// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tomtom215/presencebridge/internal/api"
	"github.com/tomtom215/presencebridge/internal/logging"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

func TestNewApp(t *testing.T) {
	cfg := loadDefaults(t)

	a, err := newApp(cfg, "1.0.0")
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	if a.watcher != nil {
		t.Error("watcher created without a local presence directory")
	}
	if a.server.Addr != "127.0.0.1:3020" {
		t.Errorf("server addr = %q", a.server.Addr)
	}

	rec := httptest.NewRecorder()
	a.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Body.String() != api.StatusText {
		t.Errorf("GET / = %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	a.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/socket.io/?EIO=4&transport=polling", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("polling handshake status = %d, want 400", rec.Code)
	}
}

func TestNewApp_LocalPresence(t *testing.T) {
	cfg := loadDefaults(t)
	cfg.LocalPresence.Dir = t.TempDir()

	a, err := newApp(cfg, "1.0.0")
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	if a.watcher == nil {
		t.Fatal("watcher not created")
	}
	if !strings.Contains(a.watcher.String(), "local-presence") {
		t.Errorf("watcher name = %q", a.watcher.String())
	}
}
