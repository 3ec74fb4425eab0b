// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/presencebridge/internal/api"
	"github.com/tomtom215/presencebridge/internal/config"
	"github.com/tomtom215/presencebridge/internal/discord"
	"github.com/tomtom215/presencebridge/internal/dispatch"
	"github.com/tomtom215/presencebridge/internal/localpresence"
	"github.com/tomtom215/presencebridge/internal/logging"
	"github.com/tomtom215/presencebridge/internal/models"
	"github.com/tomtom215/presencebridge/internal/session"
	"github.com/tomtom215/presencebridge/internal/supervisor"
	"github.com/tomtom215/presencebridge/internal/supervisor/services"
	"github.com/tomtom215/presencebridge/internal/websocket"
)

// app holds the wired components.
type app struct {
	tree       *supervisor.SupervisorTree
	registry   *session.Registry
	hub        *websocket.Hub
	dispatcher *dispatch.Dispatcher
	watcher    *localpresence.Watcher
	server     *http.Server
}

// newApp wires every component and registers the services with a new
// supervisor tree. Nothing runs until serve.
func newApp(cfg *config.Config, version string) (*app, error) {
	dialer := discord.NewDialer(discord.DialerConfig{
		Dir:              cfg.Discord.IPCDir,
		CallTimeout:      cfg.Discord.CallTimeout,
		BreakerThreshold: cfg.Discord.Breaker.Threshold,
		BreakerTimeout:   cfg.Discord.Breaker.Timeout,
	})
	transport := session.DiscordTransport{Dialer: dialer}

	sessionOpts := session.Options{
		ConnectTimeout: cfg.Discord.ConnectTimeout,
		SkipDuplicates: cfg.Discord.SkipDuplicateActivity,
	}
	registry := session.NewRegistry(transport, sessionOpts)

	hub := websocket.NewHub()

	dispatcher := dispatch.New(dispatch.Config{
		Version:         version,
		DefaultClientID: models.Identity(cfg.Discord.ClientID),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		SessionOptions:  sessionOpts,
	}, registry, transport, hub)

	socket := websocket.ServeWS(hub, dispatcher, websocket.Config{
		PingInterval:   cfg.Server.PingInterval,
		PingTimeout:    cfg.Server.PingTimeout,
		MaxPayload:     cfg.Server.MaxPayload,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	router := api.NewRouter(api.Deps{
		Version:  version,
		Sessions: registry,
		Clients:  hub,
		Socket:   socket,
		Origins:  cfg.Server.AllowedOrigins,
		Metrics:  cfg.Metrics,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: cfg.Supervisor.FailureThreshold,
		FailureDecay:     cfg.Supervisor.FailureDecay,
		FailureBackoff:   cfg.Supervisor.FailureBackoff,
		ShutdownTimeout:  cfg.Supervisor.ShutdownTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create supervisor tree: %w", err)
	}

	a := &app{
		tree:       tree,
		registry:   registry,
		hub:        hub,
		dispatcher: dispatcher,
		server:     server,
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	tree.AddSessionService(dispatcher)

	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	if cfg.LocalPresence.Enabled() {
		a.watcher = localpresence.NewWatcher(localpresence.Config{
			Dir:      cfg.LocalPresence.Dir,
			Debounce: cfg.LocalPresence.Debounce,
		}, dispatcher)
		tree.AddMessagingService(a.watcher)
		logging.Info().Str("dir", cfg.LocalPresence.Dir).Msg("Local presence watcher added to supervisor tree")
	}

	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	return a, nil
}

// serve runs the supervisor tree until ctx is canceled or the tree fails.
func (a *app) serve(ctx context.Context) error {
	logging.Info().Msg("Starting supervisor tree...")
	errCh := a.tree.ServeBackground(ctx)

	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			serveErr = err
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) && serveErr == nil {
			serveErr = err
		}
	}

	unstopped, _ := a.tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	return serveErr
}
