// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

/*
Package supervisor provides process supervision for PresenceBridge using suture v4.

# Overview

The supervisor tree organizes services into three layers:

	RootSupervisor ("presencebridge")
	├── SessionSupervisor ("session-layer")
	│   └── Dispatcher
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocketHubService
	│   └── LocalPresenceWatcher (if a directory is configured)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted with suture's backoff policy. Supervisor
events are logged through sutureslog into the zerolog logger, using
logging.NewSlogLogger.

On context cancellation every service stops; the dispatcher clears the
activity of every open session before closing the Discord connections.

# Usage Example

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddSessionService(dispatcher)
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	errCh := tree.ServeBackground(ctx)
*/
package supervisor
