// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

/*
Package main is the entry point for the PresenceBridge server.

PresenceBridge relays rich presence from browser extensions and other
producers to the locally running Discord client. Producers connect over
Socket.IO; every distinct application id gets its own Discord IPC session.

# Application Architecture

	RootSupervisor ("presencebridge")
	├── SessionSupervisor ("session-layer")
	│   └── Dispatcher (per-identity lanes, shutdown sweep)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── Socket.IO hub
	│   └── Local presence watcher (optional)
	└── APISupervisor ("api-layer")
	    └── HTTP server (status, health, metrics, control channel)

Component initialization order:

 1. Flags: spf13/pflag
 2. Configuration: Koanf v2 (defaults, YAML file, environment)
 3. Logging: zerolog with JSON/console output modes
 4. Discord dialer and session registry
 5. Socket.IO hub and dispatcher
 6. Local presence watcher, when a directory is configured
 7. Supervisor tree and HTTP server

# Flags

	-c, --config string           YAML config file
	-l, --local-presence string   directory of local presences to watch
	    --log-level string        override logging.level
	    --version                 print version and exit

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server stops accepting
connections, the dispatcher drains queued work, clears every activity it set
and closes its Discord connections.

# Example Usage

	./presencebridge
	./presencebridge -l ~/presences --log-level debug
	DISCORD_IPC_DIR=/run/user/1000 ./presencebridge -c config.yaml
*/
package main
