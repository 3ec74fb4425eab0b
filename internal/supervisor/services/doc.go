// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

/*
Package services provides suture.Service wrappers for PresenceBridge components
whose lifecycle does not already match suture's Serve(ctx) pattern.

HTTP Server (HTTPServerService):
  - Binds the listener inside Serve so a taken port is retried with backoff
  - Shuts down gracefully with a configurable timeout

WebSocket Hub (WebSocketHubService):
  - Runs websocket.Hub.RunWithContext
  - Disconnects every producer on shutdown

The dispatcher and the local presence watcher implement suture.Service
directly and need no wrapper.
*/
package services
