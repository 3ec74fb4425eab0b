// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

package main

import (
	"runtime/debug"
)

// version is set at build time:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/server
var version string

// resolveVersion prefers the linker-provided version, then the module
// version recorded by `go install`.
func resolveVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return "dev"
}
