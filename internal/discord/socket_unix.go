// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

//go:build !windows

package discord

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
)

const maxSocketIndex = 10

// Sandboxed installs (Flatpak, Snap) place the socket under a subdirectory of
// the runtime dir.
var socketSubdirs = []string{
	"",
	"app/com.discordapp.Discord",
	"app/com.discordapp.DiscordCanary",
	"snap.discord",
	"snap.discord-canary",
}

func candidatePaths(dir string) []string {
	bases := []string{dir}
	if dir == "" {
		bases = runtimeDirs()
	}

	paths := make([]string, 0, len(bases)*len(socketSubdirs)*maxSocketIndex)
	for _, base := range bases {
		for _, sub := range socketSubdirs {
			for i := 0; i < maxSocketIndex; i++ {
				paths = append(paths, filepath.Join(base, sub, fmt.Sprintf("discord-ipc-%d", i)))
			}
		}
	}
	return paths
}

func runtimeDirs() []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, env := range []string{"XDG_RUNTIME_DIR", "TMPDIR", "TMP", "TEMP"} {
		if v := os.Getenv(env); v != "" && !seen[v] {
			seen[v] = true
			dirs = append(dirs, v)
		}
	}
	if !seen["/tmp"] {
		dirs = append(dirs, "/tmp")
	}
	return dirs
}

func dialSocket(ctx context.Context, path string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "unix", path)
}
