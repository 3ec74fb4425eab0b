// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

package discord

import (
	"context"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

var clientProcessNames = []string{
	"discord",
	"discordptb",
	"discordcanary",
	"discorddevelopment",
	"vesktop",
	"webcord",
}

// ProcessRunning reports whether a Discord desktop client process exists.
// Used for health reporting only; connections never wait on it.
func ProcessRunning(ctx context.Context) (bool, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return false, err
	}
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			// Processes exit between listing and inspection.
			continue
		}
		if isClientProcess(name) {
			return true, nil
		}
	}
	return false, nil
}

func isClientProcess(name string) bool {
	n := strings.ToLower(strings.TrimSuffix(name, ".exe"))
	for _, candidate := range clientProcessNames {
		if n == candidate {
			return true
		}
	}
	return false
}
