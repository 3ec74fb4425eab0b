// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

package models

// LocalFile is one locally defined presence bundle file.
//
// Contents holds decoded JSON for .json files and the raw source text for
// .js files.
type LocalFile struct {
	File     string `json:"file"`
	Contents any    `json:"contents"`
}
