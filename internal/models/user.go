// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

package models

// UserDescriptor is the platform account captured from the READY payload at
// connect time. It is never refreshed.
type UserDescriptor struct {
	Avatar        string `json:"avatar"`
	Bot           bool   `json:"bot"`
	Discriminator string `json:"discriminator"`
	Flags         uint32 `json:"flags"`
	ID            string `json:"id" validate:"required,snowflake"`
	PremiumType   uint8  `json:"premium_type"`
	Username      string `json:"username" validate:"required"`
}
