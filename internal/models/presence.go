// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

// Package models holds the data types shared between the control channel,
// the dispatcher and the session layer.
package models

// PresenceUpdate is one producer instruction for one identity.
//
// Every optional field means "leave unset" when absent, never "clear".
type PresenceUpdate struct {
	// Identity selects the target application registration.
	Identity Identity `json:"clientId" validate:"required,snowflake"`

	// TrayTitle is shown in the macOS menu bar by desktop companions.
	TrayTitle string `json:"trayTitle"`

	// Playback is false when the producer's media is paused.
	Playback bool `json:"playback"`

	// Activity is relayed to the platform after translation.
	Activity ActivityFields `json:"presenceData"`

	// Hidden clears the identity's remote activity before anything else
	// from this update is applied.
	Hidden *bool `json:"hidden,omitempty"`

	// MediaKeys reports whether the producer reacts to media keys.
	MediaKeys *bool `json:"mediaKeys,omitempty"`
}

// IsHidden reports whether Hidden is explicitly true.
func (u *PresenceUpdate) IsHidden() bool {
	return u.Hidden != nil && *u.Hidden
}

// ActivityFields is the producer-side activity record.
type ActivityFields struct {
	State          *string  `json:"state,omitempty"`
	Details        *string  `json:"details,omitempty"`
	StartTimestamp *int64   `json:"startTimestamp,omitempty"`
	EndTimestamp   *int64   `json:"endTimestamp,omitempty"`
	LargeImageKey  *string  `json:"largeImageKey,omitempty"`
	LargeImageText *string  `json:"largeImageText,omitempty"`
	SmallImageKey  *string  `json:"smallImageKey,omitempty"`
	SmallImageText *string  `json:"smallImageText,omitempty"`
	Instance       *bool    `json:"instance,omitempty"`
	PartyID        *string  `json:"partyId,omitempty"`
	PartySize      *int     `json:"partySize,omitempty"`
	PartyMax       *int     `json:"partyMax,omitempty"`
	MatchSecret    *string  `json:"matchSecret,omitempty"`
	SpectateSecret *string  `json:"spectateSecret,omitempty"`
	JoinSecret     *string  `json:"joinSecret,omitempty"`
	Buttons        []Button `json:"buttons,omitempty" validate:"omitempty,dive"`
}

// IsEmpty reports whether no field is set.
func (a *ActivityFields) IsEmpty() bool {
	return a.State == nil &&
		a.Details == nil &&
		a.StartTimestamp == nil &&
		a.EndTimestamp == nil &&
		a.LargeImageKey == nil &&
		a.LargeImageText == nil &&
		a.SmallImageKey == nil &&
		a.SmallImageText == nil &&
		a.Instance == nil &&
		a.PartyID == nil &&
		a.PartySize == nil &&
		a.PartyMax == nil &&
		a.MatchSecret == nil &&
		a.SpectateSecret == nil &&
		a.JoinSecret == nil &&
		len(a.Buttons) == 0
}

// Button is a clickable link under the activity.
type Button struct {
	Label string `json:"label" validate:"required"`
	URL   string `json:"url" validate:"required,url"`
}

// Settings mirrors the companion settings object sent with settingUpdate.
type Settings struct {
	Enabled      bool `json:"enabled"`
	AutoLaunch   bool `json:"autoLaunch"`
	MediaKeys    bool `json:"mediaKeys"`
	TitleMenubar bool `json:"titleMenubar"`
}
