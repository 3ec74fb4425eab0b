// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

package dispatch

import (
	"github.com/goccy/go-json"

	"github.com/tomtom215/presencebridge/internal/models"
)

// Inbound event names.
const (
	EventGetVersion          = "getVersion"
	EventSettingUpdate       = "settingUpdate"
	EventSetActivity         = "setActivity"
	EventClearActivity       = "clearActivity"
	EventSelectLocalPresence = "selectLocalPresence"
)

// Outbound event names.
const (
	EventReceiveVersion = "receiveVersion"
	EventDiscordUser    = "discordUser"
	EventLocalPresence  = "localPresence"
)

// Event is a decoded inbound event. The set is closed: the control channel
// decodes into one of the types below or drops the packet.
type Event interface {
	Name() string
}

// GetVersion asks for the running version.
type GetVersion struct{}

// SettingUpdate carries the companion's settings.
type SettingUpdate struct {
	Settings models.Settings
}

// SetActivity carries one presence update.
type SetActivity struct {
	Update models.PresenceUpdate
}

// ClearActivity clears every session.
type ClearActivity struct{}

// SelectLocalPresence is accepted on the wire but unsupported.
type SelectLocalPresence struct {
	Raw json.RawMessage
}

func (GetVersion) Name() string          { return EventGetVersion }
func (SettingUpdate) Name() string       { return EventSettingUpdate }
func (SetActivity) Name() string         { return EventSetActivity }
func (ClearActivity) Name() string       { return EventClearActivity }
func (SelectLocalPresence) Name() string { return EventSelectLocalPresence }

// Emitter sends an outbound event to one client or to all of them.
type Emitter interface {
	Emit(event string, payload any) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(event string, payload any) error

// Emit implements Emitter.
func (f EmitterFunc) Emit(event string, payload any) error {
	return f(event, payload)
}
