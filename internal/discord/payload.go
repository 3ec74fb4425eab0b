// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

package discord

import "github.com/goccy/go-json"

// Activity is the SET_ACTIVITY payload. Nil fields are omitted from the wire.
type Activity struct {
	State      *string     `json:"state,omitempty"`
	Details    *string     `json:"details,omitempty"`
	Timestamps *Timestamps `json:"timestamps,omitempty"`
	Assets     *Assets     `json:"assets,omitempty"`
	Party      *Party      `json:"party,omitempty"`
	Secrets    *Secrets    `json:"secrets,omitempty"`
	Instance   *bool       `json:"instance,omitempty"`
	Buttons    []Button    `json:"buttons,omitempty"`
}

// Timestamps are unix epoch values as sent by the producer.
type Timestamps struct {
	Start *int64 `json:"start,omitempty"`
	End   *int64 `json:"end,omitempty"`
}

// Assets reference uploaded art assets or external image URLs.
type Assets struct {
	LargeImage *string `json:"large_image,omitempty"`
	LargeText  *string `json:"large_text,omitempty"`
	SmallImage *string `json:"small_image,omitempty"`
	SmallText  *string `json:"small_text,omitempty"`
}

// Party describes a group; Size is [current, max].
type Party struct {
	ID   *string `json:"id,omitempty"`
	Size *[2]int `json:"size,omitempty"`
}

// Secrets enable join, spectate and match invites.
type Secrets struct {
	Join     *string `json:"join,omitempty"`
	Spectate *string `json:"spectate,omitempty"`
	Match    *string `json:"match,omitempty"`
}

// Button is a link shown under the activity.
type Button struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Ready is the data of the READY dispatch that completes the handshake.
type Ready struct {
	V      int             `json:"v"`
	Config json.RawMessage `json:"config,omitempty"`
	User   json.RawMessage `json:"user"`
}

const (
	cmdDispatch    = "DISPATCH"
	cmdSetActivity = "SET_ACTIVITY"

	evtReady = "READY"
	evtError = "ERROR"

	protocolVersion = 1
)

type handshake struct {
	V        int    `json:"v"`
	ClientID string `json:"client_id"`
}

type command struct {
	Cmd   string `json:"cmd"`
	Args  any    `json:"args"`
	Nonce string `json:"nonce"`
}

type setActivityArgs struct {
	PID      int       `json:"pid"`
	Activity *Activity `json:"activity,omitempty"`
}

type response struct {
	Cmd   string          `json:"cmd"`
	Evt   *string         `json:"evt"`
	Nonce *string         `json:"nonce"`
	Data  json.RawMessage `json:"data"`
}

func (r *response) event() string {
	if r.Evt == nil {
		return ""
	}
	return *r.Evt
}
