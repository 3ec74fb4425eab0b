// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

// Package activity maps producer activity records to Discord activity
// payloads.
package activity

import (
	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"

	"github.com/tomtom215/presencebridge/internal/discord"
	"github.com/tomtom215/presencebridge/internal/models"
)

// Translate builds the platform payload for fields. Unset fields are
// omitted, never cleared, and a composite block is only present when at
// least one of its parts is.
//
// A party carries a size only when both PartySize and PartyMax are set,
// because the platform expects a [current, max] pair.
func Translate(fields models.ActivityFields) *discord.Activity {
	a := &discord.Activity{
		State:    clone(fields.State),
		Details:  clone(fields.Details),
		Instance: clone(fields.Instance),
	}

	if fields.StartTimestamp != nil || fields.EndTimestamp != nil {
		a.Timestamps = &discord.Timestamps{
			Start: clone(fields.StartTimestamp),
			End:   clone(fields.EndTimestamp),
		}
	}

	if fields.LargeImageKey != nil || fields.LargeImageText != nil ||
		fields.SmallImageKey != nil || fields.SmallImageText != nil {
		a.Assets = &discord.Assets{
			LargeImage: clone(fields.LargeImageKey),
			LargeText:  clone(fields.LargeImageText),
			SmallImage: clone(fields.SmallImageKey),
			SmallText:  clone(fields.SmallImageText),
		}
	}

	hasSize := fields.PartySize != nil && fields.PartyMax != nil
	if fields.PartyID != nil || hasSize {
		a.Party = &discord.Party{ID: clone(fields.PartyID)}
		if hasSize {
			a.Party.Size = &[2]int{*fields.PartySize, *fields.PartyMax}
		}
	}

	if fields.JoinSecret != nil || fields.SpectateSecret != nil || fields.MatchSecret != nil {
		a.Secrets = &discord.Secrets{
			Join:     clone(fields.JoinSecret),
			Spectate: clone(fields.SpectateSecret),
			Match:    clone(fields.MatchSecret),
		}
	}

	if len(fields.Buttons) > 0 {
		a.Buttons = make([]discord.Button, len(fields.Buttons))
		for i, b := range fields.Buttons {
			a.Buttons[i] = discord.Button{Label: b.Label, URL: b.URL}
		}
	}

	return a
}

// Fingerprint hashes the encoded payload so identical consecutive updates
// can be recognized.
func Fingerprint(a *discord.Activity) (uint64, error) {
	payload, err := json.Marshal(a)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(payload), nil
}

func clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
