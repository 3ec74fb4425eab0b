// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

package models

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestIdentity_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Identity
		wantErr bool
	}{
		{"quoted", `"503557087041683458"`, "503557087041683458", false},
		{"number", `503557087041683458`, "503557087041683458", false},
		{"null", `null`, "", false},
		{"float rejected", `1.5`, "", true},
		{"object rejected", `{}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id Identity
			err := json.Unmarshal([]byte(tt.input), &id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && id != tt.want {
				t.Errorf("Unmarshal(%s) = %q, want %q", tt.input, id, tt.want)
			}
		})
	}
}

func TestPresenceUpdate_Decode(t *testing.T) {
	raw := `{
		"clientId": "123",
		"trayTitle": "YouTube",
		"playback": true,
		"presenceData": {"state": "Playing", "partySize": 2, "buttons": [{"label": "Watch", "url": "https://example.com"}]},
		"hidden": false
	}`

	var u PresenceUpdate
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if u.Identity != "123" {
		t.Errorf("Identity = %q, want 123", u.Identity)
	}
	if u.Activity.State == nil || *u.Activity.State != "Playing" {
		t.Errorf("State = %v, want Playing", u.Activity.State)
	}
	if u.Activity.Details != nil {
		t.Errorf("Details should stay unset, got %q", *u.Activity.Details)
	}
	if u.Activity.PartySize == nil || *u.Activity.PartySize != 2 {
		t.Errorf("PartySize = %v, want 2", u.Activity.PartySize)
	}
	if u.IsHidden() {
		t.Error("hidden=false must not report hidden")
	}
	if u.MediaKeys != nil {
		t.Error("absent mediaKeys must stay nil")
	}
	if len(u.Activity.Buttons) != 1 || u.Activity.Buttons[0].Label != "Watch" {
		t.Errorf("Buttons = %+v", u.Activity.Buttons)
	}
}

func TestActivityFields_IsEmpty(t *testing.T) {
	var empty ActivityFields
	if !empty.IsEmpty() {
		t.Error("zero value should be empty")
	}

	state := "Idle"
	if (&ActivityFields{State: &state}).IsEmpty() {
		t.Error("state set should not be empty")
	}
	if (&ActivityFields{Buttons: []Button{{Label: "a", URL: "b"}}}).IsEmpty() {
		t.Error("buttons set should not be empty")
	}
}
