// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

package websocket

import (
	"errors"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/presencebridge/internal/dispatch"
)

func rawArgs(t *testing.T, body string) []json.RawMessage {
	t.Helper()
	_, args, err := eventArgs([]byte(body))
	if err != nil {
		t.Fatalf("eventArgs(%s) error = %v", body, err)
	}
	return args
}

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantName   string
		wantReason string
	}{
		{name: "getVersion", body: `["getVersion"]`, wantName: dispatch.EventGetVersion},
		{name: "clearActivity", body: `["clearActivity"]`, wantName: dispatch.EventClearActivity},
		{name: "settingUpdate", body: `["settingUpdate",{"enabled":true}]`, wantName: dispatch.EventSettingUpdate},
		{name: "selectLocalPresence", body: `["selectLocalPresence",{"anything":1}]`, wantName: dispatch.EventSelectLocalPresence},
		{
			name:     "setActivity",
			body:     `["setActivity",{"clientId":"503557087041683458","presenceData":{"state":"Playing"}}]`,
			wantName: dispatch.EventSetActivity,
		},
		{name: "setActivity without data", body: `["setActivity"]`, wantReason: reasonDecode},
		{name: "setActivity wrong shape", body: `["setActivity","text"]`, wantReason: reasonDecode},
		{name: "setActivity without clientId", body: `["setActivity",{"presenceData":{}}]`, wantReason: reasonValidation},
		{name: "setActivity bad clientId", body: `["setActivity",{"clientId":"abc"}]`, wantReason: reasonValidation},
		{name: "unknown", body: `["doSomething"]`, wantReason: reasonUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, args, err := eventArgs([]byte(tt.body))
			if err != nil {
				t.Fatal(err)
			}

			ev, reason, err := decodeEvent(name, args)
			if tt.wantReason != "" {
				if err == nil {
					t.Fatalf("decodeEvent() = %v, want %s rejection", ev, tt.wantReason)
				}
				if reason != tt.wantReason {
					t.Errorf("reason = %q, want %q", reason, tt.wantReason)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeEvent() error = %v", err)
			}
			if ev.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", ev.Name(), tt.wantName)
			}
		})
	}
}

func TestDecodeEvent_SetActivityFields(t *testing.T) {
	args := rawArgs(t, `["setActivity",{"clientId":"123","hidden":true,"presenceData":{"details":"Episode 4"}}]`)
	ev, _, err := decodeEvent(dispatch.EventSetActivity, args)
	if err != nil {
		t.Fatal(err)
	}
	set, ok := ev.(dispatch.SetActivity)
	if !ok {
		t.Fatalf("decodeEvent() = %T", ev)
	}
	if set.Update.Identity != "123" || !set.Update.IsHidden() {
		t.Errorf("update = %+v", set.Update)
	}
	if set.Update.Activity.Details == nil || *set.Update.Activity.Details != "Episode 4" {
		t.Errorf("details = %v", set.Update.Activity.Details)
	}
}

func TestDecodeEvent_Unknown(t *testing.T) {
	_, _, err := decodeEvent("nope", nil)
	if !errors.Is(err, errUnknownEvent) {
		t.Errorf("decodeEvent() error = %v, want errUnknownEvent", err)
	}
}
