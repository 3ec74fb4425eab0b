// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

package websocket

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/presencebridge/internal/dispatch"
	"github.com/tomtom215/presencebridge/internal/models"
	"github.com/tomtom215/presencebridge/internal/validation"
)

// Rejection reasons, used as metric labels.
const (
	reasonDecode     = "decode"
	reasonValidation = "validation"
	reasonUnknown    = "unknown"
)

var errUnknownEvent = errors.New("unknown event")

// decodeEvent turns a named event and its arguments into a typed event.
// Nothing untyped leaves this package.
func decodeEvent(name string, args []json.RawMessage) (dispatch.Event, string, error) {
	switch name {
	case dispatch.EventGetVersion:
		return dispatch.GetVersion{}, "", nil

	case dispatch.EventClearActivity:
		return dispatch.ClearActivity{}, "", nil

	case dispatch.EventSettingUpdate:
		var settings models.Settings
		if err := decodeFirst(args, &settings); err != nil {
			return nil, reasonDecode, err
		}
		return dispatch.SettingUpdate{Settings: settings}, "", nil

	case dispatch.EventSetActivity:
		var update models.PresenceUpdate
		if err := decodeFirst(args, &update); err != nil {
			return nil, reasonDecode, err
		}
		if verr := validation.ValidateStruct(&update); verr != nil {
			return nil, reasonValidation, verr
		}
		return dispatch.SetActivity{Update: update}, "", nil

	case dispatch.EventSelectLocalPresence:
		var raw json.RawMessage
		if len(args) > 0 {
			raw = args[0]
		}
		return dispatch.SelectLocalPresence{Raw: raw}, "", nil

	default:
		return nil, reasonUnknown, fmt.Errorf("%w %q", errUnknownEvent, name)
	}
}

func decodeFirst(args []json.RawMessage, v any) error {
	if len(args) == 0 {
		return errors.New("missing event data")
	}
	return json.Unmarshal(args[0], v)
}
