// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

package models

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// Identity names one target application registration (a Discord application
// client id). One session exists per identity.
type Identity string

// String implements fmt.Stringer.
func (id Identity) String() string {
	return string(id)
}

// UnmarshalJSON accepts both "123" and 123; producers are inconsistent about
// quoting snowflake ids.
func (id *Identity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("identity: %w", err)
		}
		*id = Identity(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("identity must be a string or integer: %w", err)
	}
	if _, err := n.Int64(); err != nil {
		return fmt.Errorf("identity must be a string or integer: %w", err)
	}
	*id = Identity(n.String())
	return nil
}
