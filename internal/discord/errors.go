// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

package discord

import (
	"errors"
	"fmt"
)

var (
	// ErrUnreachable means no IPC endpoint accepted a connection, or the dial
	// circuit breaker is open.
	ErrUnreachable = errors.New("discord: ipc endpoint unreachable")

	// ErrClosed means the connection was severed earlier and is unusable.
	ErrClosed = errors.New("discord: connection closed")

	// ErrMalformed means the client sent a payload we could not decode.
	ErrMalformed = errors.New("discord: malformed payload")

	// ErrTimeout means the client did not answer within the deadline.
	ErrTimeout = errors.New("discord: timed out")

	// ErrFrameTooLarge means a frame exceeded the protocol size limit.
	ErrFrameTooLarge = errors.New("discord: frame too large")
)

// CloseError is sent by the client in a close frame, typically during the
// handshake for an unknown application id (code 4000).
type CloseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *CloseError) Error() string {
	return fmt.Sprintf("discord: connection closed by client (%d): %s", e.Code, e.Message)
}

// CommandError is an ERROR event answering a command.
type CommandError struct {
	Cmd     string
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("discord: %s rejected (%d): %s", e.Cmd, e.Code, e.Message)
}
