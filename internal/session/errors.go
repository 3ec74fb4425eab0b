// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/presencebridge/internal/discord"
	"github.com/tomtom215/presencebridge/internal/models"
)

// ErrRegistryClosed is returned once the registry has been torn down.
var ErrRegistryClosed = errors.New("session: registry closed")

// ErrorKind classifies session failures.
type ErrorKind int

const (
	// KindUnreachable: no platform endpoint accepted the connection.
	KindUnreachable ErrorKind = iota
	// KindRejected: the platform refused the handshake or the payload.
	KindRejected
	// KindMalformed: the readiness payload lacked required fields.
	KindMalformed
	// KindTimeout: the platform did not become ready in time.
	KindTimeout
	// KindSevered: the connection dropped or was closed.
	KindSevered
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindRejected:
		return "rejected"
	case KindMalformed:
		return "malformed"
	case KindTimeout:
		return "timeout"
	case KindSevered:
		return "severed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ConnectError is fatal to one connect attempt. Nothing is registered and
// the next update for the identity tries again.
type ConnectError struct {
	Identity models.Identity
	Kind     ErrorKind
	Err      error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("session %s: connect %s: %v", e.Identity, e.Kind, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// UpdateError is a failed set or clear. The session stays registered.
type UpdateError struct {
	Identity models.Identity
	Op       string
	Kind     ErrorKind
	Err      error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("session %s: %s %s: %v", e.Identity, e.Op, e.Kind, e.Err)
}

func (e *UpdateError) Unwrap() error {
	return e.Err
}

// SweepError aggregates the failures of a clear-all sweep by identity.
type SweepError struct {
	Total    int
	Failures map[models.Identity]error
}

func (e *SweepError) Error() string {
	ids := make([]string, 0, len(e.Failures))
	for id := range e.Failures {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	var b strings.Builder
	fmt.Fprintf(&b, "clear-all failed for %d of %d sessions", len(e.Failures), e.Total)
	for _, id := range ids {
		fmt.Fprintf(&b, "; %s: %v", id, e.Failures[models.Identity(id)])
	}
	return b.String()
}

func (e *SweepError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, err := range e.Failures {
		errs = append(errs, err)
	}
	return errs
}

func connectKind(ctx context.Context, err error) ErrorKind {
	var closeErr *discord.CloseError
	var cmdErr *discord.CommandError
	switch {
	case errors.Is(err, discord.ErrTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(ctx.Err(), context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, discord.ErrMalformed):
		return KindMalformed
	case errors.As(err, &closeErr), errors.As(err, &cmdErr):
		return KindRejected
	default:
		return KindUnreachable
	}
}

func updateKind(err error) ErrorKind {
	var cmdErr *discord.CommandError
	if errors.As(err, &cmdErr) || errors.Is(err, discord.ErrFrameTooLarge) {
		return KindRejected
	}
	return KindSevered
}
