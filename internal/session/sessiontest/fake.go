// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

// Package sessiontest provides an in-memory session.Transport that records
// every platform call, for tests of the session and dispatch layers.
package sessiontest

import (
	"context"
	"errors"
	"sync"

	"github.com/goccy/go-json"

	"github.com/tomtom215/presencebridge/internal/discord"
	"github.com/tomtom215/presencebridge/internal/models"
	"github.com/tomtom215/presencebridge/internal/session"
)

// Platform call operations.
const (
	OpConnect = "connect"
	OpSet     = "set"
	OpClear   = "clear"
	OpClose   = "close"
)

// DefaultUser is returned in READY unless Transport.User is set.
const DefaultUser = `{"id":"80351110224678912","username":"Nelly","discriminator":"1337","avatar":"8342729096ea3675442027381ff50dfe","flags":64,"premium_type":1}`

// Call is one recorded platform call.
type Call struct {
	Identity models.Identity
	Op       string
	Activity *discord.Activity
}

// State returns the activity state of a set call, or "".
func (c Call) State() string {
	if c.Activity == nil || c.Activity.State == nil {
		return ""
	}
	return *c.Activity.State
}

// Transport is a fake session.Transport. Zero value is ready to use.
type Transport struct {
	// User is the raw READY user payload; empty means DefaultUser.
	User string

	// OpenHook runs inside Open before the connection is returned; a
	// non-nil error fails the open.
	OpenHook func(ctx context.Context, identity models.Identity) error

	// SetErr and ClearErr fail calls for the given identity.
	SetErr   func(identity models.Identity) error
	ClearErr func(identity models.Identity) error

	mu    sync.Mutex
	calls []Call
}

// Open implements session.Transport.
func (t *Transport) Open(ctx context.Context, identity models.Identity) (session.Conn, error) {
	t.record(Call{Identity: identity, Op: OpConnect})
	if t.OpenHook != nil {
		if err := t.OpenHook(ctx, identity); err != nil {
			return nil, err
		}
	}

	user := t.User
	if user == "" {
		user = DefaultUser
	}
	return &Conn{
		t:        t,
		identity: identity,
		ready:    discord.Ready{V: 1, User: json.RawMessage(user)},
	}, nil
}

// Calls returns a copy of every recorded call in order.
func (t *Transport) Calls() []Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Call(nil), t.calls...)
}

// CallsFor returns the recorded calls for one identity.
func (t *Transport) CallsFor(identity models.Identity) []Call {
	var out []Call
	for _, c := range t.Calls() {
		if c.Identity == identity {
			out = append(out, c)
		}
	}
	return out
}

// Count returns how many calls of op were made for identity.
func (t *Transport) Count(identity models.Identity, op string) int {
	n := 0
	for _, c := range t.CallsFor(identity) {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Ops returns the operation sequence for identity.
func (t *Transport) Ops(identity models.Identity) []string {
	calls := t.CallsFor(identity)
	ops := make([]string, len(calls))
	for i, c := range calls {
		ops[i] = c.Op
	}
	return ops
}

func (t *Transport) record(c Call) {
	t.mu.Lock()
	t.calls = append(t.calls, c)
	t.mu.Unlock()
}

// Conn is the fake connection handed out by Transport.
type Conn struct {
	t        *Transport
	identity models.Identity
	ready    discord.Ready

	mu     sync.Mutex
	closed bool
}

// Ready implements session.Conn.
func (c *Conn) Ready() discord.Ready {
	return c.ready
}

// SetActivity implements session.Conn.
func (c *Conn) SetActivity(_ context.Context, activity *discord.Activity) error {
	if err := c.check(); err != nil {
		return err
	}
	c.t.record(Call{Identity: c.identity, Op: OpSet, Activity: activity})
	if c.t.SetErr != nil {
		return c.t.SetErr(c.identity)
	}
	return nil
}

// ClearActivity implements session.Conn.
func (c *Conn) ClearActivity(context.Context) error {
	if err := c.check(); err != nil {
		return err
	}
	c.t.record(Call{Identity: c.identity, Op: OpClear})
	if c.t.ClearErr != nil {
		return c.t.ClearErr(c.identity)
	}
	return nil
}

// Close implements session.Conn.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		c.t.record(Call{Identity: c.identity, Op: OpClose})
	}
	return nil
}

func (c *Conn) check() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return discord.ErrClosed
	}
	return nil
}

// ErrRejected is a convenient platform rejection for SetErr and ClearErr.
var ErrRejected = &discord.CommandError{Cmd: "SET_ACTIVITY", Code: 4002, Message: "rejected"}

// ErrSevered is a convenient I/O failure for SetErr and ClearErr.
var ErrSevered = errors.New("write: broken pipe")
