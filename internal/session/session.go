// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

// Package session owns the platform connections, one per application
// identity, and the registry that creates them.
//
// A Session serializes every call on its connection. The Registry is the
// only place sessions are created, so there is never more than one live
// session for an identity.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/presencebridge/internal/activity"
	"github.com/tomtom215/presencebridge/internal/discord"
	"github.com/tomtom215/presencebridge/internal/logging"
	"github.com/tomtom215/presencebridge/internal/metrics"
	"github.com/tomtom215/presencebridge/internal/models"
	"github.com/tomtom215/presencebridge/internal/validation"
)

// DefaultConnectTimeout bounds dial plus handshake.
const DefaultConnectTimeout = 10 * time.Second

// Conn is an authenticated platform connection.
type Conn interface {
	Ready() discord.Ready
	SetActivity(ctx context.Context, activity *discord.Activity) error
	ClearActivity(ctx context.Context) error
	Close() error
}

// Transport opens platform connections.
type Transport interface {
	Open(ctx context.Context, identity models.Identity) (Conn, error)
}

// DiscordTransport opens connections through a discord.Dialer.
type DiscordTransport struct {
	Dialer *discord.Dialer
}

// Open implements Transport.
func (t DiscordTransport) Open(ctx context.Context, identity models.Identity) (Conn, error) {
	conn, err := t.Dialer.Open(ctx, identity.String())
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Options tune session behavior.
type Options struct {
	// ConnectTimeout bounds Connect. Zero means DefaultConnectTimeout.
	ConnectTimeout time.Duration

	// SkipDuplicates suppresses a set whose payload equals the last one
	// applied successfully.
	SkipDuplicates bool
}

// Session is one live connection for one identity.
type Session struct {
	identity       models.Identity
	user           models.UserDescriptor
	logger         zerolog.Logger
	skipDuplicates bool

	mu          sync.Mutex
	conn        Conn
	fingerprint uint64
	hasPrint    bool
}

// Connect opens and authenticates a session. It fails with *ConnectError;
// any half-open connection is closed.
func Connect(ctx context.Context, transport Transport, identity models.Identity, opts Options) (*Session, error) {
	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger := logging.With().
		Str("component", "session").
		Str("identity", identity.String()).
		Logger()

	start := time.Now()
	conn, err := transport.Open(ctx, identity)
	if err != nil {
		cerr := &ConnectError{Identity: identity, Kind: connectKind(ctx, err), Err: err}
		logger.Warn().Err(err).Str("kind", cerr.Kind.String()).Msg("Session connect failed")
		return nil, cerr
	}

	user, err := decodeUser(conn.Ready())
	if err != nil {
		_ = conn.Close()
		logger.Warn().Err(err).Msg("Session readiness payload malformed")
		return nil, &ConnectError{Identity: identity, Kind: KindMalformed, Err: err}
	}

	logger.Info().
		Str("user", user.Username).
		Dur("took", time.Since(start)).
		Msg("Session connected")

	return &Session{
		identity:       identity,
		user:           user,
		logger:         logger,
		skipDuplicates: opts.SkipDuplicates,
		conn:           conn,
	}, nil
}

func decodeUser(ready discord.Ready) (models.UserDescriptor, error) {
	var user models.UserDescriptor
	if len(ready.User) == 0 || string(ready.User) == "null" {
		return user, fmt.Errorf("%w: ready payload has no user", discord.ErrMalformed)
	}
	if err := json.Unmarshal(ready.User, &user); err != nil {
		return user, fmt.Errorf("%w: ready user: %w", discord.ErrMalformed, err)
	}
	if verr := validation.ValidateStruct(&user); verr != nil {
		return user, fmt.Errorf("%w: ready user: %w", discord.ErrMalformed, verr)
	}
	return user, nil
}

// Identity returns the session key.
func (s *Session) Identity() models.Identity {
	return s.identity
}

// DescribeUser returns the account captured at connect time.
func (s *Session) DescribeUser() models.UserDescriptor {
	return s.user
}

// SetActivity translates fields and sends them. Failures are *UpdateError.
func (s *Session) SetActivity(ctx context.Context, fields models.ActivityFields) error {
	payload := activity.Translate(fields)

	s.mu.Lock()
	defer s.mu.Unlock()

	var fp uint64
	if s.skipDuplicates {
		p, err := activity.Fingerprint(payload)
		if err == nil && s.hasPrint && p == s.fingerprint {
			s.logger.Debug().Msg("Activity unchanged, skipping")
			metrics.RecordPresenceUpdate(metrics.OutcomeDuplicate)
			return nil
		}
		fp = p
	}

	if err := s.conn.SetActivity(ctx, payload); err != nil {
		s.hasPrint = false
		return s.failed("set", err)
	}
	s.fingerprint, s.hasPrint = fp, s.skipDuplicates

	s.logger.Debug().Msg("Activity set")
	metrics.RecordPresenceUpdate(metrics.OutcomeApplied)
	return nil
}

// ClearActivity removes the remote activity. Failures are *UpdateError.
func (s *Session) ClearActivity(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hasPrint = false
	if err := s.conn.ClearActivity(ctx); err != nil {
		return s.failed("clear", err)
	}

	s.logger.Debug().Msg("Activity cleared")
	metrics.RecordPresenceUpdate(metrics.OutcomeCleared)
	return nil
}

// Close tears the connection down. Only the registry and the bootstrap
// path call it.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hasPrint = false
	err := s.conn.Close()
	s.logger.Info().Msg("Session closed")
	return err
}

func (s *Session) failed(op string, err error) error {
	uerr := &UpdateError{Identity: s.identity, Op: op, Kind: updateKind(err), Err: err}
	s.logger.Warn().Err(err).Str("op", op).Str("kind", uerr.Kind.String()).Msg("Session call failed")
	return uerr
}
