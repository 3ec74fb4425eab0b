// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

package discord

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/tomtom215/presencebridge/internal/logging"
	"github.com/tomtom215/presencebridge/internal/metrics"
)

// DialerConfig configures how IPC endpoints are located and guarded.
type DialerConfig struct {
	// Dir overrides the directory searched for discord-ipc-N sockets.
	// Ignored on Windows, where named pipes are used.
	Dir string

	// CallTimeout bounds each command round trip.
	CallTimeout time.Duration

	// BreakerThreshold is the number of consecutive failed dials that open
	// the breaker. Zero disables the breaker.
	BreakerThreshold uint32

	// BreakerTimeout is how long the breaker stays open.
	BreakerTimeout time.Duration
}

// Dialer opens authenticated connections to the local Discord client.
type Dialer struct {
	cfg     DialerConfig
	breaker *dialBreaker

	// Overridable in tests.
	paths func(dir string) []string
	dial  func(ctx context.Context, path string) (net.Conn, error)
}

// NewDialer creates a Dialer.
func NewDialer(cfg DialerConfig) *Dialer {
	d := &Dialer{
		cfg:   cfg,
		paths: candidatePaths,
		dial:  dialSocket,
	}
	if cfg.BreakerThreshold > 0 {
		timeout := cfg.BreakerTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		d.breaker = newDialBreaker(cfg.BreakerThreshold, timeout)
	}
	return d
}

// Open dials the first reachable endpoint and performs the handshake for
// clientID. The returned error wraps ErrUnreachable, ErrTimeout, ErrMalformed
// or is a *CloseError / *CommandError.
func (d *Dialer) Open(ctx context.Context, clientID string) (*Conn, error) {
	start := time.Now()

	nc, err := d.connect(ctx)
	if err != nil {
		metrics.RecordDiscordConnect(ErrorKind(err), time.Since(start))
		return nil, err
	}

	conn, err := Handshake(ctx, nc, clientID, d.cfg.CallTimeout)
	if err != nil {
		metrics.RecordDiscordConnect(ErrorKind(err), time.Since(start))
		return nil, err
	}

	metrics.RecordDiscordConnect("success", time.Since(start))
	return conn, nil
}

func (d *Dialer) connect(ctx context.Context) (net.Conn, error) {
	if d.breaker == nil {
		return d.dialAny(ctx)
	}
	return d.breaker.execute(func() (net.Conn, error) {
		return d.dialAny(ctx)
	})
}

func (d *Dialer) dialAny(ctx context.Context) (net.Conn, error) {
	var lastErr error
	for _, path := range d.paths(d.cfg.Dir) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		nc, err := d.dial(ctx, path)
		if err == nil {
			logging.Debug().Str("path", path).Msg("Connected to Discord IPC endpoint")
			return nc, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		return nil, ErrUnreachable
	}
	return nil, fmt.Errorf("%w: %w", ErrUnreachable, lastErr)
}

// ErrorKind classifies an Open error for metrics and logs.
func ErrorKind(err error) string {
	var closeErr *CloseError
	var cmdErr *CommandError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrUnreachable):
		return "unreachable"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.As(err, &closeErr), errors.As(err, &cmdErr):
		return "rejected"
	default:
		return "io"
	}
}
