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
	"os"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/presencebridge/internal/metrics"
)

// DefaultCallTimeout bounds a command round trip when no timeout is set.
const DefaultCallTimeout = 5 * time.Second

// Conn is an authenticated connection to the Discord client.
type Conn struct {
	nc          net.Conn
	ready       Ready
	pid         int
	callTimeout time.Duration

	mu  sync.Mutex
	err error // sticky once the stream is severed
}

// Handshake authenticates clientID over an already established stream and
// waits for READY. The wait is bounded by the ctx deadline when there is one,
// otherwise by callTimeout. On failure nc is closed.
func Handshake(ctx context.Context, nc net.Conn, clientID string, callTimeout time.Duration) (*Conn, error) {
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	c := &Conn{
		nc:          nc,
		pid:         os.Getpid(),
		callTimeout: callTimeout,
	}

	ready, err := c.handshake(ctx, clientID)
	if err != nil {
		_ = nc.Close()
		return nil, err
	}
	c.ready = ready
	return c, nil
}

func (c *Conn) handshake(ctx context.Context, clientID string) (Ready, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.callTimeout)
	}
	stop := c.boundUntil(ctx, deadline)
	defer stop()

	payload, err := json.Marshal(handshake{V: protocolVersion, ClientID: clientID})
	if err != nil {
		return Ready{}, err
	}
	if err := WriteFrame(c.nc, Frame{Op: OpHandshake, Payload: payload}); err != nil {
		return Ready{}, c.ioError(ctx, err)
	}

	for {
		f, err := ReadFrame(c.nc)
		if err != nil {
			return Ready{}, c.ioError(ctx, err)
		}
		switch f.Op {
		case OpPing:
			if err := WriteFrame(c.nc, Frame{Op: OpPong, Payload: f.Payload}); err != nil {
				return Ready{}, c.ioError(ctx, err)
			}
		case OpClose:
			return Ready{}, decodeClose(f.Payload)
		case OpFrame:
			var resp response
			if err := json.Unmarshal(f.Payload, &resp); err != nil {
				return Ready{}, fmt.Errorf("%w: handshake reply: %w", ErrMalformed, err)
			}
			switch {
			case resp.Cmd == cmdDispatch && resp.event() == evtReady:
				var ready Ready
				if err := json.Unmarshal(resp.Data, &ready); err != nil {
					return Ready{}, fmt.Errorf("%w: ready data: %w", ErrMalformed, err)
				}
				return ready, nil
			case resp.event() == evtError:
				return Ready{}, decodeCommandError("HANDSHAKE", resp.Data)
			}
		}
	}
}

// Ready returns the handshake result.
func (c *Conn) Ready() Ready {
	return c.ready
}

// SetActivity replaces the presence shown for this application.
func (c *Conn) SetActivity(ctx context.Context, activity *Activity) error {
	if activity == nil {
		return c.ClearActivity(ctx)
	}
	_, err := c.call(ctx, cmdSetActivity, setActivityArgs{PID: c.pid, Activity: activity})
	metrics.RecordDiscordCommand(cmdSetActivity, err)
	return err
}

// ClearActivity removes the presence shown for this application.
func (c *Conn) ClearActivity(ctx context.Context) error {
	_, err := c.call(ctx, cmdSetActivity, setActivityArgs{PID: c.pid})
	metrics.RecordDiscordCommand(cmdSetActivity, err)
	return err
}

// Close sends a close frame and releases the stream. It is idempotent.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if errors.Is(c.err, ErrClosed) {
		return nil
	}
	severed := c.err != nil
	c.err = ErrClosed
	if severed {
		return nil
	}

	_ = c.nc.SetWriteDeadline(time.Now().Add(time.Second))
	_ = WriteFrame(c.nc, Frame{Op: OpClose, Payload: []byte("{}")})
	return c.nc.Close()
}

func (c *Conn) call(ctx context.Context, cmd string, args any) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		if errors.Is(c.err, ErrClosed) {
			return nil, c.err
		}
		return nil, fmt.Errorf("%w: %w", ErrClosed, c.err)
	}

	nonce := uuid.NewString()
	payload, err := json.Marshal(command{Cmd: cmd, Args: args, Nonce: nonce})
	if err != nil {
		return nil, err
	}

	stop := c.bound(ctx)
	defer stop()

	if err := WriteFrame(c.nc, Frame{Op: OpFrame, Payload: payload}); err != nil {
		if errors.Is(err, ErrFrameTooLarge) {
			return nil, err
		}
		return nil, c.sever(c.ioError(ctx, err))
	}

	for {
		f, err := ReadFrame(c.nc)
		if err != nil {
			return nil, c.sever(c.ioError(ctx, err))
		}
		switch f.Op {
		case OpPing:
			if err := WriteFrame(c.nc, Frame{Op: OpPong, Payload: f.Payload}); err != nil {
				return nil, c.sever(c.ioError(ctx, err))
			}
		case OpClose:
			return nil, c.sever(decodeClose(f.Payload))
		case OpFrame:
			var resp response
			if err := json.Unmarshal(f.Payload, &resp); err != nil {
				return nil, c.sever(fmt.Errorf("%w: %s reply: %w", ErrMalformed, cmd, err))
			}
			if resp.Nonce == nil || *resp.Nonce != nonce {
				// Unsolicited dispatches and late replies to earlier calls.
				continue
			}
			if resp.event() == evtError {
				return nil, decodeCommandError(cmd, resp.Data)
			}
			return resp.Data, nil
		}
	}
}

// bound applies the call timeout, tightened by ctx, to the stream, and
// interrupts blocked I/O when ctx is canceled.
func (c *Conn) bound(ctx context.Context) func() {
	deadline := time.Now().Add(c.callTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	return c.boundUntil(ctx, deadline)
}

func (c *Conn) boundUntil(ctx context.Context, deadline time.Time) func() {
	_ = c.nc.SetDeadline(deadline)
	stop := context.AfterFunc(ctx, func() {
		_ = c.nc.SetDeadline(time.Now())
	})
	return func() {
		stop()
		_ = c.nc.SetDeadline(time.Time{})
	}
}

func (c *Conn) ioError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ErrTimeout, ctxErr)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}

// sever marks the stream unusable. A partial frame may have been consumed, so
// nothing read after this point could be trusted.
func (c *Conn) sever(err error) error {
	c.err = err
	_ = c.nc.Close()
	return err
}

func decodeClose(payload []byte) error {
	ce := &CloseError{}
	if err := json.Unmarshal(payload, ce); err != nil {
		return fmt.Errorf("%w: close frame: %w", ErrMalformed, err)
	}
	return ce
}

func decodeCommandError(cmd string, data json.RawMessage) error {
	ce := &CommandError{Cmd: cmd}
	if len(data) > 0 {
		if err := json.Unmarshal(data, ce); err != nil {
			return fmt.Errorf("%w: %s error: %w", ErrMalformed, cmd, err)
		}
	}
	return ce
}
