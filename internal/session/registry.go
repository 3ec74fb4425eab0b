// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

package session

import (
	"context"
	"errors"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/presencebridge/internal/logging"
	"github.com/tomtom215/presencebridge/internal/metrics"
	"github.com/tomtom215/presencebridge/internal/models"
)

// Executor schedules fn for identity and returns a channel that receives
// its result. The dispatcher supplies one that queues fn behind earlier work
// for the same identity.
type Executor func(identity models.Identity, fn func(context.Context) error) <-chan error

// Registry maps identities to sessions. It is the single creation authority:
// concurrent resolutions of an unseen identity share one connect.
//
// Entries are never removed on error. A severed session stays registered
// and keeps reporting UpdateError until Close.
//
// TODO: reconnect a session whose last call failed with KindSevered on its
// next ResolveOrCreate instead of keeping the dead connection.
type Registry struct {
	transport Transport
	opts      Options

	group singleflight.Group

	mu       sync.RWMutex
	sessions map[models.Identity]*Session
	closed   bool
}

// NewRegistry creates an empty registry.
func NewRegistry(transport Transport, opts Options) *Registry {
	return &Registry{
		transport: transport,
		opts:      opts,
		sessions:  make(map[models.Identity]*Session),
	}
}

// ResolveOrCreate returns the session for identity, connecting first if
// there is none. The connect is detached from ctx so that one impatient
// caller cannot fail the attempt others are waiting on; ctx only bounds how
// long this caller waits.
func (r *Registry) ResolveOrCreate(ctx context.Context, identity models.Identity) (*Session, error) {
	if s, ok := r.Lookup(identity); ok {
		return s, nil
	}

	ch := r.group.DoChan(identity.String(), func() (interface{}, error) {
		// A previous flight may have finished between Lookup and DoChan.
		if s, ok := r.Lookup(identity); ok {
			return s, nil
		}
		if r.isClosed() {
			return nil, ErrRegistryClosed
		}

		s, err := Connect(context.WithoutCancel(ctx), r.transport, identity, r.opts)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			_ = s.Close()
			return nil, ErrRegistryClosed
		}
		r.sessions[identity] = s
		n := len(r.sessions)
		r.mu.Unlock()

		metrics.SetSessionsActive(n)
		return s, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Session), nil
	case <-ctx.Done():
		return nil, &ConnectError{Identity: identity, Kind: KindTimeout, Err: ctx.Err()}
	}
}

// Lookup returns the registered session without creating one.
func (r *Registry) Lookup(identity models.Identity) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[identity]
	return s, ok
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Identities returns the registered identities in sorted order.
func (r *Registry) Identities() []models.Identity {
	r.mu.RLock()
	ids := make([]models.Identity, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ClearAll clears the remote activity of every registered session and waits
// for the result. See ScheduleClearAll.
func (r *Registry) ClearAll(ctx context.Context, exec Executor) error {
	return r.ScheduleClearAll(ctx, exec)()
}

// ScheduleClearAll hands one clear per registered session to exec before
// returning, then the returned func waits for all of them. Sessions stay
// registered. Every session is attempted; failures are returned together
// as *SweepError.
//
// pending names identities that may be registered by work already queued
// on exec, such as a connect still in flight. Each unregistered one gets a
// clear that looks the session up when it runs and is a no-op if there is
// none.
//
// exec nil runs the clears concurrently on their own goroutines.
func (r *Registry) ScheduleClearAll(ctx context.Context, exec Executor, pending ...models.Identity) func() error {
	if exec == nil {
		exec = func(_ models.Identity, fn func(context.Context) error) <-chan error {
			ch := make(chan error, 1)
			go func() { ch <- fn(ctx) }()
			return ch
		}
	}

	sessions := r.snapshot()
	results := make(map[models.Identity]<-chan error, len(sessions)+len(pending))
	for _, s := range sessions {
		results[s.Identity()] = exec(s.Identity(), s.ClearActivity)
	}
	for _, id := range pending {
		if _, scheduled := results[id]; scheduled {
			continue
		}
		results[id] = exec(id, r.clearIfRegistered(id))
	}

	return func() error {
		failures := make(map[models.Identity]error)
		for id, ch := range results {
			select {
			case err := <-ch:
				if err != nil {
					failures[id] = err
				}
			case <-ctx.Done():
				failures[id] = ctx.Err()
			}
		}
		if len(failures) > 0 {
			return &SweepError{Total: len(results), Failures: failures}
		}
		return nil
	}
}

// Close closes every session and refuses further resolutions.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	sessions := r.sessions
	r.sessions = make(map[models.Identity]*Session)
	r.mu.Unlock()

	var errs []error
	for _, s := range sessions {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	metrics.SetSessionsActive(0)

	logging.Info().Int("sessions", len(sessions)).Msg("Session registry closed")
	return errors.Join(errs...)
}

func (r *Registry) clearIfRegistered(identity models.Identity) func(context.Context) error {
	return func(ctx context.Context) error {
		s, ok := r.Lookup(identity)
		if !ok {
			return nil
		}
		return s.ClearActivity(ctx)
	}
}

func (r *Registry) isClosed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}

func (r *Registry) snapshot() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}
