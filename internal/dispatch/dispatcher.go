// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

// Package dispatch routes decoded control channel events to sessions.
//
// Every identity has a lane: a FIFO of jobs drained by one goroutine that
// exists only while the lane is non-empty. Handlers only enqueue, so jobs for
// one identity run in the order their events were received while different
// identities proceed concurrently.
package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/presencebridge/internal/logging"
	"github.com/tomtom215/presencebridge/internal/metrics"
	"github.com/tomtom215/presencebridge/internal/models"
	"github.com/tomtom215/presencebridge/internal/session"
)

// ErrStopped is returned for work offered after shutdown began.
var ErrStopped = errors.New("dispatch: dispatcher stopped")

// DefaultClientID is the application used for the bootstrap session that
// reports the logged-in user to new clients.
const DefaultClientID models.Identity = "503557087041683458"

// Config configures a Dispatcher.
type Config struct {
	// Version is replied to getVersion.
	Version string

	// DefaultClientID is used for the bootstrap session.
	DefaultClientID models.Identity

	// ShutdownTimeout bounds draining lanes and the final sweep.
	ShutdownTimeout time.Duration

	// SessionOptions apply to bootstrap sessions.
	SessionOptions session.Options
}

type job struct {
	run      func(ctx context.Context)
	enqueued time.Time
}

type lane struct {
	jobs []job
}

// Dispatcher consumes inbound events.
type Dispatcher struct {
	cfg       Config
	registry  *session.Registry
	transport session.Transport
	broadcast Emitter
	logger    zerolog.Logger

	// Jobs run under ctx so a stuck shutdown can interrupt them.
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	lanes    map[models.Identity]*lane
	stopping bool
	pending  sync.WaitGroup
}

// New creates a Dispatcher. transport opens bootstrap sessions; broadcast
// reaches every connected client.
func New(cfg Config, registry *session.Registry, transport session.Transport, broadcast Emitter) *Dispatcher {
	if cfg.DefaultClientID == "" {
		cfg.DefaultClientID = DefaultClientID
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		cfg:       cfg,
		registry:  registry,
		transport: transport,
		broadcast: broadcast,
		logger:    logging.WithComponent("dispatch"),
		ctx:       ctx,
		cancel:    cancel,
		lanes:     make(map[models.Identity]*lane),
	}
}

// Handle routes one decoded event. reply reaches the client that sent it.
// It never blocks on platform I/O.
func (d *Dispatcher) Handle(ev Event, reply Emitter) {
	switch e := ev.(type) {
	case GetVersion:
		d.OnGetVersion(reply)
	case SettingUpdate:
		d.OnSettingUpdate(e.Settings)
	case SetActivity:
		d.OnSetActivity(e.Update)
	case ClearActivity:
		d.OnClearActivity()
	case SelectLocalPresence:
		d.OnSelectLocalPresence()
	default:
		d.logger.Warn().Str("event", ev.Name()).Msg("Unhandled event")
	}
}

// OnSetActivity queues update on its identity's lane. A hidden update
// clears first and never connects; without activity fields it stops after
// the clear.
func (d *Dispatcher) OnSetActivity(update models.PresenceUpdate) {
	id := update.Identity
	logger := d.logger.With().Str("identity", id.String()).Logger()

	ok := d.enqueue(id, func(ctx context.Context) {
		if update.IsHidden() {
			s, found := d.registry.Lookup(id)
			if !found {
				logger.Debug().Msg("Hidden update without a session, nothing to clear")
				return
			}
			if err := s.ClearActivity(ctx); err != nil {
				logger.Error().Err(err).Msg("Failed to clear hidden activity")
			}
			if update.Activity.IsEmpty() {
				return
			}
			if err := s.SetActivity(ctx, update.Activity); err != nil {
				logger.Error().Err(err).Msg("Failed to set activity")
			}
			return
		}

		s, err := d.registry.ResolveOrCreate(ctx, id)
		if err != nil {
			metrics.RecordPresenceUpdate(metrics.OutcomeDropped)
			logger.Error().Err(err).Msg("Dropping update, no session")
			return
		}
		if err := s.SetActivity(ctx, update.Activity); err != nil {
			logger.Error().Err(err).Msg("Failed to set activity")
		}
	})
	if !ok {
		metrics.RecordPresenceUpdate(metrics.OutcomeDropped)
		logger.Debug().Msg("Dropping update during shutdown")
	}
}

// OnClearActivity clears every session. Each clear is queued on its
// identity's lane before this returns, so it lands after every update
// received earlier; the sweep result is logged once all have run.
// Identities with queued work are covered too, since their first connect
// may still be running.
func (d *Dispatcher) OnClearActivity() {
	d.mu.Lock()
	if d.stopping {
		d.mu.Unlock()
		return
	}
	d.pending.Add(1)
	busy := make([]models.Identity, 0, len(d.lanes))
	for id := range d.lanes {
		busy = append(busy, id)
	}
	d.mu.Unlock()

	wait := d.registry.ScheduleClearAll(d.ctx, d.executor, busy...)
	go func() {
		defer d.pending.Done()
		if err := wait(); err != nil {
			d.logger.Error().Err(err).Msg("Clear-all sweep finished with failures")
			return
		}
		d.logger.Debug().Msg("Clear-all sweep finished")
	}()
}

// OnLocalFileSetChanged relays the file set to every client unchanged.
func (d *Dispatcher) OnLocalFileSetChanged(files []models.LocalFile) {
	if err := d.broadcast.Emit(EventLocalPresence, files); err != nil {
		d.logger.Warn().Err(err).Msg("Failed to broadcast local presences")
		return
	}
	d.logger.Debug().Int("files", len(files)).Msg("Broadcast local presences")
}

// OnGetVersion replies with the running version.
func (d *Dispatcher) OnGetVersion(reply Emitter) {
	if err := reply.Emit(EventReceiveVersion, d.cfg.Version); err != nil {
		d.logger.Warn().Err(err).Msg("Failed to send version")
	}
}

// OnSettingUpdate records the companion settings; they have no effect.
func (d *Dispatcher) OnSettingUpdate(settings models.Settings) {
	d.logger.Debug().
		Bool("enabled", settings.Enabled).
		Bool("auto_launch", settings.AutoLaunch).
		Bool("media_keys", settings.MediaKeys).
		Bool("title_menubar", settings.TitleMenubar).
		Msg("Settings updated")
}

// OnSelectLocalPresence is not supported while running.
func (d *Dispatcher) OnSelectLocalPresence() {
	d.logger.Warn().Msg("Selecting a local presence is not supported at runtime")
}

// OnClientConnected sends the logged-in user to the new client. A session
// already registered for the default client id is reused; otherwise a
// short-lived one is opened and closed again without being registered. The
// work runs on that identity's lane so it never overlaps a producer's connect
// for the same identity.
func (d *Dispatcher) OnClientConnected(reply Emitter) {
	id := d.cfg.DefaultClientID
	ok := d.enqueue(id, func(ctx context.Context) {
		if s, found := d.registry.Lookup(id); found {
			d.sendUser(reply, s.DescribeUser())
			return
		}

		s, err := session.Connect(ctx, d.transport, id, d.cfg.SessionOptions)
		if err != nil {
			d.logger.Warn().Err(err).Msg("Could not read the Discord user for a new client")
			return
		}
		defer s.Close()
		d.sendUser(reply, s.DescribeUser())
	})
	if !ok {
		d.logger.Debug().Msg("Skipping discordUser during shutdown")
	}
}

func (d *Dispatcher) sendUser(reply Emitter, user models.UserDescriptor) {
	if err := reply.Emit(EventDiscordUser, user); err != nil {
		d.logger.Warn().Err(err).Msg("Failed to send Discord user")
	}
}

// Drain blocks until every queued job and background task has finished.
func (d *Dispatcher) Drain() {
	d.pending.Wait()
}

// Serve implements suture.Service. It blocks until ctx is done, then stops
// accepting work, drains the lanes, clears every session and closes the
// registry.
func (d *Dispatcher) Serve(ctx context.Context) error {
	d.logger.Info().Msg("Dispatcher started")
	<-ctx.Done()
	d.shutdown()
	return ctx.Err()
}

// String implements fmt.Stringer for suture logging.
func (d *Dispatcher) String() string {
	return "dispatcher"
}

func (d *Dispatcher) shutdown() {
	d.mu.Lock()
	d.stopping = true
	d.mu.Unlock()

	timer := time.AfterFunc(d.cfg.ShutdownTimeout, func() {
		d.logger.Warn().Dur("timeout", d.cfg.ShutdownTimeout).Msg("Shutdown timed out, interrupting platform calls")
		d.cancel()
	})
	defer timer.Stop()

	d.Drain()

	if err := d.registry.ClearAll(d.ctx, nil); err != nil {
		d.logger.Warn().Err(err).Msg("Shutdown sweep finished with failures")
	}
	if err := d.registry.Close(); err != nil {
		d.logger.Warn().Err(err).Msg("Closing sessions failed")
	}
	d.cancel()
	d.logger.Info().Msg("Dispatcher stopped")
}

// executor queues fn on identity's lane.
func (d *Dispatcher) executor(identity models.Identity, fn func(context.Context) error) <-chan error {
	ch := make(chan error, 1)
	if !d.enqueue(identity, func(ctx context.Context) { ch <- fn(ctx) }) {
		ch <- ErrStopped
	}
	return ch
}

// enqueue appends run to identity's lane, starting the lane if idle. It
// reports false once shutdown began.
func (d *Dispatcher) enqueue(identity models.Identity, run func(ctx context.Context)) bool {
	d.mu.Lock()
	if d.stopping {
		d.mu.Unlock()
		return false
	}
	d.pending.Add(1)
	l, running := d.lanes[identity]
	if !running {
		l = &lane{}
		d.lanes[identity] = l
	}
	l.jobs = append(l.jobs, job{run: run, enqueued: time.Now()})
	d.mu.Unlock()

	if !running {
		go d.drain(identity, l)
	}
	return true
}

// drain runs l's jobs in order and removes the lane once it is empty.
func (d *Dispatcher) drain(identity models.Identity, l *lane) {
	for {
		d.mu.Lock()
		if len(l.jobs) == 0 {
			delete(d.lanes, identity)
			d.mu.Unlock()
			return
		}
		j := l.jobs[0]
		l.jobs[0] = job{}
		l.jobs = l.jobs[1:]
		d.mu.Unlock()

		metrics.RecordQueueWait(time.Since(j.enqueued))
		j.run(d.ctx)
		d.pending.Done()
	}
}
