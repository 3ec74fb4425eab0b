// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

package localpresence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/tomtom215/presencebridge/internal/logging"
	"github.com/tomtom215/presencebridge/internal/metrics"
	"github.com/tomtom215/presencebridge/internal/models"
)

// DefaultDebounce is how long changes are collected before they are
// reported.
const DefaultDebounce = time.Second

var errWatcherClosed = errors.New("localpresence: watcher closed")

// Sink receives the files changed during one debounce window.
type Sink interface {
	OnLocalFileSetChanged(files []models.LocalFile)
}

// Config holds watcher settings.
type Config struct {
	Dir      string
	Debounce time.Duration
}

// Watcher reports changed bundle files under a directory tree. It implements
// suture.Service.
type Watcher struct {
	cfg    Config
	sink   Sink
	logger zerolog.Logger
}

// NewWatcher creates a watcher for cfg.Dir.
func NewWatcher(cfg Config, sink Sink) *Watcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	return &Watcher{
		cfg:    cfg,
		sink:   sink,
		logger: logging.With().Str("component", "localpresence").Str("dir", cfg.Dir).Logger(),
	}
}

// Serve watches until ctx is canceled. A window opens with the first change
// after a flush and closes one debounce later, however busy the directory
// stays; each window yields at most one notification holding the supported
// files that changed in it.
func (w *Watcher) Serve(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	if err := addRecursive(fsw, w.cfg.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.cfg.Dir, err)
	}
	w.logger.Info().Msg("watching local presences")

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.cfg.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fsw.Events:
			if !ok {
				return errWatcherClosed
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addRecursive(fsw, ev.Name); err != nil {
						w.logger.Warn().Err(err).Str("path", ev.Name).Msg("failed to watch new directory")
					}
				}
			}
			if len(pending) == 0 {
				timer.Reset(w.cfg.Debounce)
			}
			pending[ev.Name] = struct{}{}

		case <-timer.C:
			w.flush(pending)
			pending = make(map[string]struct{})

		case err, ok := <-fsw.Errors:
			if !ok {
				return errWatcherClosed
			}
			metrics.RecordLocalPresenceReload(err)
			w.logger.Error().Err(err).Msg("watch error")
		}
	}
}

// String implements fmt.Stringer for suture logging.
func (w *Watcher) String() string {
	return "local-presence-watcher"
}

func (w *Watcher) flush(pending map[string]struct{}) {
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	files, err := LoadAll(paths)
	metrics.RecordLocalPresenceReload(err)
	if err != nil {
		w.logger.Warn().Err(err).Msg("skipped unreadable local presence files")
	}
	if len(files) == 0 {
		return
	}

	w.logger.Info().Int("files", len(files)).Msg("local presences changed")
	w.sink.OnLocalFileSetChanged(files)
}

// addRecursive watches root and every directory below it.
func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
}
