// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/tomtom215/presencebridge/internal/config"
	"github.com/tomtom215/presencebridge/internal/logging"
	"github.com/tomtom215/presencebridge/internal/metrics"
)

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		os.Exit(2)
	}

	if opts.showVersion {
		fmt.Println(resolveVersion())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, opts)
	stop()
	if err != nil {
		logging.Error().Err(err).Msg("PresenceBridge stopped with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := opts.apply(cfg); err != nil {
		return fmt.Errorf("apply flags: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	v := resolveVersion()
	metrics.SetAppInfo(v, runtime.Version())

	logging.Info().
		Str("version", v).
		Str("addr", cfg.Server.Addr()).
		Str("config", cfg.Source).
		Bool("local_presence", cfg.LocalPresence.Enabled()).
		Msg("Starting PresenceBridge")

	a, err := newApp(cfg, v)
	if err != nil {
		return err
	}

	if cfg.Source != "" {
		watchLogLevel(cfg.Source, opts)
	}

	if err := a.serve(ctx); err != nil {
		return err
	}
	logging.Info().Msg("Application stopped gracefully")
	return nil
}

// watchLogLevel applies logging.level changes from the config file at
// runtime. A --log-level flag pins the level.
func watchLogLevel(path string, opts options) {
	if opts.logLevel != "" {
		return
	}
	err := config.WatchConfigFile(path, func(cfg *config.Config) {
		logging.SetLevelString(cfg.Logging.Level)
		logging.Info().Str("level", cfg.Logging.Level).Msg("Configuration reloaded")
	}, func(err error) {
		logging.Warn().Err(err).Str("path", path).Msg("Ignoring invalid configuration change")
	})
	if err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("Config file watch unavailable")
	}
}
