// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

package main

import (
	"io"

	"github.com/spf13/pflag"

	"github.com/tomtom215/presencebridge/internal/config"
)

// options holds command line flags.
type options struct {
	configPath    string
	localPresence string
	logLevel      string
	showVersion   bool
}

// parseFlags parses args (without the program name).
func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options

	fs := pflag.NewFlagSet("presencebridge", pflag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVarP(&opts.configPath, "config", "c", "", "YAML config file (default: CONFIG_PATH or ./config.yaml)")
	fs.StringVarP(&opts.localPresence, "local-presence", "l", "", "directory of local presences to watch")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	fs.BoolVar(&opts.showVersion, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

// apply lets flags override the loaded configuration, then revalidates it.
func (o options) apply(cfg *config.Config) error {
	if o.localPresence != "" {
		cfg.LocalPresence.Dir = o.localPresence
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	return cfg.Validate()
}
