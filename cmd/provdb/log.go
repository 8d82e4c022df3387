// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

package main

import (
	"os"
	"strings"

	log "github.com/sandia-minimega/provdb/pkg/minilog"

	"github.com/pkg/errors"
)

// logSetup registers the daemon's log sinks: a colorized stderr logger and,
// when log_file_path is set, an append-mode file logger. log_level none
// registers nothing, which silences logging entirely.
func logSetup(cfg *Config) error {
	if strings.EqualFold(cfg.LogLevel, "none") {
		return nil
	}

	level, err := log.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		return errors.Wrapf(err, "log_level %q", cfg.LogLevel)
	}

	log.AddLogger("stderr", os.Stderr, level, true)

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0660)
		if err != nil {
			return errors.Wrapf(err, "opening log file %v", cfg.LogFile)
		}
		log.AddLogger("file", f, level, false)
	}

	for _, filter := range strings.Split(cfg.LogFilters, ",") {
		filter = strings.TrimSpace(filter)
		if filter == "" {
			continue
		}

		if err := log.AddFilter("stderr", filter); err != nil {
			return err
		}
		if cfg.LogFile != "" {
			if err := log.AddFilter("file", filter); err != nil {
				return err
			}
		}
	}

	return nil
}
