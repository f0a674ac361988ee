/*
NAME
  obslog.go

DESCRIPTION
  obslog.go wires up this module's ambient logging: a rotating file
  sink plus an optional systemd journal sink feeding a single
  ausocean/utils/logging.Logger, matching the setup in
  cmd/looper/main.go (lumberjack.Logger for the file, io.MultiWriter
  to fan out, logging.New to build the Logger callers pass around).

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package obslog builds the ausocean/utils/logging.Logger every
// package in this module accepts, so cmd/ entry points configure
// logging in one place instead of each reimplementing the sink setup.
package obslog

import (
	"io"

	"github.com/ausocean/utils/logging"
	"github.com/coreos/go-systemd/journal"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation defaults, matching cmd/looper/main.go's constants.
const (
	DefaultMaxSizeMB  = 500
	DefaultMaxBackups = 10
	DefaultMaxAgeDays = 28
)

// Config holds obslog.New's inputs. The zero value logs to path at
// logging.Info verbosity with no journal sink.
type Config struct {
	Path          string
	Verbosity     int8
	Suppress      bool // suppress repeated identical log lines
	MaxSizeMB     int
	MaxBackups    int
	MaxAgeDays    int
	EnableJournal bool // also send to the systemd journal, if available
}

// New builds a logging.Logger writing to a rotating file at cfg.Path
// and, if cfg.EnableJournal and the journal is reachable, to the
// systemd journal too.
func New(cfg Config) logging.Logger {
	fileLog := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    orDefault(cfg.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: orDefault(cfg.MaxBackups, DefaultMaxBackups),
		MaxAge:     orDefault(cfg.MaxAgeDays, DefaultMaxAgeDays),
	}

	var w io.Writer = fileLog
	if cfg.EnableJournal && journal.Enabled() {
		w = io.MultiWriter(fileLog, journalWriter{})
	}

	return logging.New(cfg.Verbosity, w, cfg.Suppress)
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// journalWriter adapts the systemd journal's Send call to io.Writer,
// so it can sit alongside the file sink in an io.MultiWriter the same
// way netlogger.New() does for cmd/looper/main.go's cloud sink.
type journalWriter struct{}

func (journalWriter) Write(p []byte) (int, error) {
	if err := journal.Print(journal.PriInfo, "%s", string(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}
