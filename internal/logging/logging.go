// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zap logger shared by every aisle component.
//
// The TUI owns the terminal, so logs go to a file by default. CLI commands
// may additionally mirror them to stderr with --verbose.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls logger construction.
type Options struct {
	// Enabled false yields a no-op logger.
	Enabled bool
	// Level is debug, info, warn or error.
	Level string
	// Path is the log file. Parent directories are created.
	Path string
	// Stderr mirrors output to stderr and forces debug level.
	Stderr bool
}

// New returns a production zap logger configured from opts.
func New(opts Options) (*zap.Logger, error) {
	if !opts.Enabled && !opts.Stderr {
		return zap.NewNop(), nil
	}

	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.Sampling = nil
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.OutputPaths = nil
	config.ErrorOutputPaths = nil

	if opts.Enabled && opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		config.OutputPaths = append(config.OutputPaths, opts.Path)
		config.ErrorOutputPaths = append(config.ErrorOutputPaths, opts.Path)
	}
	if opts.Stderr {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		config.Encoding = "console"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.OutputPaths = append(config.OutputPaths, "stderr")
		config.ErrorOutputPaths = append(config.ErrorOutputPaths, "stderr")
	}
	if len(config.OutputPaths) == 0 {
		return zap.NewNop(), nil
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.Named("aisle"), nil
}

// ParseLevel maps a config level string to a zap level. Empty means info.
func ParseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// OrNop returns l, or a no-op logger when l is nil. Constructors across
// aisle accept a nil logger and call this.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
