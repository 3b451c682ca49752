// Copyright 2025 The Vex Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logging builds the slog loggers used across the engine.
//
// Every component takes a *slog.Logger; this package owns how those
// loggers are constructed: output format, level, and the service
// attributes stamped on every entry. Components never construct handlers
// themselves.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the output encoding.
type Format string

const (
	// FormatJSON outputs structured JSON logs (default).
	FormatJSON Format = "json"
	// FormatText outputs key=value text logs.
	FormatText Format = "text"
)

// Level is re-exported so callers do not need to import log/slog for
// configuration.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// ParseLevel converts a level string (as found in configuration) into a
// Level. Matching is case-insensitive.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
}

// config holds the logger construction parameters.
type config struct {
	format         Format
	output         io.Writer
	level          Level
	addSource      bool
	serviceName    string
	serviceVersion string
}

// Option configures logger construction.
type Option func(*config)

// WithFormat sets the output format.
func WithFormat(f Format) Option {
	return func(c *config) { c.format = f }
}

// WithOutput sets the output writer. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(c *config) { c.output = w }
}

// WithLevel sets the minimum level.
func WithLevel(level Level) Option {
	return func(c *config) { c.level = level }
}

// WithSource enables source code locations in log entries.
func WithSource(enabled bool) Option {
	return func(c *config) { c.addSource = enabled }
}

// WithService stamps the service name and version on every entry.
func WithService(name, version string) Option {
	return func(c *config) {
		c.serviceName = name
		c.serviceVersion = version
	}
}

// New builds a *slog.Logger from the options. The default is a JSON
// logger at info level writing to stdout.
func New(opts ...Option) (*slog.Logger, error) {
	cfg := &config{
		format: FormatJSON,
		output: os.Stdout,
		level:  LevelInfo,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.output == nil {
		return nil, ErrNilOutput
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     cfg.level,
		AddSource: cfg.addSource,
	}

	var handler slog.Handler
	switch cfg.format {
	case FormatJSON:
		handler = slog.NewJSONHandler(cfg.output, handlerOpts)
	case FormatText:
		handler = slog.NewTextHandler(cfg.output, handlerOpts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, cfg.format)
	}

	if cfg.serviceName != "" {
		attrs := []slog.Attr{slog.String("service", cfg.serviceName)}
		if cfg.serviceVersion != "" {
			attrs = append(attrs, slog.String("version", cfg.serviceVersion))
		}
		handler = handler.WithAttrs(attrs)
	}

	return slog.New(handler), nil
}

// MustNew builds a logger and panics on invalid configuration.
func MustNew(opts ...Option) *slog.Logger {
	logger, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("logging.MustNew: %v", err))
	}
	return logger
}

// Noop returns a logger that discards everything.
func Noop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
