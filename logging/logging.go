// Copyright 2025 The Pippo Authors
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

// Package logging builds the application's slog logger: JSON output for
// machines in production, text for humans in development, with service
// identity attached to every record.
//
//	logger := logging.MustNew(
//	    logging.WithService("shop", "1.4.0"),
//	    logging.WithLevel(slog.LevelDebug),
//	    logging.WithFormat(logging.FormatText),
//	)
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the log output encoding.
type Format string

const (
	// FormatJSON emits one JSON object per record. The production
	// default; log pipelines parse it directly.
	FormatJSON Format = "json"

	// FormatText emits human-readable key=value lines for development.
	FormatText Format = "text"
)

type config struct {
	level     slog.Level
	format    Format
	output    io.Writer
	service   string
	version   string
	addSource bool
}

// Option configures the logger.
type Option func(*config)

// WithLevel sets the minimum level. Defaults to slog.LevelInfo.
func WithLevel(level slog.Level) Option {
	return func(cfg *config) {
		cfg.level = level
	}
}

// WithFormat selects JSON or text output. Defaults to JSON.
func WithFormat(format Format) Option {
	return func(cfg *config) {
		cfg.format = format
	}
}

// WithOutput redirects log output. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(cfg *config) {
		cfg.output = w
	}
}

// WithService attaches service name and version to every record, so
// aggregated logs from several services stay attributable.
func WithService(name, version string) Option {
	return func(cfg *config) {
		cfg.service = name
		cfg.version = version
	}
}

// WithSource adds file:line of the log call to each record. Useful in
// development, noisy in production.
func WithSource(addSource bool) Option {
	return func(cfg *config) {
		cfg.addSource = addSource
	}
}

// New builds a configured *slog.Logger.
func New(opts ...Option) (*slog.Logger, error) {
	cfg := config{
		level:  slog.LevelInfo,
		format: FormatJSON,
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(&cfg)
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
		return nil, fmt.Errorf("logging: unknown format %q", cfg.format)
	}

	logger := slog.New(handler)
	if cfg.service != "" {
		attrs := []any{slog.String("service", cfg.service)}
		if cfg.version != "" {
			attrs = append(attrs, slog.String("version", cfg.version))
		}
		logger = logger.With(attrs...)
	}
	return logger, nil
}

// MustNew is New that panics on a configuration error.
func MustNew(opts ...Option) *slog.Logger {
	logger, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("logging.MustNew: %v", err))
	}
	return logger
}

// ParseLevel converts a level name from configuration ("debug", "info",
// "warn", "error") into a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("logging: unknown level %q", name)
	}
}

// ParseFormat converts a format name from configuration into a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json", "":
		return FormatJSON, nil
	case "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("logging: unknown format %q", name)
	}
}
