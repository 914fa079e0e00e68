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

// Package accesslog logs one structured record per request: method,
// path, status, body size, and elapsed time, at a level derived from
// the status code.
package accesslog

import (
	"log/slog"
	"time"

	"github.com/illab/pippo/middleware/requestid"
	"github.com/illab/pippo/router"
)

type config struct {
	logger     *slog.Logger
	skipPaths  map[string]struct{}
	clientAddr bool
}

// Option configures the access logger.
type Option func(*config)

// WithLogger sets the logger records go to. Without it, records use the
// context logger, which the application wires at router construction.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithSkipPaths suppresses logging for exact paths, typically health
// and readiness probes that would otherwise dominate the log.
func WithSkipPaths(paths ...string) Option {
	return func(cfg *config) {
		for _, p := range paths {
			cfg.skipPaths[p] = struct{}{}
		}
	}
}

// WithClientAddr adds the client remote address to each record.
func WithClientAddr(enable bool) Option {
	return func(cfg *config) {
		cfg.clientAddr = enable
	}
}

// New returns the access logging middleware.
//
//	r.Use(accesslog.New(
//	    accesslog.WithLogger(logger),
//	    accesslog.WithSkipPaths("/healthz"),
//	))
func New(opts ...Option) router.HandlerFunc {
	cfg := config{skipPaths: make(map[string]struct{})}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(c *router.Context) {
		if _, skip := cfg.skipPaths[c.Request.URL.Path]; skip {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		logger := cfg.logger
		if logger == nil {
			logger = c.Logger()
		}

		status := c.Response.Status()
		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Int("body_bytes", c.Response.BodyLen()),
			slog.Duration("elapsed", time.Since(start)),
		}
		if id := requestid.FromContext(c); id != "" {
			attrs = append(attrs, slog.String("request_id", id))
		}
		if cfg.clientAddr {
			attrs = append(attrs, slog.String("client", c.Request.RemoteAddr))
		}

		switch {
		case status >= 500:
			logger.Error("request", attrs...)
		case status >= 400:
			logger.Warn("request", attrs...)
		default:
			logger.Info("request", attrs...)
		}
	}
}
