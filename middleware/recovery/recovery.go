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

// Package recovery converts handler panics into logged 500 responses
// with a full stack trace. The dispatcher itself already keeps a panic
// from killing the server; this middleware adds the stack trace and a
// chance to run custom panic hooks, so register it early:
//
//	r.Use(recovery.New(recovery.WithLogger(logger)))
package recovery

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/illab/pippo/router"
)

type config struct {
	logger  *slog.Logger
	onPanic func(c *router.Context, value any)
}

// Option configures the recovery middleware.
type Option func(*config)

// WithLogger sets the logger stack traces go to. Without it, traces use
// the context logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithPanicHook installs a callback invoked with the recovered value
// before the error response is recorded. For alerting integrations.
func WithPanicHook(hook func(c *router.Context, value any)) Option {
	return func(cfg *config) {
		cfg.onPanic = hook
	}
}

// New returns the panic recovery middleware.
func New(opts ...Option) router.HandlerFunc {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(c *router.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			logger := cfg.logger
			if logger == nil {
				logger = c.Logger()
			}
			logger.Error("panic recovered",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"panic", fmt.Sprint(rec),
				"stack", string(debug.Stack()),
			)

			if cfg.onPanic != nil {
				cfg.onPanic(c, rec)
			}
			c.Error(router.NewStatusError(http.StatusInternalServerError,
				http.StatusText(http.StatusInternalServerError)))
		}()

		c.Next()
	}
}
