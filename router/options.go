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

package router

import (
	"log/slog"
	"time"
)

// WithLogger sets the base logger used to derive request-scoped loggers.
// Without it, Context.Logger returns a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithErrorHandler replaces the default error handler. The handler
// receives the context with partial output already discarded and must
// write the mapped response.
func WithErrorHandler(h ErrorHandler) Option {
	return func(r *Router) {
		if h != nil {
			r.errorHandler = h
		}
	}
}

// WithContentEngine registers a content engine for negotiation and
// request binding. The first registered engine becomes the negotiation
// fallback unless WithDefaultContentEngine overrides it.
func WithContentEngine(engines ...ContentEngine) Option {
	return func(r *Router) {
		for _, e := range engines {
			r.engines[e.ContentType()] = e
			if r.defaultEngine == nil {
				r.defaultEngine = e
			}
		}
	}
}

// WithDefaultContentEngine registers an engine and makes it the
// fallback when the Accept header matches nothing.
func WithDefaultContentEngine(e ContentEngine) Option {
	return func(r *Router) {
		r.engines[e.ContentType()] = e
		r.defaultEngine = e
	}
}

// WithoutDefaultContentEngine clears the negotiation fallback. With no
// fallback, an Accept header matching no registered engine yields 406.
func WithoutDefaultContentEngine() Option {
	return func(r *Router) {
		r.defaultEngine = nil
	}
}

// WithTemplateRenderer sets the template engine used by Context.Render.
func WithTemplateRenderer(t TemplateRenderer) Option {
	return func(r *Router) {
		r.renderer = t
	}
}

// WithLanguages declares the languages the application serves, in
// preference order. The first entry is the default when the request
// expresses no usable preference. Dispatch negotiates Context.Locale
// from this list at entry.
func WithLanguages(languages ...string) Option {
	return func(r *Router) {
		r.languages = languages
	}
}

// WithMethodNotAllowedHandler replaces the default 405 response. The
// handler receives the methods registered for the path.
func WithMethodNotAllowedHandler(h func(c *Context, allowed []string)) Option {
	return func(r *Router) {
		r.methodNotAllowed = h
	}
}

// WithH2C enables HTTP/2 cleartext on Serve.
//
// Only use in development or behind a trusted load balancer; do not
// enable on public-facing servers without TLS.
func WithH2C(enable bool) Option {
	return func(r *Router) {
		r.enableH2C = enable
	}
}

// WithServerTimeouts configures the timeouts Serve applies to the HTTP
// server. Defaults when unset: 5s header read, 15s read, 30s write,
// 60s idle.
func WithServerTimeouts(readHeader, read, write, idle time.Duration) Option {
	return func(r *Router) {
		r.serverTimeouts = &serverTimeouts{
			readHeader: readHeader,
			read:       read,
			write:      write,
			idle:       idle,
		}
	}
}
