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

package app

import (
	"log/slog"
	"time"

	"github.com/illab/pippo/router"
	"github.com/illab/pippo/session"
	"github.com/illab/pippo/settings"
	"github.com/illab/pippo/template"
)

// defaultShutdownTimeout bounds graceful drain on Stop.
const defaultShutdownTimeout = 15 * time.Second

type config struct {
	settings        *settings.Settings
	logger          *slog.Logger
	languages       *template.Languages
	renderer        router.TemplateRenderer
	engines         []router.ContentEngine
	sessions        *session.Manager
	routerOpts      []router.Option
	shutdownTimeout time.Duration
}

func newConfig() *config {
	return &config{shutdownTimeout: defaultShutdownTimeout}
}

// Option configures an App.
type Option func(*config)

// WithSettings supplies a pre-loaded settings snapshot. Without it the
// app loads settings from the environment only.
func WithSettings(s *settings.Settings) Option {
	return func(cfg *config) {
		cfg.settings = s
	}
}

// WithLogger overrides the settings-derived logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithLanguages overrides the settings-derived language set.
func WithLanguages(langs *template.Languages) Option {
	return func(cfg *config) {
		cfg.languages = langs
	}
}

// WithTemplateEngine overrides the default Mustache engine.
func WithTemplateEngine(renderer router.TemplateRenderer) Option {
	return func(cfg *config) {
		cfg.renderer = renderer
	}
}

// WithContentEngines replaces the default engine set (all built-ins).
func WithContentEngines(engines ...router.ContentEngine) Option {
	return func(cfg *config) {
		cfg.engines = engines
	}
}

// WithSessionManager installs the manager's filter as global
// middleware, ahead of everything registered later.
func WithSessionManager(m *session.Manager) Option {
	return func(cfg *config) {
		cfg.sessions = m
	}
}

// WithRouterOptions passes extra options through to the router, after
// the app's own wiring so they can override it.
func WithRouterOptions(opts ...router.Option) Option {
	return func(cfg *config) {
		cfg.routerOpts = append(cfg.routerOpts, opts...)
	}
}

// WithShutdownTimeout bounds how long Stop waits for in-flight
// requests. Defaults to 15 seconds.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(cfg *config) {
		cfg.shutdownTimeout = timeout
	}
}
