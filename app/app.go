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

// Package app assembles a full application from the framework's parts:
// settings drive the logger, languages, template engine, and content
// engines, and the lifecycle handles startup hooks, serving, and
// graceful shutdown.
//
//	a := app.MustNew(app.WithSettings(cfg))
//	a.GET("/", func(c *router.Context) {
//	    c.Text(http.StatusOK, "Hello, World!")
//	})
//	if err := a.Start(ctx, ":8080"); err != nil {
//	    logger.Error("server stopped", "error", err)
//	}
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/illab/pippo/content"
	"github.com/illab/pippo/logging"
	"github.com/illab/pippo/router"
	"github.com/illab/pippo/settings"
	"github.com/illab/pippo/template"
)

// Hook is a lifecycle callback. Start hooks run before the listener
// opens; shutdown hooks run after it closes. A failing start hook
// aborts startup.
type Hook func(ctx context.Context) error

// App is the assembled application: a configured router plus the
// services around it and a managed server lifecycle.
type App struct {
	cfg       *config
	router    *router.Router
	settings  *settings.Settings
	logger    *slog.Logger
	languages *template.Languages

	mu         sync.Mutex
	server     *http.Server
	started    bool
	onStart    []Hook
	onShutdown []Hook
}

// New builds an application from options and settings. Missing pieces
// get sensible defaults: prod mode settings, a JSON logger, English as
// the only language, Mustache templates from "templates", and all
// built-in content engines.
func New(opts ...Option) (*App, error) {
	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	a := &App{cfg: cfg}
	if err := a.assemble(); err != nil {
		return nil, err
	}
	return a, nil
}

// MustNew is New that panics on a configuration error.
func MustNew(opts ...Option) *App {
	a, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("app.MustNew: %v", err))
	}
	return a
}

// assemble resolves every component from explicit options first, then
// settings, then defaults, and wires the router.
func (a *App) assemble() error {
	cfg := a.cfg

	a.settings = cfg.settings
	if a.settings == nil {
		loaded, err := settings.New()
		if err != nil {
			return fmt.Errorf("app: load settings: %w", err)
		}
		a.settings = loaded
	}

	if err := a.buildLogger(); err != nil {
		return err
	}
	if err := a.buildLanguages(); err != nil {
		return err
	}

	renderer := cfg.renderer
	if renderer == nil {
		engine, err := template.NewMustacheEngine(
			template.WithRoot(a.settings.StringOr("templates.root", "templates")),
			template.WithReload(a.settings.IsDev()),
		)
		if err != nil {
			return fmt.Errorf("app: template engine: %w", err)
		}
		renderer = engine
	}

	engines := cfg.engines
	if engines == nil {
		engines = content.All()
	}

	routerOpts := []router.Option{
		router.WithLogger(a.logger),
		router.WithLanguages(a.languages.Codes()...),
		router.WithTemplateRenderer(renderer),
		router.WithContentEngine(engines...),
	}
	routerOpts = append(routerOpts, cfg.routerOpts...)

	r, err := router.New(routerOpts...)
	if err != nil {
		return fmt.Errorf("app: router: %w", err)
	}
	a.router = r

	if cfg.sessions != nil {
		r.Use(cfg.sessions.Filter())
	}
	return nil
}

func (a *App) buildLogger() error {
	if a.cfg.logger != nil {
		a.logger = a.cfg.logger
		return nil
	}

	level, err := logging.ParseLevel(a.settings.StringOr("logging.level", "info"))
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}
	format, err := logging.ParseFormat(a.settings.StringOr("logging.format", "json"))
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if a.settings.IsDev() && !a.settings.Has("logging.format") {
		format = logging.FormatText
	}

	a.logger, err = logging.New(
		logging.WithLevel(level),
		logging.WithFormat(format),
		logging.WithService(
			a.settings.StringOr("app.name", "pippo"),
			a.settings.StringOr("app.version", ""),
		),
	)
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}
	return nil
}

func (a *App) buildLanguages() error {
	if a.cfg.languages != nil {
		a.languages = a.cfg.languages
		return nil
	}

	codes := []string{"en"}
	if a.settings.Has("app.languages") {
		loaded, err := a.settings.Strings("app.languages")
		if err != nil {
			return fmt.Errorf("app: languages: %w", err)
		}
		codes = loaded
	}

	langs, err := template.NewLanguages(codes...)
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}
	a.languages = langs
	return nil
}

// Router returns the underlying router for anything the delegation
// surface does not cover.
func (a *App) Router() *router.Router { return a.router }

// Settings returns the application settings snapshot.
func (a *App) Settings() *settings.Settings { return a.settings }

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Languages returns the configured language set.
func (a *App) Languages() *template.Languages { return a.languages }

// OnStart registers a hook that runs before the listener opens.
func (a *App) OnStart(hooks ...Hook) {
	a.mu.Lock()
	a.onStart = append(a.onStart, hooks...)
	a.mu.Unlock()
}

// OnShutdown registers a hook that runs after the server has drained.
func (a *App) OnShutdown(hooks ...Hook) {
	a.mu.Lock()
	a.onShutdown = append(a.onShutdown, hooks...)
	a.mu.Unlock()
}

// Start runs the application on addr: start hooks, then the HTTP
// server. It blocks until ctx is canceled or the server fails, drains
// in-flight requests within the shutdown timeout, and runs shutdown
// hooks. Starting a started app fails.
func (a *App) Start(ctx context.Context, addr string) error {
	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		return errors.New("app: already started")
	}
	a.started = true
	startHooks := a.onStart
	a.server = a.router.Server(addr)
	server := a.server
	a.mu.Unlock()

	for _, hook := range startHooks {
		if err := hook(ctx); err != nil {
			return fmt.Errorf("app: start hook: %w", err)
		}
	}

	a.logger.Info("server starting",
		"addr", addr, "mode", string(a.settings.Mode()))
	a.logRoutes()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("app: serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		return a.Stop(context.WithoutCancel(ctx))
	}
}

// Stop gracefully shuts the server down and runs shutdown hooks.
// Stopping an app that never started is a no-op.
func (a *App) Stop(ctx context.Context) error {
	a.mu.Lock()
	server := a.server
	a.server = nil
	shutdownHooks := a.onShutdown
	a.mu.Unlock()

	if server == nil {
		return nil
	}

	a.logger.Info("server stopping")
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.shutdownTimeout)
	defer cancel()

	var firstErr error
	if err := server.Shutdown(shutdownCtx); err != nil {
		firstErr = fmt.Errorf("app: shutdown: %w", err)
	}
	for _, hook := range shutdownHooks {
		if err := hook(shutdownCtx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("app: shutdown hook: %w", err)
		}
	}
	return firstErr
}

// logRoutes prints the route table at debug level on startup.
func (a *App) logRoutes() {
	for _, rt := range a.router.Registry().Routes() {
		a.logger.Debug("route registered",
			"method", rt.Method(), "pattern", rt.Pattern(),
			"filter", rt.IsFilter(), "name", rt.Name())
	}
}

// Use appends global middleware. See router.Router.Use.
func (a *App) Use(middleware ...router.HandlerFunc) {
	a.router.Use(middleware...)
}

// GET registers a terminal GET route.
func (a *App) GET(pattern string, handlers ...router.HandlerFunc) *router.Route {
	return a.router.GET(pattern, handlers...)
}

// POST registers a terminal POST route.
func (a *App) POST(pattern string, handlers ...router.HandlerFunc) *router.Route {
	return a.router.POST(pattern, handlers...)
}

// PUT registers a terminal PUT route.
func (a *App) PUT(pattern string, handlers ...router.HandlerFunc) *router.Route {
	return a.router.PUT(pattern, handlers...)
}

// PATCH registers a terminal PATCH route.
func (a *App) PATCH(pattern string, handlers ...router.HandlerFunc) *router.Route {
	return a.router.PATCH(pattern, handlers...)
}

// DELETE registers a terminal DELETE route.
func (a *App) DELETE(pattern string, handlers ...router.HandlerFunc) *router.Route {
	return a.router.DELETE(pattern, handlers...)
}

// Filter registers a non-terminal route. See router.Router.Filter.
func (a *App) Filter(method, pattern string, handlers ...router.HandlerFunc) (*router.Route, error) {
	return a.router.Filter(method, pattern, handlers...)
}

// Group creates a route group under prefix.
func (a *App) Group(prefix string, handlers ...router.HandlerFunc) *router.Group {
	return a.router.Group(prefix, handlers...)
}

// Static serves files from root under prefix.
func (a *App) Static(prefix, root string) {
	a.router.Static(prefix, root)
}

// ServeHTTP implements http.Handler, so an App can be mounted in tests
// or under another mux.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}
