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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"sync"
)

// noopLogger is the singleton logger used when no logging is configured.
var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Router matches HTTP requests to registered routes and executes the
// handler chain around the best match.
//
// Dispatch model:
//   - FindMatches returns every matching route, most specific first.
//   - The invocation chain is: global middleware, then the handlers of
//     all matched filter routes in specificity order, then the handlers
//     of the single most-specific terminal route.
//   - Handlers continue the chain explicitly via Context.Next; one that
//     returns without calling Next short-circuits the remainder.
//   - Panics and errors recorded via Context.Error are mapped to HTTP
//     responses by the error handler; the response is finalized exactly
//     once regardless of how the chain ended.
//
// Routes are registered during single-threaded setup; the registry is
// frozen before the first request and read without locking thereafter.
//
// Example:
//
//	r := router.MustNew()
//	r.GET("/users/{id}", func(c *router.Context) {
//	    c.JSON(http.StatusOK, map[string]string{"id": c.Param("id")})
//	})
//	http.ListenAndServe(":8080", r)
type Router struct {
	registry   *Registry
	middleware []HandlerFunc

	engines       map[string]ContentEngine
	defaultEngine ContentEngine
	renderer      TemplateRenderer
	languages     []string

	errorHandler     ErrorHandler
	notFound         HandlerFunc
	methodNotAllowed func(c *Context, allowed []string)

	logger *slog.Logger

	enableH2C      bool
	serverTimeouts *serverTimeouts

	freezeOnce sync.Once
	pool       sync.Pool
}

// Option configures a Router.
type Option func(*Router)

// New creates a Router with the given options. Configuration errors are
// reported immediately rather than at request time.
func New(opts ...Option) (*Router, error) {
	r := &Router{
		registry: NewRegistry(),
		engines:  make(map[string]ContentEngine),
	}
	r.pool.New = func() any { return &Context{index: -1} }

	for _, opt := range opts {
		opt(r)
	}

	if r.errorHandler == nil {
		r.errorHandler = ErrorHandlerFunc(defaultErrorHandler)
	}
	return r, nil
}

// MustNew is New that panics on a configuration error. Use at startup
// where failing fast is the right behavior.
func MustNew(opts ...Option) *Router {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("router.MustNew: %v", err))
	}
	return r
}

// Registry exposes the route registry for reverse routing and
// introspection.
func (r *Router) Registry() *Registry { return r.registry }

// Use appends global middleware executed ahead of every matched chain,
// including the not-found and method-not-allowed paths' terminal
// handlers' filters. Middleware follows the same explicit-continuation
// contract as filters.
func (r *Router) Use(middleware ...HandlerFunc) {
	r.middleware = append(r.middleware, middleware...)
}

// Handle registers a terminal route, returning a configuration error for
// a malformed pattern. The convenience verbs (GET, POST, ...) panic
// instead, which aborts startup the way a bad pattern should.
func (r *Router) Handle(method, pattern string, handlers ...HandlerFunc) (*Route, error) {
	return r.registry.Add(method, pattern, KindHandler, handlers...)
}

// Filter registers a non-terminal route. All filters matching a request
// run ahead of its terminal handler, in specificity order. Use
// router.AnyMethod to guard a prefix for every HTTP method:
//
//	r.Filter(router.AnyMethod, "/admin/*", RequireAdmin)
func (r *Router) Filter(method, pattern string, handlers ...HandlerFunc) (*Route, error) {
	return r.registry.Add(method, pattern, KindFilter, handlers...)
}

func (r *Router) mustHandle(method, pattern string, handlers []HandlerFunc) *Route {
	rt, err := r.registry.Add(method, pattern, KindHandler, handlers...)
	if err != nil {
		panic(fmt.Sprintf("router: %v", err))
	}
	return rt
}

// GET registers a terminal route for GET requests.
// It panics on a malformed pattern.
func (r *Router) GET(pattern string, handlers ...HandlerFunc) *Route {
	return r.mustHandle(http.MethodGet, pattern, handlers)
}

// POST registers a terminal route for POST requests.
func (r *Router) POST(pattern string, handlers ...HandlerFunc) *Route {
	return r.mustHandle(http.MethodPost, pattern, handlers)
}

// PUT registers a terminal route for PUT requests.
func (r *Router) PUT(pattern string, handlers ...HandlerFunc) *Route {
	return r.mustHandle(http.MethodPut, pattern, handlers)
}

// PATCH registers a terminal route for PATCH requests.
func (r *Router) PATCH(pattern string, handlers ...HandlerFunc) *Route {
	return r.mustHandle(http.MethodPatch, pattern, handlers)
}

// DELETE registers a terminal route for DELETE requests.
func (r *Router) DELETE(pattern string, handlers ...HandlerFunc) *Route {
	return r.mustHandle(http.MethodDelete, pattern, handlers)
}

// HEAD registers a terminal route for HEAD requests.
func (r *Router) HEAD(pattern string, handlers ...HandlerFunc) *Route {
	return r.mustHandle(http.MethodHead, pattern, handlers)
}

// OPTIONS registers a terminal route for OPTIONS requests.
func (r *Router) OPTIONS(pattern string, handlers ...HandlerFunc) *Route {
	return r.mustHandle(http.MethodOptions, pattern, handlers)
}

// NoRoute sets a custom terminal handler for requests that match no
// route under any method. Nil restores the default 404 body.
func (r *Router) NoRoute(handler HandlerFunc) {
	r.notFound = handler
}

// ServeHTTP implements http.Handler.
//
// For each request it freezes the registry on first use, resolves the
// matching routes, builds the chain, negotiates the locale, and executes
// the chain with panic recovery. The response is committed exactly once
// after the chain unwinds, and the context is marked finished before
// returning to the pool.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.freezeOnce.Do(r.registry.Freeze)

	c := r.getContext(w, req)
	defer r.putContext(c)

	path := req.URL.Path
	matches := r.registry.FindMatches(req.Method, path)

	// Split the matches into the filter prefix and the terminal route.
	// Matches are most specific first; the terminal is the most
	// specific non-filter route.
	var terminal *RouteMatch
	var filters []RouteMatch
	for i := range matches {
		if matches[i].Route.IsFilter() {
			filters = append(filters, matches[i])
		} else if terminal == nil {
			m := matches[i]
			terminal = &m
		}
	}

	if terminal == nil {
		r.dispatchUnmatched(c, path, filters)
		return
	}

	c.route = terminal.Route
	c.params = terminal.Params

	chain := make([]HandlerFunc, 0, len(r.middleware)+len(filters)+len(terminal.Route.handlers))
	chain = append(chain, r.middleware...)
	for _, f := range filters {
		chain = append(chain, f.Route.handlers...)
	}
	chain = append(chain, terminal.Route.handlers...)

	r.run(c, chain)
}

// dispatchUnmatched handles requests with no terminal route: 405 when
// the path exists under another method, 404 otherwise. Global middleware
// and matched filters still run, so access logging sees these requests
// and a guard filter can reject an unknown path under its prefix.
func (r *Router) dispatchUnmatched(c *Context, path string, filters []RouteMatch) {
	allowed := r.registry.AllowedMethods(path)

	var terminal HandlerFunc
	if len(allowed) > 0 && !methodIn(allowed, c.Request.Method) {
		terminal = func(c *Context) {
			if r.methodNotAllowed != nil {
				r.methodNotAllowed(c, allowed)
				return
			}
			c.MethodNotAllowed(allowed)
		}
	} else {
		terminal = r.notFound
		if terminal == nil {
			terminal = func(c *Context) {
				c.NotFound()
			}
		}
	}

	chain := make([]HandlerFunc, 0, len(r.middleware)+len(filters)+1)
	chain = append(chain, r.middleware...)
	for _, f := range filters {
		chain = append(chain, f.Route.handlers...)
	}
	chain = append(chain, terminal)
	r.run(c, chain)
}

// run executes the chain with explicit continuation, maps failures, and
// guarantees a single commit.
func (r *Router) run(c *Context, chain []HandlerFunc) {
	c.handlers = chain
	c.index = -1

	func() {
		defer func() {
			if rec := recover(); rec != nil {
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("panic: %v", rec)
				}
				r.handleError(c, err)
			}
		}()
		c.Next()
	}()

	// An uncommitted response with recorded errors belongs to the error
	// handler, which replaces any partial output.
	if !c.Response.Committed() && len(c.errs) > 0 {
		r.handleError(c, c.errs[0])
	}

	if !c.Response.Committed() {
		if err := c.Response.Commit(); err != nil {
			c.Logger().Error("response commit failed", "error", err)
		}
	}
	c.finished = true
}

// handleError discards partial output and hands the failure to the
// error handler. If the response was already committed the failure can
// only be logged.
func (r *Router) handleError(c *Context, err error) {
	if c.Response.Committed() {
		c.Logger().Error("handler failed after response commit", "error", err)
		return
	}
	c.Response.Reset()
	r.errorHandler.Handle(c, err)
}

// defaultErrorHandler maps the error taxonomy to status codes: 404/405/
// 406 and StatusError codes pass through, everything else becomes a 500
// with the cause logged but not exposed.
func defaultErrorHandler(c *Context, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		c.Logger().Error("request failed", "method", c.Request.Method,
			"path", c.Request.URL.Path, "error", err)
	}

	message := http.StatusText(code)
	var se *StatusError
	if errors.As(err, &se) && se.Message != "" {
		message = se.Message
	}
	_ = c.JSON(code, map[string]any{"status": code, "error": message})
}

// negotiate picks the content engine for the request's Accept header,
// falling back to the default engine. With no header the default wins
// outright; otherwise offers are checked in sorted MIME order so equal
// qualities resolve the same way on every request.
func (r *Router) negotiate(c *Context) (ContentEngine, error) {
	accept := c.Request.Header.Get("Accept")
	if accept != "" && len(r.engines) > 0 {
		offers := make([]string, 0, len(r.engines))
		for mime := range r.engines {
			offers = append(offers, mime)
		}
		sort.Strings(offers)
		if best := c.Accepts(offers...); best != "" {
			return r.engines[best], nil
		}
	}
	if r.defaultEngine != nil {
		return r.defaultEngine, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotAcceptable, accept)
}

// engineFor returns the engine registered for the MIME type, or the
// default engine when the type is unknown.
func (r *Router) engineFor(contentType string) ContentEngine {
	if e, ok := r.engines[contentType]; ok {
		return e
	}
	return r.defaultEngine
}

func (r *Router) getContext(w http.ResponseWriter, req *http.Request) *Context {
	c := r.pool.Get().(*Context)
	c.Request = req
	c.Response = NewResponse(w)
	c.router = r
	c.logger = r.logger
	if len(r.languages) > 0 {
		c.locale = c.AcceptsLanguages(r.languages...)
		if c.locale == "" {
			c.locale = r.languages[0] // registered default wins over no match
		}
	}
	return c
}

func (r *Router) putContext(c *Context) {
	c.reset()
	r.pool.Put(c)
}

func methodIn(methods []string, method string) bool {
	for _, m := range methods {
		if m == method {
			return true
		}
	}
	return false
}
