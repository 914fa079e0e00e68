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
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"gopkg.in/yaml.v3"
)

// HandlerFunc is the signature shared by terminal handlers and filters.
//
// The chain uses explicit continuation: a handler that wants the rest of
// the chain to run must call c.Next(). Returning without calling Next
// short-circuits every handler after it — the idiom for auth rejections
// and cache hits:
//
//	func RequireToken(c *router.Context) {
//	    if c.Request.Header.Get("Authorization") == "" {
//	        c.Text(http.StatusUnauthorized, "missing token")
//	        return // terminal handler never runs
//	    }
//	    c.Next()
//	}
type HandlerFunc func(*Context)

// Context carries the per-request state through the filter chain: the
// wrapped request and response, extracted path parameters, the
// negotiated locale, and a request-scoped value bag.
//
// Context is NOT safe for concurrent use. An instance is exclusively
// owned by the goroutine handling its request, is pooled, and must not
// be retained after the handler returns. Copy what you need before
// starting goroutines.
type Context struct {
	Request  *http.Request
	Response *Response

	router   *Router
	handlers []HandlerFunc
	index    int

	route    *Route // matched terminal route, nil for 404/405 handlers
	params   Params
	locale   string
	logger   *slog.Logger
	values   map[string]any
	errs     []error
	finished bool

	// Accept header parse cache, valid for one request.
	cachedAcceptHeader string
	cachedAcceptSpecs  []acceptSpec
}

// reset returns the context to its zero state for pooling.
func (c *Context) reset() {
	c.Request = nil
	c.Response = nil
	c.router = nil
	c.handlers = nil
	c.index = -1
	c.route = nil
	c.params = nil
	c.locale = ""
	c.logger = nil
	c.errs = nil
	c.finished = false
	c.cachedAcceptHeader = ""
	c.cachedAcceptSpecs = nil
	if c.values != nil {
		clear(c.values)
	}
}

// Next invokes the next handler in the chain. Each handler is entered at
// most once; the chain is a synchronous call stack, so code after Next
// runs once the downstream handlers have returned:
//
//	func Timing(c *router.Context) {
//	    start := time.Now()
//	    c.Next()
//	    c.Logger().Debug("handled", "elapsed", time.Since(start))
//	}
func (c *Context) Next() {
	c.index++
	if c.index < len(c.handlers) {
		c.handlers[c.index](c)
	}
}

// Route returns the matched terminal route, or nil when the context was
// built for a not-found or method-not-allowed handler.
func (c *Context) Route() *Route { return c.route }

// Finished reports whether dispatch for this request has completed.
// The dispatcher sets it after the chain unwinds or an error is mapped;
// a finished context cannot commit the response again.
func (c *Context) Finished() bool { return c.finished }

// Locale returns the locale negotiated from the Accept-Language header
// against the router's registered languages, or "" when the router has
// no languages configured. The value is fixed at dispatch entry and
// carried explicitly — there is no per-thread locale state.
func (c *Context) Locale() string { return c.locale }

// Logger returns the request-scoped logger. It never returns nil; a
// router without logging configured yields a no-op logger.
func (c *Context) Logger() *slog.Logger {
	if c.logger == nil {
		return noopLogger
	}
	return c.logger
}

// Param returns the value of a path parameter by name, or "" when the
// parameter does not exist. Wildcard captures from anonymous "*"
// patterns live under router.WildcardParam.
func (c *Context) Param(name string) string { return c.params[name] }

// Params returns the full parameter map extracted from the matched
// route. Callers must not mutate it.
func (c *Context) Params() Params { return c.params }

// Set stores a request-scoped value, visible to later handlers in the
// chain. Filters use it to hand decoded state (sessions, auth
// principals) to the terminal handler.
func (c *Context) Set(key string, value any) {
	if c.values == nil {
		c.values = make(map[string]any, 4)
	}
	c.values[key] = value
}

// Get retrieves a request-scoped value stored by an earlier handler.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Error records a handler failure for the dispatcher. If the response is
// still uncommitted when the chain unwinds, the first recorded error is
// mapped to an HTTP status by the router's error handler.
func (c *Context) Error(err error) {
	if err != nil {
		c.errs = append(c.errs, err)
	}
}

// Errors returns the errors recorded during this request.
func (c *Context) Errors() []error { return c.errs }

// Query returns the first query parameter value for the key,
// or "" when absent.
func (c *Context) Query(key string) string {
	return c.Request.URL.Query().Get(key)
}

// QueryDefault returns the query parameter value, or the default when
// the parameter is absent or empty.
func (c *Context) QueryDefault(key, defaultValue string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	return defaultValue
}

// FormValue returns the first form value for the key, parsing the
// request body on first use.
func (c *Context) FormValue(key string) string {
	return c.Request.FormValue(key)
}

// Header sets a response header. Shadowed request headers are read via
// c.Request.Header directly.
func (c *Context) Header(key, value string) {
	c.Response.Header().Set(key, value)
}

// SetCookie adds a Set-Cookie header to the pending response.
func (c *Context) SetCookie(cookie *http.Cookie) {
	http.SetCookie(c.Response, cookie)
}

// Cookie returns the named request cookie value,
// or http.ErrNoCookie when absent.
func (c *Context) Cookie(name string) (string, error) {
	ck, err := c.Request.Cookie(name)
	if err != nil {
		return "", err
	}
	return ck.Value, nil
}

// Body returns the raw request body. The body is read once; handlers
// that need it repeatedly should buffer it themselves.
func (c *Context) Body() io.ReadCloser { return c.Request.Body }

// Bind decodes the request body into dst using the content engine
// registered for the request's Content-Type, falling back to the
// router's default engine.
func (c *Context) Bind(dst any) error {
	contentType := c.Request.Header.Get("Content-Type")
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	contentType = strings.TrimSpace(contentType)

	engine := c.router.engineFor(contentType)
	if engine == nil {
		return NewStatusError(http.StatusUnsupportedMediaType,
			fmt.Sprintf("unsupported content type %q", contentType))
	}
	return engine.Decode(c.Request.Body, dst)
}

// Status records the response status code without writing a body.
func (c *Context) Status(code int) {
	c.Response.WriteHeader(code)
}

// NoContent sends an empty 204 response.
func (c *Context) NoContent() {
	c.Response.WriteHeader(http.StatusNoContent)
}

// Redirect sends a redirect to location. The code must be a 3xx status.
func (c *Context) Redirect(code int, location string) {
	c.Response.Header().Set("Location", location)
	c.Response.WriteHeader(code)
}

// Text writes a plain-text response body.
func (c *Context) Text(code int, value string) error {
	c.Response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.Response.WriteHeader(code)
	_, err := io.WriteString(c.Response, value)
	return err
}

// Textf writes a formatted plain-text response body.
func (c *Context) Textf(code int, format string, args ...any) error {
	return c.Text(code, fmt.Sprintf(format, args...))
}

// HTML writes an HTML response body.
func (c *Context) HTML(code int, html string) error {
	c.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.Response.WriteHeader(code)
	_, err := io.WriteString(c.Response, html)
	return err
}

// JSON writes the JSON encoding of obj as the response body.
func (c *Context) JSON(code int, obj any) error {
	c.Response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.Response.WriteHeader(code)
	enc := json.NewEncoder(c.Response)
	return enc.Encode(obj)
}

// XML writes the XML encoding of obj as the response body.
func (c *Context) XML(code int, obj any) error {
	c.Response.Header().Set("Content-Type", "application/xml; charset=utf-8")
	c.Response.WriteHeader(code)
	if _, err := io.WriteString(c.Response, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response).Encode(obj)
}

// YAML writes the YAML encoding of obj as the response body.
func (c *Context) YAML(code int, obj any) error {
	c.Response.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	c.Response.WriteHeader(code)
	enc := yaml.NewEncoder(c.Response)
	if err := enc.Encode(obj); err != nil {
		return err
	}
	return enc.Close()
}

// File writes the named file as the response body. Content type,
// range requests, and conditional headers follow net/http semantics.
func (c *Context) File(path string) {
	http.ServeFile(c.Response, c.Request, path)
}

// Data writes raw bytes with an explicit content type.
func (c *Context) Data(code int, contentType string, data []byte) error {
	c.Response.Header().Set("Content-Type", contentType)
	c.Response.WriteHeader(code)
	_, err := c.Response.Write(data)
	return err
}

// Negotiate selects a response representation for value from the
// request's Accept header against the router's registered content
// engines, falling back to the router's default engine. It fails with
// ErrNotAcceptable when nothing matches and no default is configured.
func (c *Context) Negotiate(code int, value any) error {
	engine, err := c.router.negotiate(c)
	if err != nil {
		return err
	}
	c.Response.Header().Set("Content-Type", engine.ContentType()+"; charset=utf-8")
	c.Response.WriteHeader(code)
	return engine.Encode(c.Response, value)
}

// Render renders a named template through the application's template
// engine, injecting the negotiated locale into the model under "locale".
// It fails when no template engine is registered.
func (c *Context) Render(code int, name string, model map[string]any) error {
	if c.router.renderer == nil {
		return NewStatusError(http.StatusInternalServerError, "no template engine registered")
	}
	if model == nil {
		model = make(map[string]any, 1)
	}
	if _, ok := model["locale"]; !ok {
		model["locale"] = c.locale
	}

	c.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.Response.WriteHeader(code)
	return c.router.renderer.RenderResource(name, model, c.locale, c.Response)
}

// Commit finalizes and flushes the response. Handlers normally leave
// this to the dispatcher; call it only for explicit early flushes.
// A second commit fails with ErrAlreadyCommitted.
func (c *Context) Commit() error {
	return c.Response.Commit()
}

// Committed reports whether the response has been finalized.
func (c *Context) Committed() bool { return c.Response.Committed() }

// NotFound writes the standard 404 response body.
func (c *Context) NotFound() {
	_ = c.Text(http.StatusNotFound, "404 page not found")
}

// MethodNotAllowed writes the standard 405 response with an Allow header
// listing the methods registered for the path.
func (c *Context) MethodNotAllowed(allowed []string) {
	c.Response.Header().Set("Allow", strings.Join(allowed, ", "))
	_ = c.Text(http.StatusMethodNotAllowed, "405 method not allowed")
}
