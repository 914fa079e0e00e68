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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// DispatchSuite exercises the full request lifecycle through ServeHTTP.
type DispatchSuite struct {
	suite.Suite
}

func TestDispatchSuite(t *testing.T) {
	suite.Run(t, new(DispatchSuite))
}

func (s *DispatchSuite) perform(r *Router, method, target string, opts ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func (s *DispatchSuite) TestBasicRouting() {
	r := MustNew()
	r.GET("/users/{id}", func(c *Context) {
		_ = c.Text(http.StatusOK, "user "+c.Param("id"))
	})

	rec := s.perform(r, http.MethodGet, "/users/42")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("user 42", rec.Body.String())
}

func (s *DispatchSuite) TestLiteralBeatsParam() {
	r := MustNew()
	r.GET("/users/{id}", func(c *Context) { _ = c.Text(http.StatusOK, "param") })
	r.GET("/users/new", func(c *Context) { _ = c.Text(http.StatusOK, "literal") })

	s.Equal("literal", s.perform(r, http.MethodGet, "/users/new").Body.String())
	s.Equal("param", s.perform(r, http.MethodGet, "/users/42").Body.String())
}

func (s *DispatchSuite) TestWildcardCapture() {
	r := MustNew()
	r.GET("/files/*", func(c *Context) {
		_ = c.Text(http.StatusOK, c.Param(WildcardParam))
	})

	s.Equal("a/b/c.txt", s.perform(r, http.MethodGet, "/files/a/b/c.txt").Body.String())
}

func (s *DispatchSuite) TestNotFound() {
	r := MustNew()
	r.GET("/users", func(c *Context) { _ = c.Text(http.StatusOK, "ok") })

	rec := s.perform(r, http.MethodGet, "/missing")
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *DispatchSuite) TestMethodNotAllowed() {
	r := MustNew()
	r.GET("/users/{id}", func(c *Context) { _ = c.Text(http.StatusOK, "ok") })
	r.DELETE("/users/{id}", func(c *Context) { _ = c.Text(http.StatusOK, "gone") })

	rec := s.perform(r, http.MethodPost, "/users/42")
	s.Equal(http.StatusMethodNotAllowed, rec.Code)
	s.Equal("GET, DELETE", rec.Header().Get("Allow"))
}

func (s *DispatchSuite) TestCustomMethodNotAllowedHandler() {
	r := MustNew(WithMethodNotAllowedHandler(func(c *Context, allowed []string) {
		_ = c.JSON(http.StatusMethodNotAllowed, map[string]any{"allowed": allowed})
	}))
	r.GET("/x", func(c *Context) {})

	rec := s.perform(r, http.MethodPost, "/x")
	s.Equal(http.StatusMethodNotAllowed, rec.Code)
	s.JSONEq(`{"allowed":["GET"]}`, rec.Body.String())
}

func (s *DispatchSuite) TestNoRoute() {
	r := MustNew()
	r.NoRoute(func(c *Context) {
		_ = c.Text(http.StatusNotFound, "custom 404")
	})

	rec := s.perform(r, http.MethodGet, "/nope")
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("custom 404", rec.Body.String())
}

func (s *DispatchSuite) TestFilterRunsBeforeHandler() {
	r := MustNew()
	var order []string

	_, err := r.Filter(AnyMethod, "/api/*", func(c *Context) {
		order = append(order, "filter")
		c.Next()
		order = append(order, "filter-after")
	})
	s.Require().NoError(err)

	r.GET("/api/users", func(c *Context) {
		order = append(order, "handler")
		_ = c.Text(http.StatusOK, "ok")
	})

	rec := s.perform(r, http.MethodGet, "/api/users")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal([]string{"filter", "handler", "filter-after"}, order)
}

func (s *DispatchSuite) TestFilterShortCircuit() {
	r := MustNew()
	handled := 0

	_, err := r.Filter(AnyMethod, "/admin/*", func(c *Context) {
		_ = c.Text(http.StatusUnauthorized, "denied")
		// No Next: the terminal handler must not run.
	})
	s.Require().NoError(err)

	r.GET("/admin/users", func(c *Context) {
		handled++
		_ = c.Text(http.StatusOK, "secret")
	})

	rec := s.perform(r, http.MethodGet, "/admin/users")
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("denied", rec.Body.String())
	s.Zero(handled)
}

func (s *DispatchSuite) TestFiltersRunMostSpecificFirst() {
	r := MustNew()
	var order []string

	_, err := r.Filter(AnyMethod, "/*", func(c *Context) {
		order = append(order, "outer")
		c.Next()
	})
	s.Require().NoError(err)
	_, err = r.Filter(AnyMethod, "/api/*", func(c *Context) {
		order = append(order, "inner")
		c.Next()
	})
	s.Require().NoError(err)

	r.GET("/api/ping", func(c *Context) {
		order = append(order, "handler")
		_ = c.Text(http.StatusOK, "pong")
	})

	s.perform(r, http.MethodGet, "/api/ping")
	s.Equal([]string{"inner", "outer", "handler"}, order)
}

func (s *DispatchSuite) TestFilterRunsOnUnmatchedPath() {
	r := MustNew()
	var order []string

	_, err := r.Filter(AnyMethod, "/api/*", func(c *Context) {
		order = append(order, "filter")
		c.Next()
	})
	s.Require().NoError(err)
	r.GET("/api/known", func(c *Context) {})

	// The filter matches but no terminal route does; the filter still
	// runs and declining yields the 404.
	rec := s.perform(r, http.MethodGet, "/api/unknown")
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal([]string{"filter"}, order)
}

func (s *DispatchSuite) TestFilterCanRejectUnmatchedPath() {
	r := MustNew()
	_, err := r.Filter(AnyMethod, "/admin/*", func(c *Context) {
		_ = c.Text(http.StatusUnauthorized, "denied")
	})
	s.Require().NoError(err)

	rec := s.perform(r, http.MethodGet, "/admin/anything")
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("denied", rec.Body.String())
}

func (s *DispatchSuite) TestMiddlewareRunsOnUnmatched() {
	r := MustNew()
	seen := 0
	r.Use(func(c *Context) {
		seen++
		c.Next()
	})

	rec := s.perform(r, http.MethodGet, "/nope")
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal(1, seen)
}

func (s *DispatchSuite) TestPanicBecomes500() {
	r := MustNew()
	r.GET("/boom", func(c *Context) {
		panic("kaboom")
	})

	rec := s.perform(r, http.MethodGet, "/boom")
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.JSONEq(`{"status":500,"error":"Internal Server Error"}`, rec.Body.String())
}

func (s *DispatchSuite) TestRecordedErrorReplacesPartialOutput() {
	r := MustNew()
	r.GET("/fail", func(c *Context) {
		_ = c.Text(http.StatusOK, "half a body")
		c.Error(errors.New("backend unavailable"))
	})

	rec := s.perform(r, http.MethodGet, "/fail")
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.NotContains(rec.Body.String(), "half a body")
}

func (s *DispatchSuite) TestStatusErrorPassesThrough() {
	r := MustNew()
	r.GET("/teapot", func(c *Context) {
		c.Error(NewStatusError(http.StatusTeapot, "short and stout"))
	})

	rec := s.perform(r, http.MethodGet, "/teapot")
	s.Equal(http.StatusTeapot, rec.Code)
	s.JSONEq(`{"status":418,"error":"short and stout"}`, rec.Body.String())
}

func (s *DispatchSuite) TestCustomErrorHandler() {
	r := MustNew(WithErrorHandler(ErrorHandlerFunc(func(c *Context, err error) {
		_ = c.Text(http.StatusBadGateway, "custom: "+err.Error())
	})))
	r.GET("/fail", func(c *Context) {
		c.Error(errors.New("nope"))
	})

	rec := s.perform(r, http.MethodGet, "/fail")
	s.Equal(http.StatusBadGateway, rec.Code)
	s.Equal("custom: nope", rec.Body.String())
}

func (s *DispatchSuite) TestErrorAfterCommitIsLoggedNotWritten() {
	r := MustNew()
	r.GET("/stream", func(c *Context) {
		_ = c.Text(http.StatusOK, "streamed")
		s.Require().NoError(c.Commit())
		c.Error(errors.New("too late"))
	})

	rec := s.perform(r, http.MethodGet, "/stream")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("streamed", rec.Body.String())
}

func (s *DispatchSuite) TestLocaleNegotiatedAtEntry() {
	r := MustNew(WithLanguages("en", "de", "fr"))
	r.GET("/greet", func(c *Context) {
		_ = c.Text(http.StatusOK, c.Locale())
	})

	withLang := func(v string) func(*http.Request) {
		return func(req *http.Request) { req.Header.Set("Accept-Language", v) }
	}

	s.Equal("de", s.perform(r, http.MethodGet, "/greet", withLang("de-AT, en;q=0.5")).Body.String())
	s.Equal("en", s.perform(r, http.MethodGet, "/greet").Body.String())
	// No overlap at all falls back to the first registered language.
	s.Equal("en", s.perform(r, http.MethodGet, "/greet", withLang("ja")).Body.String())
}

func (s *DispatchSuite) TestGroupRoutes() {
	r := MustNew()
	var order []string

	api := r.Group("/api/v1", func(c *Context) {
		order = append(order, "group")
		c.Next()
	})
	api.GET("/users", func(c *Context) {
		order = append(order, "handler")
		_ = c.Text(http.StatusOK, "ok")
	})

	rec := s.perform(r, http.MethodGet, "/api/v1/users")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal([]string{"group", "handler"}, order)

	nested := api.Group("/admin")
	nested.GET("/stats", func(c *Context) { _ = c.Text(http.StatusOK, "stats") })
	s.Equal("stats", s.perform(r, http.MethodGet, "/api/v1/admin/stats").Body.String())
}

func (s *DispatchSuite) TestRegistrationAfterFirstRequestFails() {
	r := MustNew()
	r.GET("/a", func(c *Context) {})
	s.perform(r, http.MethodGet, "/a")

	_, err := r.Handle(http.MethodGet, "/b", func(c *Context) {})
	s.Require().ErrorIs(err, ErrRegistryFrozen)
}

func (s *DispatchSuite) TestHandleReportsBadPattern() {
	r := MustNew()
	_, err := r.Handle(http.MethodGet, "/a/{x}/{x}", func(c *Context) {})
	s.Require().ErrorIs(err, ErrInvalidPattern)

	s.Panics(func() {
		r.GET("/a/{x}/{x}", func(c *Context) {})
	})
}

func TestStaticTraversalRejected(t *testing.T) {
	r := MustNew()
	r.Static("/assets", t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/assets/..%2f..%2fetc%2fpasswd", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidStaticPath(t *testing.T) {
	assert.True(t, validStaticPath("css/app.css"))
	assert.True(t, validStaticPath(""))
	assert.False(t, validStaticPath("../secret"))
	assert.False(t, validStaticPath("a/../../secret"))
	assert.False(t, validStaticPath(`a\..\secret`))
}

func TestRouterServerConfig(t *testing.T) {
	r := MustNew(WithServerTimeouts(0, 0, 0, 0))
	srv := r.Server(":0")
	require.NotNil(t, srv)
	assert.Equal(t, ":0", srv.Addr)

	h2 := MustNew(WithH2C(true))
	srv = h2.Server(":0")
	// h2c wraps the router in a different handler.
	assert.NotNil(t, srv.Handler)
}
