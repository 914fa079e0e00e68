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
	"net/http"
	"strings"
)

// Group collects routes under a shared path prefix with group-level
// handlers that run ahead of each route's own chain.
//
// Example:
//
//	api := r.Group("/api/v1", RequireToken)
//	api.GET("/users", listUsers)      // GET /api/v1/users
//	api.POST("/users", createUser)    // POST /api/v1/users
type Group struct {
	router   *Router
	prefix   string
	handlers []HandlerFunc
}

// Group creates a route group with the given prefix and optional
// group-level handlers. Group handlers follow the same
// explicit-continuation contract as filters.
func (r *Router) Group(prefix string, handlers ...HandlerFunc) *Group {
	return &Group{router: r, prefix: prefix, handlers: handlers}
}

// Group nests a sub-group under this group's prefix.
func (g *Group) Group(prefix string, handlers ...HandlerFunc) *Group {
	merged := make([]HandlerFunc, 0, len(g.handlers)+len(handlers))
	merged = append(merged, g.handlers...)
	merged = append(merged, handlers...)
	return &Group{router: g.router, prefix: g.joined(prefix), handlers: merged}
}

// joined concatenates the group prefix and a route pattern with exactly
// one slash between them.
func (g *Group) joined(pattern string) string {
	return strings.TrimSuffix(g.prefix, "/") + "/" + strings.TrimPrefix(pattern, "/")
}

func (g *Group) handle(method, pattern string, handlers []HandlerFunc) *Route {
	chain := make([]HandlerFunc, 0, len(g.handlers)+len(handlers))
	chain = append(chain, g.handlers...)
	chain = append(chain, handlers...)
	return g.router.mustHandle(method, g.joined(pattern), chain)
}

// GET registers a terminal GET route under the group prefix.
func (g *Group) GET(pattern string, handlers ...HandlerFunc) *Route {
	return g.handle(http.MethodGet, pattern, handlers)
}

// POST registers a terminal POST route under the group prefix.
func (g *Group) POST(pattern string, handlers ...HandlerFunc) *Route {
	return g.handle(http.MethodPost, pattern, handlers)
}

// PUT registers a terminal PUT route under the group prefix.
func (g *Group) PUT(pattern string, handlers ...HandlerFunc) *Route {
	return g.handle(http.MethodPut, pattern, handlers)
}

// PATCH registers a terminal PATCH route under the group prefix.
func (g *Group) PATCH(pattern string, handlers ...HandlerFunc) *Route {
	return g.handle(http.MethodPatch, pattern, handlers)
}

// DELETE registers a terminal DELETE route under the group prefix.
func (g *Group) DELETE(pattern string, handlers ...HandlerFunc) *Route {
	return g.handle(http.MethodDelete, pattern, handlers)
}

// Filter registers a non-terminal route under the group prefix.
func (g *Group) Filter(method, pattern string, handlers ...HandlerFunc) (*Route, error) {
	chain := make([]HandlerFunc, 0, len(g.handlers)+len(handlers))
	chain = append(chain, g.handlers...)
	chain = append(chain, handlers...)
	return g.router.Filter(method, g.joined(pattern), chain...)
}
