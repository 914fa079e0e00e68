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

// RouteKind distinguishes terminal routes from filters.
type RouteKind uint8

const (
	// KindHandler marks a terminal route: the handler chain that produces
	// the final response body. At most one terminal route runs per request.
	KindHandler RouteKind = iota

	// KindFilter marks a non-terminal route. All matching filters run, in
	// specificity order, ahead of the terminal route. A filter must call
	// Context.Next to continue the chain.
	KindFilter
)

// AnyMethod registers a route for every HTTP method. Useful for filters
// that guard a path prefix regardless of method.
const AnyMethod = "*"

// Route is an immutable route descriptor: an HTTP method, a compiled
// pattern, and the ordered handler chain attached to it. Routes are
// created by the Registry at registration time and never mutated after
// the registry freezes.
type Route struct {
	method   string
	pattern  *Pattern
	handlers []HandlerFunc
	kind     RouteKind
	name     string
	order    int // registration sequence, breaks specificity ties
}

// Method returns the HTTP method the route is registered under,
// or AnyMethod.
func (rt *Route) Method() string { return rt.method }

// Pattern returns the raw pattern string the route was registered with.
func (rt *Route) Pattern() string { return rt.pattern.String() }

// Name returns the route's name, or "" for unnamed routes.
func (rt *Route) Name() string { return rt.name }

// IsFilter reports whether the route is a non-terminal filter.
func (rt *Route) IsFilter() bool { return rt.kind == KindFilter }

// Named assigns a name to the route for reverse routing and returns the
// route for chaining:
//
//	r.GET("/users/{id}", showUser).Named("user")
//	uri, _ := r.Registry().URIFor("user", router.Params{"id": "42"})
//
// Name routes during setup, before the first request is served.
func (rt *Route) Named(name string) *Route {
	rt.name = name
	return rt
}
