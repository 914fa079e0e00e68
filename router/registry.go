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
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// RouteMatch is the result of matching a request path against one route:
// the matched route plus the parameters extracted from the path. Matches
// are created per request and discarded after dispatch.
type RouteMatch struct {
	Route  *Route
	Params Params
}

// standardMethods is the fixed probe order for AllowedMethods.
var standardMethods = []string{
	http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
	http.MethodDelete, http.MethodHead, http.MethodOptions,
}

// Registry stores registered routes grouped by HTTP method.
//
// Registration happens during a single-threaded configuration phase.
// Freeze sorts every method group by specificity (then registration
// order) exactly once; after that the registry is immutable and safe for
// concurrent reads without locking.
type Registry struct {
	mu       sync.Mutex
	byMethod map[string][]*Route
	order    int
	frozen   atomic.Bool
}

// NewRegistry creates an empty route registry.
func NewRegistry() *Registry {
	return &Registry{byMethod: make(map[string][]*Route)}
}

// Add compiles the pattern and registers a route. It returns a
// configuration error for a malformed pattern (see CompilePattern), a
// missing handler list, or registration after Freeze. Two routes with an
// identical method and pattern are both kept, in registration order.
func (reg *Registry) Add(method, pattern string, kind RouteKind, handlers ...HandlerFunc) (*Route, error) {
	if reg.frozen.Load() {
		return nil, fmt.Errorf("%w: %s %s", ErrRegistryFrozen, method, pattern)
	}
	if len(handlers) == 0 {
		return nil, fmt.Errorf("%w: %s %s", ErrNoHandlers, method, pattern)
	}
	if method != AnyMethod {
		method = strings.ToUpper(method)
	}

	compiled, err := CompilePattern(pattern)
	if err != nil {
		return nil, err
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	rt := &Route{
		method:   method,
		pattern:  compiled,
		handlers: handlers,
		kind:     kind,
		order:    reg.order,
	}
	reg.order++
	reg.byMethod[method] = append(reg.byMethod[method], rt)

	return rt, nil
}

// Freeze sorts each method group by specificity and marks the registry
// read-only. Freeze is idempotent; the dispatcher calls it before the
// first request is served.
func (reg *Registry) Freeze() {
	if reg.frozen.Swap(true) {
		return
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for _, routes := range reg.byMethod {
		sort.SliceStable(routes, func(i, j int) bool {
			return moreSpecific(routes[i].pattern, routes[j].pattern)
		})
	}
}

// Frozen reports whether the registry has been frozen.
func (reg *Registry) Frozen() bool { return reg.frozen.Load() }

// FindMatches returns every route registered under the method (plus
// AnyMethod routes) whose pattern matches the path, most specific first.
// Returning all matches, not just the best one, is what lets several
// filters share a path prefix ahead of a single terminal handler.
func (reg *Registry) FindMatches(method, path string) []RouteMatch {
	var matches []RouteMatch
	matches = reg.appendMatches(matches, reg.byMethod[method], path)
	if method != AnyMethod {
		matches = reg.appendMatches(matches, reg.byMethod[AnyMethod], path)
	}

	if len(matches) > 1 {
		// Method-specific and AnyMethod groups are each pre-sorted;
		// merge them into one specificity order.
		sort.SliceStable(matches, func(i, j int) bool {
			a, b := matches[i].Route, matches[j].Route
			if moreSpecific(a.pattern, b.pattern) {
				return true
			}
			if moreSpecific(b.pattern, a.pattern) {
				return false
			}
			return a.order < b.order
		})
	}

	return matches
}

func (reg *Registry) appendMatches(matches []RouteMatch, routes []*Route, path string) []RouteMatch {
	for _, rt := range routes {
		if params, ok := rt.pattern.Match(path); ok {
			matches = append(matches, RouteMatch{Route: rt, Params: params})
		}
	}
	return matches
}

// AllowedMethods returns the HTTP methods that have at least one route
// matching the path. An empty result distinguishes a fully unmatched
// path (404) from a path registered under other methods (405).
func (reg *Registry) AllowedMethods(path string) []string {
	var allowed []string
	for _, method := range standardMethods {
		for _, rt := range reg.byMethod[method] {
			if _, ok := rt.pattern.Match(path); ok {
				allowed = append(allowed, method)
				break
			}
		}
	}
	return allowed
}

// Routes returns a snapshot of all registered routes in registration
// order. Intended for startup logging and documentation generation.
func (reg *Registry) Routes() []*Route {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	all := make([]*Route, 0, reg.order)
	for _, routes := range reg.byMethod {
		all = append(all, routes...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].order < all[j].order })
	return all
}

// URIFor builds a concrete path for a named route by substituting the
// given parameters into its pattern. Missing parameters fail with
// ErrParamMissing; an unknown name fails with ErrRouteNameUnknown.
func (reg *Registry) URIFor(name string, params Params) (string, error) {
	var target *Route
	for _, rt := range reg.Routes() {
		if rt.name == name {
			target = rt
			break
		}
	}
	if target == nil {
		return "", fmt.Errorf("%w: %q", ErrRouteNameUnknown, name)
	}

	var b strings.Builder
	for _, seg := range target.pattern.segments {
		switch seg.kind {
		case segLiteral:
			b.WriteByte('/')
			b.WriteString(seg.literal)
		case segParam, segWildcard:
			value, ok := params[seg.name]
			if !ok {
				return "", fmt.Errorf("%w: %q for route %q", ErrParamMissing, seg.name, name)
			}
			b.WriteByte('/')
			b.WriteString(value)
		}
	}
	if b.Len() == 0 {
		return "/", nil
	}
	return b.String(), nil
}
