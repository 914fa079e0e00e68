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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(*Context) {}

func TestRegistryAdd(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Add(http.MethodGet, "/users/{id}", KindHandler, noop)
	require.NoError(t, err)

	_, err = reg.Add(http.MethodGet, "/users/{id}/{id}", KindHandler, noop)
	require.ErrorIs(t, err, ErrInvalidPattern)

	_, err = reg.Add(http.MethodGet, "/users", KindHandler)
	require.ErrorIs(t, err, ErrNoHandlers)

	// Lowercase methods are normalized.
	rt, err := reg.Add("get", "/lower", KindHandler, noop)
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, rt.Method())
}

func TestRegistryFrozen(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Add(http.MethodGet, "/a", KindHandler, noop)
	require.NoError(t, err)

	reg.Freeze()
	assert.True(t, reg.Frozen())

	_, err = reg.Add(http.MethodGet, "/b", KindHandler, noop)
	require.ErrorIs(t, err, ErrRegistryFrozen)

	// Freeze is idempotent.
	reg.Freeze()
	assert.True(t, reg.Frozen())
}

func TestFindMatchesSpecificityOrder(t *testing.T) {
	reg := NewRegistry()

	// Registered least specific first on purpose.
	wild, err := reg.Add(http.MethodGet, "/users/*", KindHandler, noop)
	require.NoError(t, err)
	param, err := reg.Add(http.MethodGet, "/users/{id}", KindHandler, noop)
	require.NoError(t, err)
	literal, err := reg.Add(http.MethodGet, "/users/new", KindHandler, noop)
	require.NoError(t, err)

	reg.Freeze()

	matches := reg.FindMatches(http.MethodGet, "/users/new")
	require.Len(t, matches, 3)
	assert.Same(t, literal, matches[0].Route)
	assert.Same(t, param, matches[1].Route)
	assert.Same(t, wild, matches[2].Route)

	matches = reg.FindMatches(http.MethodGet, "/users/42")
	require.Len(t, matches, 2)
	assert.Same(t, param, matches[0].Route)
	assert.Equal(t, Params{"id": "42"}, matches[0].Params)
	assert.Same(t, wild, matches[1].Route)
}

func TestFindMatchesRegistrationOrderTieBreak(t *testing.T) {
	reg := NewRegistry()

	first, err := reg.Add(http.MethodGet, "/dup", KindHandler, noop)
	require.NoError(t, err)
	second, err := reg.Add(http.MethodGet, "/dup", KindHandler, noop)
	require.NoError(t, err)

	reg.Freeze()

	matches := reg.FindMatches(http.MethodGet, "/dup")
	require.Len(t, matches, 2)
	assert.Same(t, first, matches[0].Route)
	assert.Same(t, second, matches[1].Route)
}

func TestFindMatchesIncludesAnyMethod(t *testing.T) {
	reg := NewRegistry()

	filter, err := reg.Add(AnyMethod, "/api/*", KindFilter, noop)
	require.NoError(t, err)
	handler, err := reg.Add(http.MethodGet, "/api/users", KindHandler, noop)
	require.NoError(t, err)

	reg.Freeze()

	matches := reg.FindMatches(http.MethodGet, "/api/users")
	require.Len(t, matches, 2)
	assert.Same(t, handler, matches[0].Route)
	assert.Same(t, filter, matches[1].Route)

	// The filter still matches other methods.
	matches = reg.FindMatches(http.MethodDelete, "/api/users")
	require.Len(t, matches, 1)
	assert.Same(t, filter, matches[0].Route)
}

func TestAllowedMethods(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Add(http.MethodGet, "/users/{id}", KindHandler, noop)
	require.NoError(t, err)
	_, err = reg.Add(http.MethodDelete, "/users/{id}", KindHandler, noop)
	require.NoError(t, err)
	reg.Freeze()

	assert.Equal(t, []string{http.MethodGet, http.MethodDelete}, reg.AllowedMethods("/users/42"))
	assert.Empty(t, reg.AllowedMethods("/nothing/here"))
}

func TestURIFor(t *testing.T) {
	reg := NewRegistry()

	rt, err := reg.Add(http.MethodGet, "/users/{id}/files/{rest*}", KindHandler, noop)
	require.NoError(t, err)
	rt.Named("user-file")

	root, err := reg.Add(http.MethodGet, "/", KindHandler, noop)
	require.NoError(t, err)
	root.Named("home")

	uri, err := reg.URIFor("user-file", Params{"id": "42", "rest": "a/b.txt"})
	require.NoError(t, err)
	assert.Equal(t, "/users/42/files/a/b.txt", uri)

	uri, err = reg.URIFor("home", nil)
	require.NoError(t, err)
	assert.Equal(t, "/", uri)

	_, err = reg.URIFor("user-file", Params{"id": "42"})
	require.ErrorIs(t, err, ErrParamMissing)

	_, err = reg.URIFor("nope", nil)
	require.ErrorIs(t, err, ErrRouteNameUnknown)
}

func TestRoutesSnapshot(t *testing.T) {
	reg := NewRegistry()
	a, _ := reg.Add(http.MethodGet, "/a", KindHandler, noop)
	b, _ := reg.Add(http.MethodPost, "/b", KindHandler, noop)
	c, _ := reg.Add(AnyMethod, "/c", KindFilter, noop)

	routes := reg.Routes()
	require.Len(t, routes, 3)
	assert.Same(t, a, routes[0])
	assert.Same(t, b, routes[1])
	assert.Same(t, c, routes[2])
	assert.True(t, routes[2].IsFilter())
}
