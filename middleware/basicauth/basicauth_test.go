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

package basicauth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illab/pippo/router"
)

func protectedRouter(t *testing.T) (*router.Router, *int) {
	t.Helper()
	handled := new(int)

	r := router.MustNew()
	_, err := r.Filter(router.AnyMethod, "/admin/*", New("ops", map[string]string{
		"alice": "s3cret",
	}))
	require.NoError(t, err)

	r.GET("/admin/users", func(c *router.Context) {
		*handled++
		_ = c.Text(http.StatusOK, "user="+User(c))
	})
	r.GET("/public", func(c *router.Context) {
		_ = c.Text(http.StatusOK, "open")
	})
	return r, handled
}

func perform(r *router.Router, target, user, pass string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if user != "" {
		req.SetBasicAuth(user, pass)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRejectsMissingCredentials(t *testing.T) {
	r, handled := protectedRouter(t)

	rec := perform(r, "/admin/users", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, `Basic realm="ops"`, rec.Header().Get("WWW-Authenticate"))
	assert.Zero(t, *handled)
}

func TestRejectsWrongPassword(t *testing.T) {
	r, handled := protectedRouter(t)

	rec := perform(r, "/admin/users", "alice", "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, *handled)
}

func TestRejectsUnknownUser(t *testing.T) {
	r, handled := protectedRouter(t)

	rec := perform(r, "/admin/users", "mallory", "s3cret")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, *handled)
}

func TestAcceptsValidCredentials(t *testing.T) {
	r, handled := protectedRouter(t)

	rec := perform(r, "/admin/users", "alice", "s3cret")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user=alice", rec.Body.String())
	assert.Equal(t, 1, *handled)
}

func TestUnguardedPathNeedsNoAuth(t *testing.T) {
	r, _ := protectedRouter(t)

	rec := perform(r, "/public", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDefaultRealm(t *testing.T) {
	r := router.MustNew()
	_, err := r.Filter(router.AnyMethod, "/*", New("", map[string]string{"u": "p"}))
	require.NoError(t, err)
	r.GET("/x", func(c *router.Context) { _ = c.Text(http.StatusOK, "ok") })

	rec := perform(r, "/x", "", "")
	assert.Equal(t, `Basic realm="Restricted"`, rec.Header().Get("WWW-Authenticate"))
}
