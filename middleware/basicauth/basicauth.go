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

// Package basicauth guards routes with HTTP Basic authentication. It is
// a filter in the strict sense: unauthenticated requests get a 401 and
// the rest of the chain never runs.
package basicauth

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/illab/pippo/router"
)

// contextKey is where the authenticated username is stored.
const contextKey = "pippo.basicauth.user"

// New returns a Basic auth filter for the given realm and credential
// set (username to password). Comparison is constant-time.
//
//	r.Filter(router.AnyMethod, "/admin/*", basicauth.New("admin", map[string]string{
//	    "ops": secretFromConfig,
//	}))
func New(realm string, credentials map[string]string) router.HandlerFunc {
	if realm == "" {
		realm = "Restricted"
	}
	challenge := fmt.Sprintf("Basic realm=%q", realm)

	return func(c *router.Context) {
		user, pass, ok := c.Request.BasicAuth()
		if ok && authorized(credentials, user, pass) {
			c.Set(contextKey, user)
			c.Next()
			return
		}

		c.Header("WWW-Authenticate", challenge)
		_ = c.Text(http.StatusUnauthorized, "401 unauthorized")
	}
}

// User returns the authenticated username, or "" when the filter did
// not run or rejected the request.
func User(c *router.Context) string {
	v, ok := c.Get(contextKey)
	if !ok {
		return ""
	}
	return v.(string)
}

// authorized checks the credentials in constant time.
func authorized(credentials map[string]string, user, pass string) bool {
	expected, ok := credentials[user]
	if !ok {
		subtle.ConstantTimeCompare([]byte(pass), []byte(pass))
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(pass)) == 1
}
