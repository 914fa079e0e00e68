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

// Package requestid tags every request with a correlation id, echoed in
// the X-Request-ID response header and available to handlers and other
// middleware for log correlation.
package requestid

import (
	"github.com/google/uuid"

	"github.com/illab/pippo/router"
)

// Header is the request and response header carrying the id.
const Header = "X-Request-ID"

// contextKey is where the id is stored in the request context.
const contextKey = "pippo.request_id"

// New returns middleware that reuses the client-supplied X-Request-ID
// or generates a UUID when absent. Register it first so every later
// handler sees the id:
//
//	r.Use(requestid.New())
func New() router.HandlerFunc {
	return func(c *router.Context) {
		id := c.Request.Header.Get(Header)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(contextKey, id)
		c.Header(Header, id)
		c.Next()
	}
}

// FromContext returns the request id set by the middleware, or "".
func FromContext(c *router.Context) string {
	v, ok := c.Get(contextKey)
	if !ok {
		return ""
	}
	return v.(string)
}
