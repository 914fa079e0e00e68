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

package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/illab/pippo/router"
)

// contextKey is where the Manager parks the session in the request
// context's value bag.
const contextKey = "pippo.session"

// Manager loads, creates, and persists sessions around the handler
// chain. Persistence happens after the chain returns and before the
// response commits, so the Set-Cookie header always makes it out.
type Manager struct {
	store      Store
	cookieName string
	ttl        time.Duration
	secure     bool
	sameSite   http.SameSite
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithStore sets the session store. Required.
func WithStore(store Store) ManagerOption {
	return func(m *Manager) {
		m.store = store
	}
}

// WithCookieName overrides the "PIPPOSESSION" cookie name.
func WithCookieName(name string) ManagerOption {
	return func(m *Manager) {
		m.cookieName = name
	}
}

// WithTTL sets the session lifetime, renewed on every save.
// Defaults to 30 minutes.
func WithTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		m.ttl = ttl
	}
}

// WithSecureCookie marks the session cookie Secure. Enable whenever the
// application is served over TLS.
func WithSecureCookie(secure bool) ManagerOption {
	return func(m *Manager) {
		m.secure = secure
	}
}

// WithSameSite sets the cookie SameSite mode. Defaults to Lax.
func WithSameSite(mode http.SameSite) ManagerOption {
	return func(m *Manager) {
		m.sameSite = mode
	}
}

// NewManager creates a session manager. A store is required.
func NewManager(opts ...ManagerOption) (*Manager, error) {
	m := &Manager{
		cookieName: "PIPPOSESSION",
		ttl:        30 * time.Minute,
		sameSite:   http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.store == nil {
		return nil, fmt.Errorf("session: a store is required")
	}
	return m, nil
}

// MustNewManager is NewManager that panics on a configuration error.
func MustNewManager(opts ...ManagerOption) *Manager {
	m, err := NewManager(opts...)
	if err != nil {
		panic(fmt.Sprintf("session.MustNewManager: %v", err))
	}
	return m
}

// FromContext returns the session attached by the Manager's filter, or
// nil when the filter did not run for this request.
func FromContext(c *router.Context) *Session {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil
	}
	return v.(*Session)
}

// Filter returns the handler that wraps the chain with session
// handling. Register it as global middleware or as a path filter:
//
//	r.Use(manager.Filter())                          // all routes
//	r.Filter(router.AnyMethod, "/app/*", manager.Filter()) // a subtree
func (m *Manager) Filter() router.HandlerFunc {
	return func(c *router.Context) {
		sess := m.resolve(c)
		c.Set(contextKey, sess)

		c.Next()

		if err := m.persist(c, sess); err != nil {
			c.Logger().Error("session persist failed",
				"session_id", sess.ID(), "error", err)
		}
	}
}

// resolve loads the session named by the request cookie, or creates a
// fresh one. A stale cookie (expired or unknown id) also yields a fresh
// session rather than an error.
func (m *Manager) resolve(c *router.Context) *Session {
	id, err := c.Cookie(m.cookieName)
	if err == nil && id != "" {
		data, loadErr := m.store.Load(c.Request.Context(), id)
		if loadErr == nil {
			return newSession(id, data, false)
		}
		if !errors.Is(loadErr, ErrSessionNotFound) {
			c.Logger().Error("session load failed", "session_id", id, "error", loadErr)
		}
	}
	return newSession(uuid.NewString(), nil, true)
}

// persist writes the session back out: invalidated sessions are deleted
// and their cookie expired, dirty or fresh-and-used sessions are saved
// with a renewed TTL. An untouched fresh session leaves no trace, so
// crawlers do not fill the store.
func (m *Manager) persist(c *router.Context, sess *Session) error {
	ctx := c.Request.Context()

	if sess.Invalidated() {
		c.SetCookie(m.cookie(sess.ID(), -1))
		return m.store.Delete(ctx, sess.ID())
	}

	if !sess.Dirty() && !(sess.Fresh() && len(sess.data) > 0) {
		return nil
	}

	if sess.Fresh() {
		c.SetCookie(m.cookie(sess.ID(), int(m.ttl.Seconds())))
	}
	return m.store.Save(ctx, sess.ID(), sess.data, m.ttl)
}

func (m *Manager) cookie(id string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: m.sameSite,
	}
}
