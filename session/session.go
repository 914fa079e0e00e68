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

// Package session provides cookie-identified server-side sessions with
// pluggable storage. The Manager runs as a router filter: it loads or
// creates the session ahead of the handler chain and persists changes
// after the chain unwinds, before the response is committed.
//
//	store := session.NewMemoryStore()
//	manager := session.MustNewManager(session.WithStore(store))
//	r.Use(manager.Filter())
//
//	r.GET("/visit", func(c *router.Context) {
//	    s := session.FromContext(c)
//	    n, _ := s.Get("visits").(int)
//	    s.Set("visits", n+1)
//	    c.Textf(http.StatusOK, "visit %d", n+1)
//	})
package session

import "errors"

// ErrSessionNotFound is returned by stores when no session exists under
// the given id, or it has expired.
var ErrSessionNotFound = errors.New("session not found")

// flashPrefix namespaces flash entries inside the session data so Pop
// semantics need no second storage map.
const flashPrefix = "_flash."

// Session is the per-request view of one client's session data. It is
// owned by the request goroutine and must not be shared; mutations are
// persisted by the Manager after the handler chain returns.
type Session struct {
	id          string
	data        map[string]any
	fresh       bool
	dirty       bool
	invalidated bool
}

// newSession wraps loaded data; fresh marks a session that does not
// exist in the store yet.
func newSession(id string, data map[string]any, fresh bool) *Session {
	if data == nil {
		data = make(map[string]any)
	}
	return &Session{id: id, data: data, fresh: fresh}
}

// ID returns the session identifier carried by the client cookie.
func (s *Session) ID() string { return s.id }

// Fresh reports whether the session was created for this request rather
// than loaded from the store.
func (s *Session) Fresh() bool { return s.fresh }

// Get returns the value stored under key, or nil.
func (s *Session) Get(key string) any { return s.data[key] }

// GetString returns the value under key as a string,
// or "" when absent or not a string.
func (s *Session) GetString(key string) string {
	v, _ := s.data[key].(string)
	return v
}

// Lookup returns the value under key and whether it exists.
func (s *Session) Lookup(key string) (any, bool) {
	v, ok := s.data[key]
	return v, ok
}

// Set stores a value and marks the session for persistence.
func (s *Session) Set(key string, value any) {
	s.data[key] = value
	s.dirty = true
}

// Delete removes a key. Deleting an absent key is a no-op.
func (s *Session) Delete(key string) {
	if _, ok := s.data[key]; ok {
		delete(s.data, key)
		s.dirty = true
	}
}

// Pop returns the value under key and removes it, or nil.
func (s *Session) Pop(key string) any {
	v, ok := s.data[key]
	if ok {
		delete(s.data, key)
		s.dirty = true
	}
	return v
}

// Flash stores a one-shot value consumed by the next PopFlash with the
// same key, the classic post-redirect message channel.
func (s *Session) Flash(key string, value any) {
	s.Set(flashPrefix+key, value)
}

// PopFlash consumes a flash value, or returns nil when none is pending.
func (s *Session) PopFlash(key string) any {
	return s.Pop(flashPrefix + key)
}

// Clear removes all data while keeping the session alive.
func (s *Session) Clear() {
	if len(s.data) == 0 {
		return
	}
	clear(s.data)
	s.dirty = true
}

// Invalidate marks the session for deletion: the Manager removes it
// from the store and expires the client cookie after the chain unwinds.
func (s *Session) Invalidate() {
	s.invalidated = true
	s.dirty = true
}

// Invalidated reports whether Invalidate has been called.
func (s *Session) Invalidated() bool { return s.invalidated }

// Dirty reports whether the session has unpersisted changes.
func (s *Session) Dirty() bool { return s.dirty }
