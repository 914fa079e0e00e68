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
	"context"
	"sync"
	"time"
)

// Store persists session data by id. Implementations must be safe for
// concurrent use; the Manager calls them from request goroutines.
type Store interface {
	// Load returns the data stored under id,
	// or ErrSessionNotFound when absent or expired.
	Load(ctx context.Context, id string) (map[string]any, error)

	// Save writes the data under id with the given time to live.
	Save(ctx context.Context, id string, data map[string]any, ttl time.Duration) error

	// Delete removes the session. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error
}

// memoryEntry is one stored session with its expiry deadline.
type memoryEntry struct {
	data    map[string]any
	expires time.Time
}

// MemoryStore keeps sessions in process memory. Suitable for a single
// instance and for tests; use RedisStore when requests can land on more
// than one process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	done    chan struct{}
	once    sync.Once
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*memoryConfig)

type memoryConfig struct {
	janitorInterval time.Duration
}

// WithJanitorInterval sets how often expired sessions are swept.
// Defaults to one minute; zero disables the sweeper (expired entries
// are still rejected on Load).
func WithJanitorInterval(interval time.Duration) MemoryOption {
	return func(cfg *memoryConfig) {
		cfg.janitorInterval = interval
	}
}

// NewMemoryStore creates an in-memory session store and starts its
// expiry sweeper. Call Close to stop the sweeper.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	cfg := memoryConfig{janitorInterval: time.Minute}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &MemoryStore{
		entries: make(map[string]memoryEntry),
		done:    make(chan struct{}),
	}
	if cfg.janitorInterval > 0 {
		go s.janitor(cfg.janitorInterval)
	}
	return s
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, id string) (map[string]any, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok || time.Now().After(entry.expires) {
		return nil, ErrSessionNotFound
	}

	// Copy out so the caller's mutations stay invisible until Save.
	data := make(map[string]any, len(entry.data))
	for k, v := range entry.data {
		data[k] = v
	}
	return data, nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, id string, data map[string]any, ttl time.Duration) error {
	copied := make(map[string]any, len(data))
	for k, v := range data {
		copied[k] = v
	}

	s.mu.Lock()
	s.entries[id] = memoryEntry{data: copied, expires: time.Now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions, expired ones included
// until the next sweep.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close stops the expiry sweeper. Idempotent.
func (s *MemoryStore) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *MemoryStore) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for id, entry := range s.entries {
				if now.After(entry.expires) {
					delete(s.entries, id)
				}
			}
			s.mu.Unlock()
		}
	}
}
