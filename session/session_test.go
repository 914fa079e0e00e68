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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionData(t *testing.T) {
	s := newSession("id-1", nil, true)

	assert.Equal(t, "id-1", s.ID())
	assert.True(t, s.Fresh())
	assert.False(t, s.Dirty())
	assert.Nil(t, s.Get("missing"))

	s.Set("user", "alice")
	assert.True(t, s.Dirty())
	assert.Equal(t, "alice", s.Get("user"))
	assert.Equal(t, "alice", s.GetString("user"))

	v, ok := s.Lookup("user")
	require.True(t, ok)
	assert.Equal(t, "alice", v)

	s.Set("count", 3)
	assert.Equal(t, "", s.GetString("count")) // wrong type reads as ""

	assert.Equal(t, 3, s.Pop("count"))
	assert.Nil(t, s.Get("count"))
	assert.Nil(t, s.Pop("count"))

	s.Delete("user")
	_, ok = s.Lookup("user")
	assert.False(t, ok)
}

func TestSessionDeleteAbsentKeepsClean(t *testing.T) {
	s := newSession("id-1", map[string]any{"a": 1}, false)
	s.Delete("nope")
	assert.False(t, s.Dirty())
}

func TestSessionFlash(t *testing.T) {
	s := newSession("id-1", nil, true)

	s.Flash("notice", "saved!")
	assert.Equal(t, "saved!", s.PopFlash("notice"))
	// Flash values are one-shot.
	assert.Nil(t, s.PopFlash("notice"))
}

func TestSessionClearAndInvalidate(t *testing.T) {
	s := newSession("id-1", map[string]any{"a": 1, "b": 2}, false)

	s.Clear()
	assert.True(t, s.Dirty())
	assert.Nil(t, s.Get("a"))

	assert.False(t, s.Invalidated())
	s.Invalidate()
	assert.True(t, s.Invalidated())
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore(WithJanitorInterval(0))
	t.Cleanup(store.Close)
	ctx := context.Background()

	_, err := store.Load(ctx, "missing")
	require.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Save(ctx, "s1", map[string]any{"k": "v"}, time.Minute))
	data, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"k": "v"}, data)
	assert.Equal(t, 1, store.Len())

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Load(ctx, "s1")
	require.ErrorIs(t, err, ErrSessionNotFound)

	// Deleting twice is fine.
	require.NoError(t, store.Delete(ctx, "s1"))
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(WithJanitorInterval(0))
	t.Cleanup(store.Close)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", map[string]any{"k": "v"}, -time.Second))
	_, err := store.Load(ctx, "s1")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStoreJanitorSweepsExpired(t *testing.T) {
	store := NewMemoryStore(WithJanitorInterval(10 * time.Millisecond))
	t.Cleanup(store.Close)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "gone", nil, -time.Second))
	require.NoError(t, store.Save(ctx, "kept", nil, time.Minute))

	assert.Eventually(t, func() bool {
		return store.Len() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryStoreIsolatesCallerData(t *testing.T) {
	store := NewMemoryStore(WithJanitorInterval(0))
	t.Cleanup(store.Close)
	ctx := context.Background()

	original := map[string]any{"k": "v"}
	require.NoError(t, store.Save(ctx, "s1", original, time.Minute))
	original["k"] = "mutated"

	data, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "v", data["k"])

	// Mutating the loaded copy must not leak into the store.
	data["k"] = "changed"
	again, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "v", again["k"])
}
