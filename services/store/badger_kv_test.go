// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestBadger(t *testing.T) KV {
	t.Helper()
	kv, err := OpenBadger(BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestOpenBadger_RequiresPath(t *testing.T) {
	_, err := OpenBadger(BadgerConfig{})
	require.Error(t, err)
}

func TestBadgerKV_SetGetDelete(t *testing.T) {
	kv := openTestBadger(t)

	_, found, err := kv.Get("missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, kv.Set("k", "v1"))
	v, found, err := kv.Get("k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v1", v)

	// Wholesale replacement.
	require.NoError(t, kv.Set("k", "v2"))
	v, _, err = kv.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v2", v)

	require.NoError(t, kv.Delete("k"))
	_, found, err = kv.Get("k")
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting a missing key is not an error.
	require.NoError(t, kv.Delete("k"))
}

func TestBadgerKV_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	kv, err := OpenBadger(BadgerConfig{Path: dir, SyncWrites: true})
	require.NoError(t, err)
	require.NoError(t, kv.Set("history", `[{"id":"a"}]`))
	require.NoError(t, kv.Close())

	reopened, err := OpenBadger(BadgerConfig{Path: dir, SyncWrites: true})
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	v, found, err := reopened.Get("history")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":"a"}]`, v)
}

func TestStore_OnBadgerBackend(t *testing.T) {
	// The store behaves identically over Badger and the in-memory KV.
	s := New(openTestBadger(t), Config{SchemaVersion: testVersion})

	require.NoError(t, s.AppendHistory(entryAt("a", 100)))
	require.NoError(t, s.AppendHistory(entryAt("b", 200)))

	entries, err := s.History()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].ID)
}
