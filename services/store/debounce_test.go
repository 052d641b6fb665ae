// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingKV wraps a KV and counts snapshot writes.
type countingKV struct {
	KV
	snapshotWrites int
}

func (c *countingKV) Set(key, value string) error {
	if key == keySnapshot {
		c.snapshotWrites++
	}
	return c.KV.Set(key, value)
}

func TestDebouncer_CoalescesRapidSaves(t *testing.T) {
	kv := &countingKV{KV: NewMemoryKV()}
	s := New(kv, Config{SchemaVersion: testVersion})
	d := NewDebouncer(s, 50*time.Millisecond, nil)

	for i := 0; i < 10; i++ {
		d.Save(Snapshot{InputText: fmt.Sprintf("draft %d", i)})
	}

	// The quiet period has not elapsed yet; nothing written.
	assert.Equal(t, 0, kv.snapshotWrites)

	require.Eventually(t, func() bool {
		return kv.snapshotWrites > 0
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, kv.snapshotWrites, "ten rapid saves coalesce into one write")

	loaded, err := s.LoadSnapshot()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "draft 9", loaded.InputText, "the latest snapshot wins")
}

func TestDebouncer_FlushWritesImmediately(t *testing.T) {
	kv := &countingKV{KV: NewMemoryKV()}
	s := New(kv, Config{SchemaVersion: testVersion})
	d := NewDebouncer(s, time.Hour, nil) // would never fire on its own

	d.Save(Snapshot{InputText: "pending"})
	d.Flush()

	assert.Equal(t, 1, kv.snapshotWrites)

	loaded, err := s.LoadSnapshot()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "pending", loaded.InputText)
}

func TestDebouncer_FlushWithNothingPending(t *testing.T) {
	kv := &countingKV{KV: NewMemoryKV()}
	s := New(kv, Config{SchemaVersion: testVersion})
	d := NewDebouncer(s, time.Hour, nil)

	d.Flush()
	assert.Equal(t, 0, kv.snapshotWrites)
}

func TestDebouncer_StopRejectsFurtherSaves(t *testing.T) {
	kv := &countingKV{KV: NewMemoryKV()}
	s := New(kv, Config{SchemaVersion: testVersion})
	d := NewDebouncer(s, time.Hour, nil)

	d.Save(Snapshot{InputText: "final"})
	d.Stop()
	assert.Equal(t, 1, kv.snapshotWrites, "Stop flushes pending work")

	d.Save(Snapshot{InputText: "after stop"})
	d.Flush()
	assert.Equal(t, 1, kv.snapshotWrites, "saves after Stop are ignored")
}
