// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a pending snapshot is
// written.
const DefaultDebounce = time.Second

// Debouncer coalesces snapshot saves: rapid successive edits produce a
// single write after a quiet period. Coalescing is safe because every
// save is an idempotent wholesale replacement of the same record.
//
// Write failures are logged and swallowed; a lost ephemeral snapshot
// is not worth surfacing to the user mid-edit.
type Debouncer struct {
	mu      sync.Mutex
	store   *Store
	delay   time.Duration
	logger  *slog.Logger
	timer   *time.Timer
	pending *Snapshot
	stopped bool
}

// NewDebouncer wraps store with a coalescing save policy. A delay of 0
// uses DefaultDebounce.
func NewDebouncer(store *Store, delay time.Duration, logger *slog.Logger) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Debouncer{store: store, delay: delay, logger: logger}
}

// Save schedules snap to be written after the quiet period, replacing
// any snapshot scheduled earlier.
func (d *Debouncer) Save(snap Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending = &snap
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

// fire writes the pending snapshot, if any.
func (d *Debouncer) fire() {
	d.mu.Lock()
	snap := d.pending
	d.pending = nil
	d.mu.Unlock()

	if snap == nil {
		return
	}
	if err := d.store.SaveSnapshot(*snap); err != nil {
		d.logger.Warn("debounced snapshot save failed", "error", err)
	}
}

// Flush writes any pending snapshot immediately.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	d.fire()
}

// Stop flushes pending work and rejects further saves.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()

	d.Flush()
}
