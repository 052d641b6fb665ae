// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the latest in-progress editor state. It is ephemeral:
// overwritten on every debounced save and invalidated wholesale on a
// schema-version mismatch. Result payloads are kept opaque so the
// store stays independent of the language service's types.
type Snapshot struct {
	InputText   string          `json:"inputText"`
	LastGrammar json.RawMessage `json:"lastGrammar,omitempty"`
	LastRewrite json.RawMessage `json:"lastRewrite,omitempty"`
	ColorScheme string          `json:"colorScheme,omitempty"`
}

// SaveSnapshot replaces the stored snapshot wholesale and stamps the
// current schema version so a later load by the same build accepts it.
func (s *Store) SaveSnapshot(snap Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.kv.Set(keySnapshot, string(raw)); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := s.kv.Set(keyVersion, s.version); err != nil {
		return fmt.Errorf("write schema version: %w", err)
	}
	return nil
}

// LoadSnapshot returns the stored snapshot, or nil when none exists or
// the schema version has moved on.
//
// # Description
//
// The stored schema-version tag is compared against the version this
// build expects. On mismatch the ephemeral snapshot is discarded, the
// tag is advanced, and nil is returned for this load. History and
// credential are user data: a version change never touches them.
func (s *Store) LoadSnapshot() (*Snapshot, error) {
	tag, _, err := s.kv.Get(keyVersion)
	if err != nil {
		return nil, fmt.Errorf("read schema version: %w", err)
	}

	if tag != s.version {
		s.logger.Info("schema version changed, discarding snapshot",
			"stored", tag, "expected", s.version)
		if err := s.kv.Delete(keySnapshot); err != nil {
			return nil, fmt.Errorf("discard stale snapshot: %w", err)
		}
		if err := s.kv.Set(keyVersion, s.version); err != nil {
			return nil, fmt.Errorf("advance schema version: %w", err)
		}
		return nil, nil
	}

	raw, found, err := s.kv.Get(keySnapshot)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if !found {
		return nil, nil
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		// Treat a corrupt snapshot like a missing one; it is
		// ephemeral state and safe to drop.
		s.logger.Warn("snapshot record is corrupt, discarding", "error", err)
		if err := s.kv.Delete(keySnapshot); err != nil {
			return nil, fmt.Errorf("discard corrupt snapshot: %w", err)
		}
		return nil, nil
	}
	return &snap, nil
}
