// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrImportMalformed marks an unparseable or structurally invalid
// import bundle. Existing stored data is never touched when it is
// returned.
var ErrImportMalformed = errors.New("import bundle is malformed")

// ExportBundle is the UTF-8 JSON document produced by ExportSnapshot
// and consumed by ImportSnapshot. The credential is deliberately
// absent: it never leaves the local store.
type ExportBundle struct {
	History     []HistoryEntry `json:"history"`
	Theme       string         `json:"theme"`
	ColorScheme string         `json:"colorScheme"`
	Version     string         `json:"version"`
}

// ImportResult reports what an import recovered. Theme and ColorScheme
// are returned for the caller to re-apply; the store does not own them.
type ImportResult struct {
	// Imported is the number of new entries merged into history.
	Imported int

	// Theme and ColorScheme are set when the bundle carried them
	// (the full bundle shape; the legacy bare-array shape has none).
	Theme       string
	ColorScheme string
}

// ExportSnapshot serializes the full history plus the given theme and
// color scheme into a bundle.
func (s *Store) ExportSnapshot(theme, colorScheme string) ([]byte, error) {
	entries, err := s.History()
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []HistoryEntry{}
	}

	bundle := ExportBundle{
		History:     entries,
		Theme:       theme,
		ColorScheme: colorScheme,
		Version:     s.version,
	}
	raw, err := json.Marshal(bundle)
	if err != nil {
		return nil, fmt.Errorf("encode export bundle: %w", err)
	}
	return raw, nil
}

// ImportSnapshot merges an exported bundle into the current history.
//
// # Description
//
// Accepts either the full bundle shape or a legacy bare history array.
// An incoming entry is accepted only if its id is not already present;
// accepted entries are combined with current history and the union is
// re-sorted by timestamp descending. Importing the same bundle twice
// therefore produces no duplicates and no reordering beyond timestamp
// order.
//
// Malformed input returns ErrImportMalformed without mutating anything.
//
// # Inputs
//
//   - data: The bundle bytes (full shape or legacy array).
//
// # Outputs
//
//   - ImportResult: Count of merged entries plus any recovered theme
//     and color scheme for the caller to re-apply.
//   - error: ErrImportMalformed on bad input, storage errors otherwise.
func (s *Store) ImportSnapshot(data []byte) (ImportResult, error) {
	incoming, result, err := decodeBundle(data)
	if err != nil {
		return ImportResult{}, err
	}

	for _, e := range incoming {
		if err := e.Validate(); err != nil {
			return ImportResult{}, fmt.Errorf("%w: %v", ErrImportMalformed, err)
		}
	}

	current, err := s.History()
	if err != nil {
		return ImportResult{}, err
	}

	seen := make(map[string]bool, len(current))
	for _, e := range current {
		seen[e.ID] = true
	}

	merged := current
	for _, e := range incoming {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		merged = append(merged, e)
		result.Imported++
	}

	if result.Imported > 0 {
		sortNewestFirst(merged)
		if err := s.writeHistory(merged); err != nil {
			return ImportResult{}, err
		}
	}

	return result, nil
}

// decodeBundle parses either bundle shape and returns the entries plus
// a partially filled result (theme/color for the full shape).
func decodeBundle(data []byte) ([]HistoryEntry, ImportResult, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ImportResult{}, ErrImportMalformed
	}

	// Legacy shape: a bare history array.
	if trimmed[0] == '[' {
		var entries []HistoryEntry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, ImportResult{}, fmt.Errorf("%w: %v", ErrImportMalformed, err)
		}
		return entries, ImportResult{}, nil
	}

	var bundle ExportBundle
	if err := json.Unmarshal(trimmed, &bundle); err != nil {
		return nil, ImportResult{}, fmt.Errorf("%w: %v", ErrImportMalformed, err)
	}
	if bundle.History == nil {
		return nil, ImportResult{}, fmt.Errorf("%w: missing history field", ErrImportMalformed)
	}
	return bundle.History, ImportResult{Theme: bundle.Theme, ColorScheme: bundle.ColorScheme}, nil
}
