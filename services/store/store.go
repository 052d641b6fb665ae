// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package store is the durable state layer: history log, ephemeral app
// snapshot, user credential, and schema version tag.
//
// Four independent records live behind an injected KV capability
// (BadgerDB in production, in-memory in tests). Every record is
// replaced wholesale on write, never patched in place, so a failed
// write can never corrupt a previously good record. Storage failures
// are wrapped and returned to the caller; nothing in this package
// panics.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
)

// Record keys in the KV namespace.
const (
	keyHistory    = "history"
	keySnapshot   = "snapshot"
	keyCredential = "credential"
	keyVersion    = "schema_version"
)

// Config configures a Store.
type Config struct {
	// SchemaVersion is the version tag this build expects. A stored tag
	// that differs causes the ephemeral snapshot to be discarded on
	// load. History and credential are user data and always survive.
	SchemaVersion string

	// Logger records storage warnings. If nil, logging is disabled.
	Logger *slog.Logger
}

// Store owns all persisted records. Other components read and write
// only through its interface, never touching the KV directly.
type Store struct {
	kv      KV
	version string
	logger  *slog.Logger
}

// New creates a Store over the given KV.
func New(kv KV, cfg Config) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		kv:      kv,
		version: cfg.SchemaVersion,
		logger:  logger,
	}
}

// Close closes the underlying KV.
func (s *Store) Close() error {
	return s.kv.Close()
}

// History returns all entries, newest first. The returned slice is the
// caller's to keep; the stored record is never mutated.
func (s *Store) History() ([]HistoryEntry, error) {
	raw, found, err := s.kv.Get(keyHistory)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	if !found {
		return nil, nil
	}

	var entries []HistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		// A corrupt record is reported, not fatal; callers see an
		// empty history rather than a crash.
		s.logger.Error("history record is corrupt", "error", err)
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return entries, nil
}

// AppendHistory prepends entry to the log (newest-first ordering) and
// writes the whole record atomically.
func (s *Store) AppendHistory(entry HistoryEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	entries, err := s.History()
	if err != nil {
		return err
	}

	entries = append([]HistoryEntry{entry}, entries...)
	return s.writeHistory(entries)
}

// ClearHistory removes every entry. Entries are deleted only this way;
// there is no per-entry delete.
func (s *Store) ClearHistory() error {
	if err := s.kv.Delete(keyHistory); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// writeHistory replaces the history record wholesale.
func (s *Store) writeHistory(entries []HistoryEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := s.kv.Set(keyHistory, string(raw)); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// Stats summarizes grammar-check activity.
type Stats struct {
	TotalChecks  int `json:"totalChecks"`
	TotalErrors  int `json:"totalErrors"`
	AccuracyRate int `json:"accuracyRate"` // percent, rounded
	PerfectRuns  int `json:"perfectRuns"`
}

// ComputeStats derives statistics over grammar-category entries only.
// All fields are zero when there are no grammar entries.
func (s *Store) ComputeStats() (Stats, error) {
	entries, err := s.History()
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	for _, e := range entries {
		if e.Category != CategoryGrammar {
			continue
		}
		stats.TotalChecks++
		stats.TotalErrors += e.ErrorCount
		if e.IsPerfect {
			stats.PerfectRuns++
		}
	}
	if stats.TotalChecks > 0 {
		stats.AccuracyRate = int(math.Round(100 * float64(stats.PerfectRuns) / float64(stats.TotalChecks)))
	}
	return stats, nil
}

// SetCredential stores the user's remote-service key. The credential
// is persisted independently of everything else and never participates
// in export, import, or statistics.
func (s *Store) SetCredential(key string) error {
	if err := s.kv.Set(keyCredential, key); err != nil {
		return fmt.Errorf("write credential: %w", err)
	}
	return nil
}

// Credential returns the stored key and whether one is configured.
func (s *Store) Credential() (string, bool, error) {
	key, found, err := s.kv.Get(keyCredential)
	if err != nil {
		return "", false, fmt.Errorf("read credential: %w", err)
	}
	return key, found, nil
}

// ClearCredential removes the stored key.
func (s *Store) ClearCredential() error {
	if err := s.kv.Delete(keyCredential); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// sortNewestFirst orders entries by timestamp descending, preserving
// relative order of equal timestamps.
func sortNewestFirst(entries []HistoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
}
