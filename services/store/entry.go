// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Category identifies which kind of operation produced a history entry.
type Category string

const (
	CategoryGrammar    Category = "grammar"
	CategoryRewrite    Category = "rewrite"
	CategoryDictionary Category = "dictionary"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryGrammar, CategoryRewrite, CategoryDictionary:
		return true
	}
	return false
}

// snippetMaxLen is the display length cap for TextSnippet.
const snippetMaxLen = 60

// HistoryEntry is one durable record of a completed user operation.
//
// Entries are created on every successful remote operation, never
// mutated afterwards, and deleted only by a full history clear. ID is
// globally unique across the store's lifetime.
type HistoryEntry struct {
	ID              string   `json:"id"`
	Timestamp       int64    `json:"timestamp"` // epoch milliseconds
	TextSnippet     string   `json:"textSnippet"`
	FullText        string   `json:"fullText"`
	ErrorCount      int      `json:"errorCount"`
	SuggestionCount int      `json:"suggestionCount"`
	IsPerfect       bool     `json:"isPerfect"`
	Category        Category `json:"category"`
	RewriteStyle    string   `json:"rewriteStyle,omitempty"`
}

// Validate checks the structural invariants an entry must satisfy
// before it is accepted into the store (directly or via import).
func (e HistoryEntry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("history entry missing id")
	}
	if e.Timestamp <= 0 {
		return fmt.Errorf("history entry %s has invalid timestamp %d", e.ID, e.Timestamp)
	}
	if !e.Category.Valid() {
		return fmt.Errorf("history entry %s has unknown category %q", e.ID, e.Category)
	}
	if e.ErrorCount < 0 || e.SuggestionCount < 0 {
		return fmt.Errorf("history entry %s has negative counts", e.ID)
	}
	return nil
}

// NewHistoryEntry builds an entry for a completed operation, enforcing
// the data-model invariants: fresh unique ID, epoch-ms timestamp,
// ellipsised snippet, and the perfect-run rule. Grammar entries are
// perfect only when both counts are zero; rewrite and dictionary
// entries are always perfect.
func NewHistoryEntry(category Category, fullText string, errorCount, suggestionCount int) HistoryEntry {
	perfect := true
	if category == CategoryGrammar {
		perfect = errorCount == 0 && suggestionCount == 0
	}
	return HistoryEntry{
		ID:              uuid.NewString(),
		Timestamp:       time.Now().UnixMilli(),
		TextSnippet:     ellipsise(fullText, snippetMaxLen),
		FullText:        fullText,
		ErrorCount:      errorCount,
		SuggestionCount: suggestionCount,
		IsPerfect:       perfect,
		Category:        category,
	}
}

// ellipsise truncates s to at most max runes, appending "…" when it
// was cut. Counts runes, not bytes, so multi-byte text is not split.
func ellipsise(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}
