// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package language talks to the remote generative-language service for
// grammar analysis and style rewriting.
package language

import "context"

// Client is the remote language service contract. Implementations
// return structured results or an error carrying transport status
// and/or message text; retry classification lives with the caller.
type Client interface {
	// CheckGrammar analyzes text and returns found issues plus a
	// corrected version.
	CheckGrammar(ctx context.Context, text string) (*GrammarResult, error)

	// Rewrite rewrites text in the given style.
	Rewrite(ctx context.Context, text, style string) (*RewriteResult, error)
}

// IssueKind grades a finding. Critical findings count as errors,
// suggestions as style advice.
type IssueKind string

const (
	KindCritical   IssueKind = "critical"
	KindSuggestion IssueKind = "suggestion"
)

// Issue is one finding in the analyzed text.
type Issue struct {
	// Span is the offending fragment, quoted verbatim.
	Span string `json:"span"`

	// Kind is critical or suggestion.
	Kind IssueKind `json:"kind"`

	// Message explains the problem.
	Message string `json:"message"`

	// Replacement is the proposed fix.
	Replacement string `json:"replacement"`
}

// GrammarResult is the structured payload of a grammar check.
type GrammarResult struct {
	CorrectedText string  `json:"correctedText"`
	Issues        []Issue `json:"issues"`
}

// ErrorCount returns the number of critical findings.
func (r *GrammarResult) ErrorCount() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Kind == KindCritical {
			n++
		}
	}
	return n
}

// SuggestionCount returns the number of style suggestions.
func (r *GrammarResult) SuggestionCount() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Kind == KindSuggestion {
			n++
		}
	}
	return n
}

// Perfect reports whether the check found nothing at all.
func (r *GrammarResult) Perfect() bool {
	return len(r.Issues) == 0
}

// RewriteResult is the structured payload of a style rewrite.
type RewriteResult struct {
	Style string `json:"style"`
	Text  string `json:"text"`
}

// RewriteStyles lists the supported rewrite styles.
func RewriteStyles() []string {
	return []string{"formal", "casual", "concise", "elaborate"}
}

// ValidStyle reports whether style is one of RewriteStyles.
func ValidStyle(style string) bool {
	for _, s := range RewriteStyles() {
		if s == style {
			return true
		}
	}
	return false
}
