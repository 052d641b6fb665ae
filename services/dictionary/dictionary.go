// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package dictionary looks up word definitions against the free
// dictionary API. Lookups are never retried: a miss is a single
// user-visible "no definition" state, not a transient failure.
package dictionary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/AleutianAI/quill/pkg/validation"
)

// DefaultBaseURL is the public dictionary endpoint.
const DefaultBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en"

// ErrNotFound means the word has no definition.
var ErrNotFound = errors.New("no definition found")

// Definition is one sense of a word.
type Definition struct {
	Text    string `json:"text"`
	Example string `json:"example,omitempty"`
}

// Meaning groups definitions under a part of speech.
type Meaning struct {
	PartOfSpeech string       `json:"partOfSpeech"`
	Definitions  []Definition `json:"definitions"`
}

// Entry is one dictionary entry for a looked-up word.
type Entry struct {
	Word     string    `json:"word"`
	Phonetic string    `json:"phonetic,omitempty"`
	Audio    string    `json:"audio,omitempty"`
	Meanings []Meaning `json:"meanings"`
}

// Client queries the dictionary service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a dictionary client against DefaultBaseURL.
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    DefaultBaseURL,
		logger:     logger,
	}
}

// wire types mirror the dictionaryapi.dev response shape.
type wireEntry struct {
	Word      string `json:"word"`
	Phonetic  string `json:"phonetic"`
	Phonetics []struct {
		Text  string `json:"text"`
		Audio string `json:"audio"`
	} `json:"phonetics"`
	Meanings []struct {
		PartOfSpeech string `json:"partOfSpeech"`
		Definitions  []struct {
			Definition string `json:"definition"`
			Example    string `json:"example"`
		} `json:"definitions"`
	} `json:"meanings"`
}

// Lookup fetches the entries for word.
//
// Returns ErrNotFound when the service has no definition. The word is
// validated before it is placed in the request path.
func (c *Client) Lookup(ctx context.Context, word string) ([]Entry, error) {
	if err := validation.ValidateWord(word); err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/" + url.PathEscape(word)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build dictionary request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dictionary lookup: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dictionary service returned status %d", resp.StatusCode)
	}

	var wire []wireEntry
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode dictionary response: %w", err)
	}
	if len(wire) == 0 {
		return nil, ErrNotFound
	}

	entries := make([]Entry, 0, len(wire))
	for _, w := range wire {
		entries = append(entries, fromWire(w))
	}
	c.logger.Debug("dictionary lookup complete", "word", word, "entries", len(entries))
	return entries, nil
}

// fromWire flattens the service's response shape. The first phonetic
// with audio wins; phonetic text falls back through the variants.
func fromWire(w wireEntry) Entry {
	e := Entry{Word: w.Word, Phonetic: w.Phonetic}
	for _, p := range w.Phonetics {
		if e.Phonetic == "" && p.Text != "" {
			e.Phonetic = p.Text
		}
		if e.Audio == "" && p.Audio != "" {
			e.Audio = p.Audio
		}
	}
	for _, m := range w.Meanings {
		meaning := Meaning{PartOfSpeech: m.PartOfSpeech}
		for _, d := range m.Definitions {
			meaning.Definitions = append(meaning.Definitions, Definition{
				Text:    d.Definition,
				Example: d.Example,
			})
		}
		e.Meanings = append(e.Meanings, meaning)
	}
	return e
}
