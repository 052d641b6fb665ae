// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AleutianAI/quill/pkg/logging"
	"github.com/AleutianAI/quill/pkg/retry"
	"github.com/AleutianAI/quill/services/coordinator"
	"github.com/AleutianAI/quill/services/language"
	"github.com/AleutianAI/quill/services/store"
)

// scriptedClient serves grammar checks from a queue of canned steps.
// A step with a gate channel blocks until the gate is closed, which
// lets tests hold one request in flight while a newer one lands.
type scriptedClient struct {
	mu    sync.Mutex
	steps []scriptStep
	calls int
}

type scriptStep struct {
	gate   chan struct{}
	result *language.GrammarResult
	err    error
}

func (c *scriptedClient) CheckGrammar(ctx context.Context, text string) (*language.GrammarResult, error) {
	c.mu.Lock()
	c.calls++
	var step scriptStep
	if len(c.steps) > 0 {
		step = c.steps[0]
		c.steps = c.steps[1:]
	}
	c.mu.Unlock()

	if step.gate != nil {
		select {
		case <-step.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if step.err != nil {
		return nil, step.err
	}
	if step.result != nil {
		return step.result, nil
	}
	return &language.GrammarResult{CorrectedText: text}, nil
}

func (c *scriptedClient) Rewrite(ctx context.Context, text, style string) (*language.RewriteResult, error) {
	return &language.RewriteResult{Style: style, Text: "rewritten: " + text}, nil
}

func newTestApp(t *testing.T, client language.Client) *App {
	t.Helper()

	st := store.New(store.NewMemoryKV(), store.Config{SchemaVersion: schemaVersion})
	logger := logging.New(logging.Config{Quiet: true})
	app := &App{
		cfg:      Config{ColorScheme: "ink"},
		logger:   logger,
		store:    st,
		saver:    store.NewDebouncer(st, 5*time.Millisecond, logger.Slog()),
		coord:    coordinator.New(),
		language: client,
		retryCfg: retry.Config{
			MaxAttempts: 3,
			BaseDelay:   time.Millisecond,
			Sleep:       func(context.Context, time.Duration) error { return nil },
		},
	}
	t.Cleanup(func() {
		app.saver.Stop()
		_ = app.store.Close()
		_ = app.logger.Close()
	})
	return app
}

func TestCheckGrammarRecordsHistory(t *testing.T) {
	client := &scriptedClient{steps: []scriptStep{{
		result: &language.GrammarResult{
			CorrectedText: "Hello, world.",
			Issues: []language.Issue{
				{Span: "helo", Kind: language.KindCritical, Message: "misspelled", Replacement: "hello"},
			},
		},
	}}}
	app := newTestApp(t, client)

	result, err := app.CheckGrammar(context.Background(), "helo world")
	if err != nil {
		t.Fatalf("CheckGrammar: %v", err)
	}
	if result == nil || result.ErrorCount() != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}

	entries, err := app.store.History()
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Category != store.CategoryGrammar || e.ErrorCount != 1 || e.IsPerfect {
		t.Errorf("unexpected entry: %+v", e)
	}

	// The debounced snapshot should land after the quiet period.
	app.saver.Flush()
	snap, err := app.store.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if snap == nil || snap.InputText != "helo world" {
		t.Fatalf("snapshot not written: %+v", snap)
	}
}

func TestCheckGrammarSupersededProducesNoEffects(t *testing.T) {
	gate := make(chan struct{})
	client := &scriptedClient{steps: []scriptStep{
		{gate: gate, result: &language.GrammarResult{CorrectedText: "old"}},
		{result: &language.GrammarResult{CorrectedText: "new"}},
	}}
	app := newTestApp(t, client)

	type outcome struct {
		result *language.GrammarResult
		err    error
	}
	firstDone := make(chan outcome, 1)
	go func() {
		r, err := app.CheckGrammar(context.Background(), "first draft")
		firstDone <- outcome{r, err}
	}()

	// Wait until the first request is actually in flight.
	waitFor(t, func() bool {
		client.mu.Lock()
		defer client.mu.Unlock()
		return client.calls == 1
	})

	second, err := app.CheckGrammar(context.Background(), "second draft")
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if second == nil || second.CorrectedText != "new" {
		t.Fatalf("second result: %+v", second)
	}

	// Release the stale request. It must come back empty.
	close(gate)
	first := <-firstDone
	if first.err != nil {
		t.Fatalf("superseded check returned error: %v", first.err)
	}
	if first.result != nil {
		t.Fatalf("superseded check returned a result: %+v", first.result)
	}

	// Only the winner may appear in history.
	entries, err := app.store.History()
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(entries))
	}
	if entries[0].FullText != "second draft" {
		t.Errorf("wrong entry committed: %+v", entries[0])
	}

	// And only the winner's snapshot may land.
	app.saver.Flush()
	snap, err := app.store.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if snap == nil || snap.InputText != "second draft" {
		t.Fatalf("wrong snapshot: %+v", snap)
	}
}

func TestCheckGrammarSubmissionOrderDecidesWinner(t *testing.T) {
	// Tokens are minted on the submission path, then the checks run in
	// inverted order: the newer submission's request starts and
	// finishes before the older one's. The older submission must still
	// lose; the winner is fixed at mint time, not at execution time.
	client := &scriptedClient{steps: []scriptStep{
		{result: &language.GrammarResult{CorrectedText: "new"}},
		{result: &language.GrammarResult{CorrectedText: "old"}},
	}}
	app := newTestApp(t, client)

	older := app.coord.Begin(coordinator.ClassGrammar)
	newer := app.coord.Begin(coordinator.ClassGrammar)

	second, err := app.CheckGrammarWith(context.Background(), newer, "second draft")
	if err != nil {
		t.Fatalf("newer check: %v", err)
	}
	if second == nil || second.CorrectedText != "new" {
		t.Fatalf("newer result: %+v", second)
	}

	first, err := app.CheckGrammarWith(context.Background(), older, "first draft")
	if err != nil {
		t.Fatalf("older check returned error: %v", err)
	}
	if first != nil {
		t.Fatalf("older submission committed a result: %+v", first)
	}

	entries, err := app.store.History()
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 1 || entries[0].FullText != "second draft" {
		t.Fatalf("wrong history committed: %+v", entries)
	}
}

func TestCheckGrammarInvalidatedSuppressesError(t *testing.T) {
	gate := make(chan struct{})
	failure := errors.New("boom")
	client := &scriptedClient{steps: []scriptStep{{gate: gate, err: failure}}}
	app := newTestApp(t, client)

	done := make(chan error, 1)
	go func() {
		_, err := app.CheckGrammar(context.Background(), "draft")
		done <- err
	}()

	waitFor(t, func() bool {
		client.mu.Lock()
		defer client.mu.Unlock()
		return client.calls == 1
	})

	// The user cleared the input while the request was in flight.
	app.coord.Invalidate(coordinator.ClassGrammar)
	close(gate)

	if err := <-done; err != nil {
		t.Fatalf("invalidated check surfaced an error: %v", err)
	}

	entries, err := app.store.History()
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("invalidated check wrote history: %+v", entries)
	}
}

func TestRewriteRecordsStyle(t *testing.T) {
	app := newTestApp(t, &scriptedClient{})

	result, err := app.Rewrite(context.Background(), "hey there", "formal")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if result.Style != "formal" {
		t.Fatalf("unexpected style: %q", result.Style)
	}

	entries, err := app.store.History()
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Category != store.CategoryRewrite || entries[0].RewriteStyle != "formal" {
		t.Errorf("unexpected entry: %+v", entries[0])
	}
}

func TestGrammarAndRewriteClassesAreIndependent(t *testing.T) {
	gate := make(chan struct{})
	client := &scriptedClient{steps: []scriptStep{
		{gate: gate, result: &language.GrammarResult{CorrectedText: "slow"}},
	}}
	app := newTestApp(t, client)

	done := make(chan *language.GrammarResult, 1)
	go func() {
		r, _ := app.CheckGrammar(context.Background(), "slow draft")
		done <- r
	}()
	waitFor(t, func() bool {
		client.mu.Lock()
		defer client.mu.Unlock()
		return client.calls == 1
	})

	// A rewrite must not supersede an in-flight grammar check.
	if _, err := app.Rewrite(context.Background(), "unrelated", "concise"); err != nil {
		t.Fatalf("Rewrite: %v", err)
	}

	close(gate)
	if r := <-done; r == nil || r.CorrectedText != "slow" {
		t.Fatalf("grammar check was wrongly superseded: %+v", r)
	}
}

func TestReportFailureReturnsMarker(t *testing.T) {
	// Handlers report once in styled form; main must be able to tell
	// and skip its own print.
	err := reportFailure(errors.New("boom"))
	if !errors.Is(err, errReported) {
		t.Fatalf("reportFailure did not return the reported marker: %v", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
