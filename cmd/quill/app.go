// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/awnumar/memguard"

	"github.com/AleutianAI/quill/pkg/logging"
	"github.com/AleutianAI/quill/pkg/retry"
	"github.com/AleutianAI/quill/pkg/ux"
	"github.com/AleutianAI/quill/services/coordinator"
	"github.com/AleutianAI/quill/services/dictionary"
	"github.com/AleutianAI/quill/services/language"
	"github.com/AleutianAI/quill/services/store"
)

// App wires the control layer together: every remote request flows
// through the coordinator (supersession) and the retry policy, and
// every successful result lands in the durable store.
type App struct {
	cfg      Config
	logger   *logging.Logger
	store    *store.Store
	saver    *store.Debouncer
	coord    *coordinator.Coordinator
	language language.Client
	dict     *dictionary.Client
	retryCfg retry.Config
}

// newApp assembles the production wiring: BadgerDB-backed store,
// OpenAI-backed language client with the stored credential in a
// memguard enclave, and default retry policy.
func newApp() (*App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	level := logging.LevelInfo
	if verboseLogs {
		level = logging.LevelDebug
	}
	logger := logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.LogDir,
		Service: "cli",
	})

	kv, err := store.OpenBadger(store.BadgerConfig{
		Path:       cfg.DataDir,
		SyncWrites: true,
		Logger:     logger.Slog(),
	})
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("open data store: %w", err)
	}

	st := store.New(kv, store.Config{
		SchemaVersion: schemaVersion,
		Logger:        logger.Slog(),
	})

	// The credential moves from storage into locked memory; the
	// language client decrypts it per request.
	var enclave *memguard.Enclave
	key, found, err := st.Credential()
	if err != nil {
		logger.Warn("could not read stored credential", "error", err)
	} else if found {
		enclave = memguard.NewEnclave([]byte(key))
	}

	retryCfg := retry.DefaultConfig()
	retryCfg.Logger = logger.Slog()

	app := &App{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		saver:    store.NewDebouncer(st, cfg.Debounce(), logger.Slog()),
		coord:    coordinator.New(),
		language: language.NewOpenAIClient(enclave, cfg.Model, logger.Slog()),
		dict:     dictionary.NewClient(logger.Slog()),
		retryCfg: retryCfg,
	}
	return app, nil
}

// Close flushes pending snapshot writes and releases resources.
func (a *App) Close() {
	a.saver.Stop()
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing store", "error", err)
	}
	_ = a.logger.Close()
}

// CheckGrammar mints a fresh generation token and runs one grammar
// check under it.
//
// A nil result with nil error means the action was superseded while in
// flight: a newer check (or an invalidation) won, and this one must
// produce no side effects, not even error reporting.
func (a *App) CheckGrammar(ctx context.Context, text string) (*language.GrammarResult, error) {
	return a.CheckGrammarWith(ctx, a.coord.Begin(coordinator.ClassGrammar), text)
}

// CheckGrammarWith runs one grammar check under a caller-minted token.
//
// Callers that overlap checks, the interactive session in particular,
// must mint the token on the submission path before handing the check
// to a goroutine. Token order then matches the order the user
// submitted in, and the winner is decided by submission order rather
// than by which goroutine the scheduler happens to start first.
func (a *App) CheckGrammarWith(ctx context.Context, tok coordinator.Token, text string) (*language.GrammarResult, error) {
	var result *language.GrammarResult
	err := retry.Do(ctx, a.retryCfg, func(ctx context.Context) error {
		r, rerr := a.language.CheckGrammar(ctx, text)
		if rerr != nil {
			return rerr
		}
		result = r
		return nil
	})

	// Token check before any observable side effect, error reporting
	// included.
	if !a.coord.IsActive(tok) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	entry := store.NewHistoryEntry(store.CategoryGrammar, text,
		result.ErrorCount(), result.SuggestionCount())
	if serr := a.store.AppendHistory(entry); serr != nil {
		// Storage failures never block the user-visible result.
		a.logger.Error("recording history entry", "error", serr)
	}

	// The snapshot save is a secondary side effect: time has passed
	// since the primary commit, so the token is checked again.
	if a.coord.IsActive(tok) {
		if raw, merr := json.Marshal(result); merr == nil {
			a.saver.Save(store.Snapshot{
				InputText:   text,
				LastGrammar: raw,
				ColorScheme: a.cfg.ColorScheme,
			})
		}
	}

	return result, nil
}

// Rewrite runs one style rewrite under a fresh generation token. The
// same supersession rules as CheckGrammar apply.
func (a *App) Rewrite(ctx context.Context, text, style string) (*language.RewriteResult, error) {
	tok := a.coord.Begin(coordinator.ClassRewrite)

	var result *language.RewriteResult
	err := retry.Do(ctx, a.retryCfg, func(ctx context.Context) error {
		r, rerr := a.language.Rewrite(ctx, text, style)
		if rerr != nil {
			return rerr
		}
		result = r
		return nil
	})

	if !a.coord.IsActive(tok) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	entry := store.NewHistoryEntry(store.CategoryRewrite, text, 0, 0)
	entry.RewriteStyle = style
	if serr := a.store.AppendHistory(entry); serr != nil {
		a.logger.Error("recording history entry", "error", serr)
	}

	if a.coord.IsActive(tok) {
		if raw, merr := json.Marshal(result); merr == nil {
			a.saver.Save(store.Snapshot{
				InputText:   text,
				LastRewrite: raw,
				ColorScheme: a.cfg.ColorScheme,
			})
		}
	}

	return result, nil
}

// Define looks up a word. Lookups are not retried and need no
// generation token; they are one-shot and never superseded.
func (a *App) Define(ctx context.Context, word string) ([]dictionary.Entry, error) {
	entries, err := a.dict.Lookup(ctx, word)
	if err != nil {
		return nil, err
	}

	entry := store.NewHistoryEntry(store.CategoryDictionary, word, 0, 0)
	if serr := a.store.AppendHistory(entry); serr != nil {
		a.logger.Error("recording history entry", "error", serr)
	}
	return entries, nil
}

// errReported marks a failure that was already shown to the user in
// styled form. main exits nonzero on it without printing a second,
// unstyled copy of the same failure.
var errReported = errors.New("failure already reported")

// reportFailure prints the user-facing message for err and returns the
// reported marker for the handler to propagate.
func reportFailure(err error) error {
	ux.Fail("%s", userMessage(err))
	return errReported
}

// userMessage maps terminal error categories to short actionable
// messages. Transient categories were already resolved by the retry
// policy; only terminal ones reach the user.
func userMessage(err error) string {
	switch {
	case errors.Is(err, retry.ErrNoCredential):
		return "No API key configured. Run `quill config key set` first."
	case errors.Is(err, retry.ErrCredentialRejected):
		return "The service rejected your API key. Run `quill config key set` with a valid key."
	case errors.Is(err, dictionary.ErrNotFound):
		return "No definition found."
	case errors.Is(err, context.Canceled):
		return "Cancelled."
	default:
		return "Something went wrong. Please try again."
	}
}
