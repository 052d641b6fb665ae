// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package retry decides whether and how failed remote calls are retried.
//
// Transient failures (rate limiting, service overload) are retried with
// exponential backoff. Terminal failures (missing or rejected credential,
// anything unclassified) fail immediately. Classification over the
// heterogeneous error shapes the remote service produces lives in
// classify.go.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Config configures the retry loop.
type Config struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Default: 3
	MaxAttempts int

	// BaseDelay is the wait before the first retry. Subsequent retries
	// double it: BaseDelay x 2^(attempt-1). Default: 2s
	BaseDelay time.Duration

	// Logger records retry attempts at Warn level. If nil, logging is
	// disabled.
	Logger *slog.Logger

	// Sleep waits for the backoff delay, honoring context cancellation.
	// Overridable for tests. If nil, a context-aware time.After wait
	// is used.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultConfig returns the production retry configuration.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
	}
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be >= 1, got %d", c.MaxAttempts)
	}
	if c.BaseDelay <= 0 {
		return fmt.Errorf("base delay must be positive, got %v", c.BaseDelay)
	}
	return nil
}

// Operation is a remote call that can be retried.
type Operation func(ctx context.Context) error

// sleepCtx waits d or returns early when ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Do executes op with classification-driven retry.
//
// # Description
//
// Runs op up to cfg.MaxAttempts times. After each failure the error is
// classified (see Classify):
//
//   - ClassAuthMissing, ClassOther: returned immediately, no retry.
//   - ClassPermissionDenied: returned immediately, wrapped in
//     ErrCredentialRejected so callers can distinguish it from a
//     generic failure.
//   - ClassRateLimited, ClassServiceUnavailable: retried after
//     BaseDelay x 2^(attempt-1).
//
// Exhausting all attempts returns the last error.
//
// # Inputs
//
//   - ctx: Context for cancellation. Backoff waits abort when it is done.
//   - cfg: Retry configuration. Zero values are replaced by defaults.
//   - op: The operation to run. Must not be nil.
//
// # Outputs
//
//   - error: nil on success; the terminal or last error otherwise.
func Do(ctx context.Context, cfg Config, op Operation) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultConfig().BaseDelay
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		class := Classify(err)
		switch class {
		case ClassPermissionDenied:
			return fmt.Errorf("%w: %v", ErrCredentialRejected, err)
		case ClassAuthMissing, ClassOther:
			return err
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		delay := cfg.BaseDelay << (attempt - 1)
		if cfg.Logger != nil {
			cfg.Logger.Warn("transient failure, retrying",
				"class", class.String(),
				"attempt", attempt,
				"max_attempts", cfg.MaxAttempts,
				"delay", delay,
				"error", err)
		}
		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}

	return lastErr
}
