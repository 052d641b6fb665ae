// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package retry

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
)

// fakeSleep records requested delays without waiting.
type fakeSleep struct {
	delays []time.Duration
}

func (f *fakeSleep) sleep(ctx context.Context, d time.Duration) error {
	f.delays = append(f.delays, d)
	return ctx.Err()
}

func rateLimitErr() error {
	return &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "Rate limit reached"}
}

func unavailableErr() error {
	return &openai.APIError{HTTPStatusCode: http.StatusServiceUnavailable, Message: "The model is overloaded"}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "default config is valid",
			config:  DefaultConfig(),
			wantErr: false,
		},
		{
			name:    "zero max attempts is invalid",
			config:  Config{MaxAttempts: 0, BaseDelay: time.Second},
			wantErr: true,
		},
		{
			name:    "zero base delay is invalid",
			config:  Config{MaxAttempts: 3},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDo_SuccessOnFirstAttempt(t *testing.T) {
	fs := &fakeSleep{}
	cfg := Config{MaxAttempts: 3, BaseDelay: 2 * time.Second, Sleep: fs.sleep}

	attempts := 0
	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		attempts++
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	if len(fs.delays) != 0 {
		t.Errorf("slept %d times, want 0", len(fs.delays))
	}
}

func TestDo_TransientThenSuccess(t *testing.T) {
	// Two rate-limit failures then success: the result is the success,
	// with backoff delays of 2s then 4s between attempts.
	fs := &fakeSleep{}
	cfg := Config{MaxAttempts: 3, BaseDelay: 2 * time.Second, Sleep: fs.sleep}

	attempts := 0
	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return rateLimitErr()
		}
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	want := []time.Duration{2 * time.Second, 4 * time.Second}
	if len(fs.delays) != len(want) {
		t.Fatalf("delays = %v, want %v", fs.delays, want)
	}
	for i := range want {
		if fs.delays[i] != want[i] {
			t.Errorf("delay[%d] = %v, want %v", i, fs.delays[i], want[i])
		}
	}
}

func TestDo_ExhaustedReturnsLastError(t *testing.T) {
	fs := &fakeSleep{}
	cfg := Config{MaxAttempts: 3, BaseDelay: 2 * time.Second, Sleep: fs.sleep}

	attempts := 0
	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		attempts++
		return unavailableErr()
	})

	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if len(fs.delays) != 2 {
		t.Errorf("slept %d times, want 2 (no wait after last attempt)", len(fs.delays))
	}
	if Classify(err) != ClassServiceUnavailable {
		t.Errorf("exhausted error lost its class: %v", err)
	}
}

func TestDo_AuthMissingFailsImmediately(t *testing.T) {
	fs := &fakeSleep{}
	cfg := Config{MaxAttempts: 3, BaseDelay: 2 * time.Second, Sleep: fs.sleep}

	attempts := 0
	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		attempts++
		return ErrNoCredential
	})

	if !errors.Is(err, ErrNoCredential) {
		t.Fatalf("err = %v, want ErrNoCredential", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (terminal errors are never retried)", attempts)
	}
	if len(fs.delays) != 0 {
		t.Errorf("slept %d times, want 0", len(fs.delays))
	}
}

func TestDo_PermissionDeniedIsResignaled(t *testing.T) {
	fs := &fakeSleep{}
	cfg := Config{MaxAttempts: 3, BaseDelay: 2 * time.Second, Sleep: fs.sleep}

	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		return &openai.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "Incorrect API key provided"}
	})

	if !errors.Is(err, ErrCredentialRejected) {
		t.Fatalf("err = %v, want ErrCredentialRejected wrapper", err)
	}
	if len(fs.delays) != 0 {
		t.Errorf("slept %d times, want 0", len(fs.delays))
	}
}

func TestDo_OtherErrorNotRetried(t *testing.T) {
	fs := &fakeSleep{}
	cfg := Config{MaxAttempts: 3, BaseDelay: 2 * time.Second, Sleep: fs.sleep}

	boom := errors.New("malformed response")
	attempts := 0
	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		attempts++
		return boom
	})

	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want original error", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		Sleep: func(ctx context.Context, d time.Duration) error {
			cancel()
			return ctx.Err()
		},
	}

	err := Do(ctx, cfg, func(ctx context.Context) error {
		return rateLimitErr()
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
