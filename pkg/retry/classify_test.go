// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package retry

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Class
	}{
		{
			name: "missing credential sentinel",
			err:  ErrNoCredential,
			want: ClassAuthMissing,
		},
		{
			name: "wrapped missing credential",
			err:  fmt.Errorf("check grammar: %w", ErrNoCredential),
			want: ClassAuthMissing,
		},
		{
			name: "401 structured error",
			err:  &openai.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "Incorrect API key provided"},
			want: ClassPermissionDenied,
		},
		{
			name: "403 structured error",
			err:  &openai.APIError{HTTPStatusCode: http.StatusForbidden, Message: "forbidden"},
			want: ClassPermissionDenied,
		},
		{
			name: "429 structured error",
			err:  &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "Rate limit reached"},
			want: ClassRateLimited,
		},
		{
			name: "status wins over message text",
			// A 429 whose body mentions overload is rate-limited: the
			// structured code takes precedence over substrings.
			err:  &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "the engine is overloaded"},
			want: ClassRateLimited,
		},
		{
			name: "503 structured error",
			err:  &openai.APIError{HTTPStatusCode: http.StatusServiceUnavailable, Message: "The server is overloaded"},
			want: ClassServiceUnavailable,
		},
		{
			name: "500 structured error",
			err:  &openai.APIError{HTTPStatusCode: http.StatusInternalServerError, Message: "internal"},
			want: ClassServiceUnavailable,
		},
		{
			name: "transport-level request error",
			err:  &openai.RequestError{HTTPStatusCode: http.StatusBadGateway, Err: errors.New("bad gateway")},
			want: ClassServiceUnavailable,
		},
		{
			name: "plain-text rate limit",
			err:  errors.New("request failed: rate limit exceeded, slow down"),
			want: ClassRateLimited,
		},
		{
			name: "plain-text quota",
			err:  errors.New("you have exceeded your quota"),
			want: ClassRateLimited,
		},
		{
			name: "plain-text overloaded",
			err:  errors.New("model overloaded, try again later"),
			want: ClassServiceUnavailable,
		},
		{
			name: "plain-text invalid key",
			err:  errors.New("API key not valid. Please pass a valid API key."),
			want: ClassPermissionDenied,
		},
		{
			name: "unclassified error",
			err:  errors.New("unexpected EOF"),
			want: ClassOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClass_Retryable(t *testing.T) {
	retryable := map[Class]bool{
		ClassAuthMissing:        false,
		ClassPermissionDenied:   false,
		ClassRateLimited:        true,
		ClassServiceUnavailable: true,
		ClassOther:              false,
	}
	for class, want := range retryable {
		if got := class.Retryable(); got != want {
			t.Errorf("%v.Retryable() = %v, want %v", class, got, want)
		}
	}
}
