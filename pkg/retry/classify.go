// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package retry

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Class is the failure classification used to decide retry behavior.
//
// Every remote failure maps to exactly one Class. Classification drives
// the retry loop in Do: transient classes are retried with backoff,
// terminal classes fail immediately.
type Class int

const (
	// ClassAuthMissing means no credential is configured at all.
	// Terminal. The user must configure a key before anything can work.
	ClassAuthMissing Class = iota

	// ClassPermissionDenied means the configured credential was rejected
	// by the remote service. Terminal, but re-signaled as
	// ErrCredentialRejected so callers can redirect the user to
	// credential configuration rather than showing a generic failure.
	ClassPermissionDenied

	// ClassRateLimited means the service throttled the request. Transient.
	ClassRateLimited

	// ClassServiceUnavailable means the service is overloaded or down.
	// Transient.
	ClassServiceUnavailable

	// ClassOther is everything unclassified. Terminal.
	ClassOther
)

// String returns the human-readable name of the class.
func (c Class) String() string {
	switch c {
	case ClassAuthMissing:
		return "auth_missing"
	case ClassPermissionDenied:
		return "permission_denied"
	case ClassRateLimited:
		return "rate_limited"
	case ClassServiceUnavailable:
		return "service_unavailable"
	default:
		return "other"
	}
}

// Retryable reports whether the class is transient.
func (c Class) Retryable() bool {
	return c == ClassRateLimited || c == ClassServiceUnavailable
}

var (
	// ErrNoCredential is returned by callers before any network call when
	// no remote-service key is configured. Always classifies as
	// ClassAuthMissing.
	ErrNoCredential = errors.New("no API key configured")

	// ErrCredentialRejected wraps permission failures so the CLI can point
	// the user at credential configuration instead of a generic error.
	ErrCredentialRejected = errors.New("API key rejected by the service")
)

// failure is the normalized error record classification operates on.
//
// The remote collaborator surfaces errors as structured API errors,
// transport errors, or plain text interchangeably, so the record is
// assembled once per failure and all predicates run against it.
type failure struct {
	status int
	text   string // lowercased message text
}

// normalize assembles the failure record from whatever shape err carries.
func normalize(err error) failure {
	f := failure{text: strings.ToLower(err.Error())}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		f.status = apiErr.HTTPStatusCode
		f.text = strings.ToLower(apiErr.Message)
		return f
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		f.status = reqErr.HTTPStatusCode
	}

	return f
}

// Classify maps a remote failure onto exactly one Class.
//
// # Description
//
// Predicates run in a fixed precedence order so heterogeneous error
// shapes cannot double-match:
//
//	auth missing > permission denied > rate limited > service unavailable > other
//
// Structured status codes are checked before message substrings, since
// codes are the stronger signal. A 429 whose body also says "overloaded"
// is rate-limited, not unavailable.
//
// # Inputs
//
//   - err: The failure from the remote operation. Must not be nil.
//
// # Outputs
//
//   - Class: The single classification for this failure.
func Classify(err error) Class {
	if errors.Is(err, ErrNoCredential) {
		return ClassAuthMissing
	}
	if errors.Is(err, ErrCredentialRejected) {
		return ClassPermissionDenied
	}

	f := normalize(err)

	switch f.status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ClassPermissionDenied
	case http.StatusTooManyRequests:
		return ClassRateLimited
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return ClassServiceUnavailable
	}

	// No usable status; fall back to known message substrings.
	switch {
	case strings.Contains(f.text, "api key not valid"),
		strings.Contains(f.text, "invalid api key"),
		strings.Contains(f.text, "incorrect api key"),
		strings.Contains(f.text, "permission denied"):
		return ClassPermissionDenied
	case strings.Contains(f.text, "rate limit"),
		strings.Contains(f.text, "quota"),
		strings.Contains(f.text, "429"):
		return ClassRateLimited
	case strings.Contains(f.text, "overloaded"),
		strings.Contains(f.text, "unavailable"),
		strings.Contains(f.text, "503"):
		return ClassServiceUnavailable
	}

	return ClassOther
}
