// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package coordinator suppresses stale completions of overlapping
// remote operations.
//
// Remote calls are not cancellable at the transport level, so
// correctness is achieved by making stale completions inert instead of
// aborting them: every user-initiated action mints a generation token,
// and any continuation must verify its token is still active
// immediately before each observable side effect. Starting a new action
// of the same class supersedes the previous token, so at most one
// outcome per action class can ever commit.
package coordinator

import "sync"

// ActionClass is a category of user-initiated remote operation that
// admits at most one winning outcome at a time.
type ActionClass string

const (
	// ClassGrammar covers grammar-check requests.
	ClassGrammar ActionClass = "grammar"

	// ClassRewrite covers style-rewrite requests.
	ClassRewrite ActionClass = "rewrite"
)

// sentinelSeq never equals a minted sequence number; sequences start at 1.
const sentinelSeq uint64 = 0

// Token identifies one generation of an action class. Opaque to
// callers; compare only through Coordinator.IsActive.
type Token struct {
	class ActionClass
	seq   uint64
}

// Class returns the action class this token belongs to.
func (t Token) Class() ActionClass { return t.class }

// Coordinator mints generation tokens and tracks the single active
// token per action class.
//
// # Thread Safety
//
// Safe for concurrent use.
type Coordinator struct {
	mu     sync.Mutex
	next   map[ActionClass]uint64 // last minted sequence per class
	active map[ActionClass]uint64 // currently active sequence per class
}

// New creates an empty Coordinator with no active tokens.
func New() *Coordinator {
	return &Coordinator{
		next:   make(map[ActionClass]uint64),
		active: make(map[ActionClass]uint64),
	}
}

// Begin mints a new token for class and records it as the sole active
// token for that class.
//
// The sequence is a per-class monotonic counter, not wall-clock time,
// so two actions started in the same instant still get distinct,
// strictly ordered tokens. Minting implicitly supersedes the previous
// token: its continuations will observe IsActive == false from this
// point on.
func (c *Coordinator) Begin(class ActionClass) Token {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.next[class]++
	seq := c.next[class]
	c.active[class] = seq
	return Token{class: class, seq: seq}
}

// IsActive reports whether tok is still the winning generation for its
// class.
//
// Continuations must call this immediately before every observable
// side effect, including secondary updates that follow a primary
// result, since time passes between the two.
func (c *Coordinator) IsActive(tok Token) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tok.seq == sentinelSeq {
		return false
	}
	return c.active[tok.class] == tok.seq
}

// Invalidate deactivates the current token for class without minting a
// new one. Used when the user clears input or explicitly stops: all
// in-flight continuations for the class silently no-op.
func (c *Coordinator) Invalidate(class ActionClass) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.active[class] = sentinelSeq
}
