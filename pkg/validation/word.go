// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation for user-provided
// values that end up in request paths or storage keys.
package validation

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// wordPattern matches dictionary lookup terms.
// Allows: letters, internal hyphens (mother-in-law) and apostrophes (don't).
var wordPattern = regexp.MustCompile(`^[a-zA-Z]+(?:['-][a-zA-Z]+)*$`)

// maxWordLen caps lookup terms; nothing in a dictionary is longer.
const maxWordLen = 64

// ValidateWord validates a dictionary lookup term before it is placed
// in a request path.
//
// Valid words:
//   - 1-64 characters
//   - Letters a-z / A-Z
//   - Internal hyphens and apostrophes (mother-in-law, don't)
//
// Returns an error describing the first violated rule.
func ValidateWord(word string) error {
	if word == "" {
		return fmt.Errorf("word cannot be empty")
	}
	if utf8.RuneCountInString(word) > maxWordLen {
		return fmt.Errorf("word exceeds %d characters", maxWordLen)
	}
	if !wordPattern.MatchString(word) {
		return fmt.Errorf("word %q contains invalid characters", word)
	}
	return nil
}
