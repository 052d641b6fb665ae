// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bufio"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/quill/pkg/ux"
	"github.com/AleutianAI/quill/services/coordinator"
)

// runSession drives the interactive loop. Each submitted line starts a
// grammar check that supersedes the previous one; a slow check whose
// line has already been replaced produces no output at all. An empty
// line clears the input, invalidating any check still in flight.
func runSession(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ux.Title("quill session")
	ux.Muted("Type text and press Enter to check it. Empty line clears,")
	ux.Muted("`quit` exits. A new line cancels the previous check.")

	ctx := cmd.Context()
	var wg sync.WaitGroup
	var printMu sync.Mutex

	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "quit" || line == "exit" {
			break
		}
		if line == "" {
			// Cleared input: whatever is in flight must not land.
			app.coord.Invalidate(coordinator.ClassGrammar)
			continue
		}

		// The token is minted here, on the submission path, so token
		// order matches the order lines were entered even when their
		// goroutines are scheduled out of order.
		tok := app.coord.Begin(coordinator.ClassGrammar)
		wg.Add(1)
		go func(text string) {
			defer wg.Done()
			result, err := app.CheckGrammarWith(ctx, tok, text)
			if result == nil && err == nil {
				// Superseded while in flight; stay silent.
				return
			}

			printMu.Lock()
			defer printMu.Unlock()
			if err != nil {
				ux.Fail("%s", userMessage(err))
				return
			}
			renderGrammar(result)
		}(line)
	}

	// Let the final check finish before tearing down the store.
	wg.Wait()
	if err := scanner.Err(); err != nil {
		return err
	}
	ux.Muted("Session ended.")
	return nil
}
