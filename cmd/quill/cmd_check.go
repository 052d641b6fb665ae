// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/quill/pkg/ux"
	"github.com/AleutianAI/quill/services/language"
)

func runCheck(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	text := strings.Join(args, " ")
	result, err := app.CheckGrammar(cmd.Context(), text)
	if err != nil {
		return reportFailure(err)
	}
	if result == nil {
		// Superseded; nothing to show.
		return nil
	}

	renderGrammar(result)
	return nil
}

func renderGrammar(result *language.GrammarResult) {
	if result.Perfect() {
		ux.Success("No problems found.")
		return
	}

	ux.Title(fmt.Sprintf("%d error(s), %d suggestion(s)",
		result.ErrorCount(), result.SuggestionCount()))
	for _, issue := range result.Issues {
		line := fmt.Sprintf("%q: %s", issue.Span, issue.Message)
		if issue.Replacement != "" {
			line += fmt.Sprintf(" → %q", issue.Replacement)
		}
		if issue.Kind == language.KindCritical {
			ux.Fail("%s", line)
		} else {
			ux.Warn("%s", line)
		}
	}

	ux.Plain("")
	ux.Title("Corrected text")
	ux.Boxed(result.CorrectedText)
}
