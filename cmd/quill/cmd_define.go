// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/quill/pkg/ux"
	"github.com/AleutianAI/quill/services/dictionary"
)

func runDefine(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	entries, err := app.Define(cmd.Context(), args[0])
	if errors.Is(err, dictionary.ErrNotFound) {
		// A miss is a normal outcome, not a failure.
		ux.Muted("No definition found for %q.", args[0])
		return nil
	}
	if err != nil {
		return reportFailure(err)
	}

	for _, entry := range entries {
		title := entry.Word
		if entry.Phonetic != "" {
			title += "  " + entry.Phonetic
		}
		ux.Title(title)
		for _, meaning := range entry.Meanings {
			ux.Muted("%s", meaning.PartOfSpeech)
			for i, def := range meaning.Definitions {
				ux.Plain("  %d. %s", i+1, def.Text)
				if def.Example != "" {
					ux.Muted("     e.g. %s", def.Example)
				}
			}
		}
		if entry.Audio != "" {
			ux.Muted("audio: %s", entry.Audio)
		}
		ux.Plain("")
	}
	return nil
}
