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

func runRewrite(cmd *cobra.Command, args []string) error {
	if !language.ValidStyle(rewriteStyle) {
		return fmt.Errorf("unknown style %q; available: %s",
			rewriteStyle, strings.Join(language.RewriteStyles(), ", "))
	}

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	text := strings.Join(args, " ")
	result, err := app.Rewrite(cmd.Context(), text, rewriteStyle)
	if err != nil {
		return reportFailure(err)
	}
	if result == nil {
		return nil
	}

	ux.Title(fmt.Sprintf("Rewritten (%s)", result.Style))
	ux.Boxed(result.Text)
	return nil
}
