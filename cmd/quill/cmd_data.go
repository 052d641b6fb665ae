// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/quill/pkg/ux"
	"github.com/AleutianAI/quill/services/store"
)

func runDataExport(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	bundle, err := app.store.ExportSnapshot(app.cfg.Theme, app.cfg.ColorScheme)
	if err != nil {
		return reportFailure(err)
	}

	if err := os.WriteFile(outputPath, bundle, 0o600); err != nil {
		ux.Fail("Could not write %s.", outputPath)
		return errReported
	}

	ux.Success("Exported to %s", outputPath)
	return nil
}

func runDataImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		ux.Fail("Could not read %s.", args[0])
		return errReported
	}

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.store.ImportSnapshot(data)
	if errors.Is(err, store.ErrImportMalformed) {
		ux.Fail("That file is not a quill export bundle. Nothing was changed.")
		return errReported
	}
	if err != nil {
		return reportFailure(err)
	}

	if result.Imported == 0 {
		ux.Muted("Nothing new to import; all entries were already present.")
	} else {
		ux.Success("Imported %d new entries.", result.Imported)
	}

	// Recovered presentation preferences are written back to the
	// config file so the next run picks them up.
	if result.Theme != "" || result.ColorScheme != "" {
		cfg := app.cfg
		if result.Theme != "" {
			cfg.Theme = result.Theme
		}
		if result.ColorScheme != "" {
			cfg.ColorScheme = result.ColorScheme
		}
		if err := saveConfig(cfg); err != nil {
			app.logger.Warn("could not persist imported preferences", "error", err)
		} else {
			ux.Muted("Restored theme %q, color scheme %q.", cfg.Theme, cfg.ColorScheme)
		}
	}
	return nil
}

func runDataClear(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.store.ClearHistory(); err != nil {
		return reportFailure(err)
	}

	ux.Success("History cleared.")
	return nil
}
