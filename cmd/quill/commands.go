// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	rewriteStyle string
	verboseLogs  bool
	outputPath   string

	rootCmd = &cobra.Command{
		Use:   "quill",
		Short: "A writing assistant for grammar checks, rewrites and lookups",
		Long: `Quill sends your text to a generative language service for grammar
analysis and style rewriting, looks up words in a dictionary, and keeps
a local history of everything you have checked.`,
		// Errors are reported once, by main or by the handler itself.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	checkCmd = &cobra.Command{
		Use:   "check [text]",
		Short: "Check text for grammar, spelling and punctuation problems",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCheck, // Defined in cmd_check.go
	}

	rewriteCmd = &cobra.Command{
		Use:   "rewrite [text]",
		Short: "Rewrite text in a different style",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runRewrite, // Defined in cmd_rewrite.go
	}

	defineCmd = &cobra.Command{
		Use:   "define [word]",
		Short: "Look up a word in the dictionary",
		Args:  cobra.ExactArgs(1),
		RunE:  runDefine, // Defined in cmd_define.go
	}

	sessionCmd = &cobra.Command{
		Use:   "session",
		Short: "Interactive checking session (each line supersedes the last)",
		Args:  cobra.NoArgs,
		RunE:  runSession, // Defined in session_runner.go
	}

	// --- History / Statistics ---
	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Show the check history, newest first",
		Args:  cobra.NoArgs,
		RunE:  runHistory, // Defined in cmd_history.go
	}

	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show grammar-check statistics",
		Args:  cobra.NoArgs,
		RunE:  runStats, // Defined in cmd_history.go
	}

	activityCmd = &cobra.Command{
		Use:   "activity",
		Short: "Show the 52-week activity calendar and category breakdown",
		Args:  cobra.NoArgs,
		RunE:  runActivity, // Defined in cmd_history.go
	}

	// --- Data Management ---
	dataCmd = &cobra.Command{
		Use:   "data",
		Short: "Export, import or clear locally stored data",
	}
	dataExportCmd = &cobra.Command{
		Use:   "export",
		Short: "Export history and preferences to a JSON bundle",
		Args:  cobra.NoArgs,
		RunE:  runDataExport, // Defined in cmd_data.go
	}
	dataImportCmd = &cobra.Command{
		Use:   "import [file]",
		Short: "Merge a previously exported bundle into local history",
		Args:  cobra.ExactArgs(1),
		RunE:  runDataImport, // Defined in cmd_data.go
	}
	dataClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Delete the entire local history",
		Args:  cobra.NoArgs,
		RunE:  runDataClear, // Defined in cmd_data.go
	}

	// --- Credential Configuration ---
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage quill configuration",
	}
	configKeyCmd = &cobra.Command{
		Use:   "key",
		Short: "Manage the language service API key",
	}
	configKeySetCmd = &cobra.Command{
		Use:   "set",
		Short: "Store the API key (read from stdin, not from arguments)",
		Args:  cobra.NoArgs,
		RunE:  runConfigKeySet, // Defined in cmd_config.go
	}
	configKeyClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE:  runConfigKeyClear, // Defined in cmd_config.go
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseLogs, "verbose", "v", false, "enable debug logging")

	rewriteCmd.Flags().StringVarP(&rewriteStyle, "style", "s", "formal",
		"rewrite style (formal, casual, concise, elaborate)")
	dataExportCmd.Flags().StringVarP(&outputPath, "output", "o", "quill-export.json",
		"path of the export bundle to write")

	rootCmd.AddCommand(checkCmd, rewriteCmd, defineCmd, sessionCmd,
		historyCmd, statsCmd, activityCmd, dataCmd, configCmd)
	dataCmd.AddCommand(dataExportCmd, dataImportCmd, dataClearCmd)
	configCmd.AddCommand(configKeyCmd)
	configKeyCmd.AddCommand(configKeySetCmd, configKeyClearCmd)
}
