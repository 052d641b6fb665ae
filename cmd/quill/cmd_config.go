// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/quill/pkg/ux"
)

// runConfigKeySet reads the API key from stdin. Keys never appear in
// argv, shell history, or log output.
func runConfigKeySet(cmd *cobra.Command, _ []string) error {
	ux.Muted("Paste your API key and press Enter:")

	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("read key from stdin: %w", err)
	}
	key := strings.TrimSpace(line)
	if key == "" {
		return fmt.Errorf("no key provided")
	}

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.store.SetCredential(key); err != nil {
		ux.Fail("Could not store the key.")
		return errReported
	}

	app.logger.Info("credential updated", "key_present", true)
	ux.Success("API key stored.")
	return nil
}

func runConfigKeyClear(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.store.ClearCredential(); err != nil {
		ux.Fail("Could not remove the key.")
		return errReported
	}

	app.logger.Info("credential updated", "key_present", false)
	ux.Success("API key removed.")
	return nil
}
