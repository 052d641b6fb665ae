// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/quill/pkg/ux"
	"github.com/AleutianAI/quill/services/activity"
	"github.com/AleutianAI/quill/services/store"
)

func runHistory(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	entries, err := app.store.History()
	if err != nil {
		return reportFailure(err)
	}
	if len(entries) == 0 {
		ux.Muted("No history yet. Run `quill check` to get started.")
		return nil
	}

	for _, e := range entries {
		ts := time.UnixMilli(e.Timestamp).Local().Format("2006-01-02 15:04")
		label := string(e.Category)
		if e.RewriteStyle != "" {
			label += "/" + e.RewriteStyle
		}

		switch {
		case e.Category == store.CategoryGrammar && e.IsPerfect:
			ux.Success("%s  [%s]  %s", ts, label, e.TextSnippet)
		case e.Category == store.CategoryGrammar:
			ux.Warn("%s  [%s]  %s  (%d errors, %d suggestions)",
				ts, label, e.TextSnippet, e.ErrorCount, e.SuggestionCount)
		default:
			ux.Plain("%s  [%s]  %s", ts, label, e.TextSnippet)
		}
	}
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	stats, err := app.store.ComputeStats()
	if err != nil {
		return reportFailure(err)
	}
	entries, err := app.store.History()
	if err != nil {
		return reportFailure(err)
	}
	current, best := perfectStreaks(entries)

	ux.Title("Grammar statistics")
	ux.Plain("Checks run:    %d", stats.TotalChecks)
	ux.Plain("Errors found:  %d", stats.TotalErrors)
	ux.Plain("Perfect runs:  %d", stats.PerfectRuns)
	ux.Plain("Accuracy:      %d%%", stats.AccuracyRate)
	ux.Plain("Streak:        %d (best %d)", current, best)
	return nil
}

// perfectStreaks derives the current and best runs of consecutive
// perfect grammar checks. Entries arrive newest first; the current
// streak is the unbroken run at the newest end, the best streak is the
// longest run anywhere in the log. Non-grammar entries do not break a
// streak; they are simply not checks.
func perfectStreaks(entries []store.HistoryEntry) (current, best int) {
	run := 0
	broken := false
	for _, e := range entries {
		if e.Category != store.CategoryGrammar {
			continue
		}
		if !e.IsPerfect {
			broken = true
			run = 0
			continue
		}
		run++
		if run > best {
			best = run
		}
		if !broken {
			current = run
		}
	}
	return current, best
}

func runActivity(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	entries, err := app.store.History()
	if err != nil {
		return reportFailure(err)
	}

	grid := activity.BucketByDay(entries, time.Now())
	ux.Title("Activity (last 52 weeks)")
	renderGrid(grid)

	breakdown := activity.BucketByCategory(entries)
	ux.Plain("")
	ux.Title("By category")
	if breakdown.Total == 0 {
		ux.Muted("No activity recorded.")
		return nil
	}
	for _, c := range []store.Category{
		store.CategoryGrammar, store.CategoryRewrite, store.CategoryDictionary,
	} {
		ux.Plain("%-12s %4d  (%.0f%%)",
			string(c), breakdown.Counts[c], 100*breakdown.Proportions[c])
	}
	return nil
}

// cellRune maps a day to its calendar glyph. Future days render as
// blanks so they read differently from real zero-activity days.
func cellRune(d activity.Day) string {
	switch {
	case d.Future:
		return " "
	case d.Count == 0:
		return "·"
	case d.Count <= 2:
		return "▪"
	case d.Count <= 5:
		return "◆"
	default:
		return "█"
	}
}

// renderGrid prints the calendar as seven rows (Sunday first), one
// column per week, oldest week on the left.
func renderGrid(grid activity.Grid) {
	labels := [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	for d := 0; d < 7; d++ {
		var row strings.Builder
		for w := 0; w < activity.WeeksInGrid; w++ {
			row.WriteString(cellRune(grid.Weeks[w][d]))
		}
		ux.Plain("%s %s", labels[d], row.String())
	}
}
