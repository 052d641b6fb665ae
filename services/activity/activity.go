// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package activity derives calendar and category statistics from the
// history log. Pure functions of the store's history record; nothing
// here reads or writes storage.
package activity

import (
	"time"

	"github.com/AleutianAI/quill/services/store"
)

// WeeksInGrid is the fixed trailing window of the day grid.
const WeeksInGrid = 52

// Day is one cell of the calendar grid.
type Day struct {
	// Date is the local calendar date (midnight, local zone).
	Date time.Time

	// Count is the number of history entries on this date.
	Count int

	// Future marks dates after today. Future days always have Count 0
	// and render distinctly from real zero-activity days.
	Future bool
}

// Week is one column of the grid, Sunday through Saturday.
type Week [7]Day

// Grid is the 52-week calendar, oldest week first.
type Grid struct {
	Weeks [WeeksInGrid]Week
}

// dateKey collapses a time to its local calendar date.
func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// BucketByDay buckets entries into a 52-week calendar grid ending on
// the current week.
//
// # Description
//
// Weeks run Sunday through Saturday. The grid's last cell is the
// Saturday of now's week, so it spans exactly 52x7 days and the tail
// of the final week may lie in the future. An entry lands in the cell
// whose local calendar date matches its timestamp; entries outside the
// window are ignored.
//
// # Inputs
//
//   - entries: History entries in any order.
//   - now: The reference instant, usually time.Now(). Its location
//     decides what "local calendar date" means.
//
// # Outputs
//
//   - Grid: The populated calendar.
func BucketByDay(entries []store.HistoryEntry, now time.Time) Grid {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	// Saturday of the current week is the grid's last day.
	end := today.AddDate(0, 0, 6-int(today.Weekday()))
	start := end.AddDate(0, 0, -(WeeksInGrid*7 - 1))

	counts := make(map[string]int, len(entries))
	for _, e := range entries {
		ts := time.UnixMilli(e.Timestamp).In(loc)
		counts[dateKey(ts)]++
	}

	var grid Grid
	day := start
	for w := 0; w < WeeksInGrid; w++ {
		for d := 0; d < 7; d++ {
			cell := Day{Date: day}
			if day.After(today) {
				cell.Future = true
			} else {
				cell.Count = counts[dateKey(day)]
			}
			grid.Weeks[w][d] = cell
			day = day.AddDate(0, 0, 1)
		}
	}
	return grid
}

// Breakdown is the per-category share of all history entries.
type Breakdown struct {
	Total       int
	Counts      map[store.Category]int
	Proportions map[store.Category]float64
}

// BucketByCategory counts entries per category. The three counts sum
// to the total entry count; proportions are count/total, all zero when
// the history is empty.
func BucketByCategory(entries []store.HistoryEntry) Breakdown {
	b := Breakdown{
		Total:       len(entries),
		Counts:      make(map[store.Category]int, 3),
		Proportions: make(map[store.Category]float64, 3),
	}

	categories := []store.Category{
		store.CategoryGrammar,
		store.CategoryRewrite,
		store.CategoryDictionary,
	}
	for _, c := range categories {
		b.Counts[c] = 0
		b.Proportions[c] = 0
	}

	for _, e := range entries {
		b.Counts[e.Category]++
	}

	if b.Total > 0 {
		for _, c := range categories {
			b.Proportions[c] = float64(b.Counts[c]) / float64(b.Total)
		}
	}
	return b
}
