// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides terminal output styling for the quill CLI.
package ux

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// quill color palette - ink blues and parchment accents
var (
	ColorInk       = lipgloss.Color("#3B6EA5") // primary brand blue
	ColorInkBright = lipgloss.Color("#5C9AD6") // highlights
	ColorParchment = lipgloss.Color("#E8DCC0") // subtle accents
	ColorSuccess   = lipgloss.Color("#3FBF8F") // green for clean results
	ColorWarning   = lipgloss.Color("#F4D03F") // gold for suggestions
	ColorError     = lipgloss.Color("#E74C3C") // red for errors
	ColorMuted     = lipgloss.Color("#6B7A8A") // slate for secondary text
)

// Styles provides pre-configured lipgloss styles.
var Styles = struct {
	Title     lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style
	Box       lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorInkBright),
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorMuted),
	Success:   lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Foreground(ColorInkBright).Bold(true),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorInk).
		Padding(0, 1),
}

// styled reports whether stdout is a terminal that should receive
// styled output. Plain output keeps pipes and redirects clean.
func styled() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// render applies style only when stdout is a terminal.
func render(style lipgloss.Style, text string) string {
	if !styled() {
		return text
	}
	return style.Render(text)
}

// Title prints a section heading.
func Title(text string) {
	fmt.Println(render(Styles.Title, text))
}

// Success prints a positive status line.
func Success(format string, args ...any) {
	fmt.Println(render(Styles.Success, "✓ "+fmt.Sprintf(format, args...)))
}

// Warn prints a cautionary status line.
func Warn(format string, args ...any) {
	fmt.Println(render(Styles.Warning, "⚠ "+fmt.Sprintf(format, args...)))
}

// Fail prints an error status line.
func Fail(format string, args ...any) {
	fmt.Println(render(Styles.Error, "✗ "+fmt.Sprintf(format, args...)))
}

// Muted prints secondary information.
func Muted(format string, args ...any) {
	fmt.Println(render(Styles.Muted, fmt.Sprintf(format, args...)))
}

// Plain prints an unstyled line.
func Plain(format string, args ...any) {
	fmt.Println(fmt.Sprintf(format, args...))
}

// Boxed prints text in a rounded border when styling is on.
func Boxed(text string) {
	if !styled() {
		fmt.Println(text)
		return
	}
	fmt.Println(Styles.Box.Render(text))
}
