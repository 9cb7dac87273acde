// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides rich terminal output styling for the MinBench CLI.
package ux

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Aleutian color palette - deep ocean teals and arctic waters
var (
	ColorTealBright  = lipgloss.Color("#2CD7C7") // Bright teal - highlights, success
	ColorTealPrimary = lipgloss.Color("#20B9B4") // Primary teal - main brand color
	ColorTealDeep    = lipgloss.Color("#16858E") // Deep teal - borders, accents
	ColorSlate       = lipgloss.Color("#2C4A54") // Slate - muted text, borders

	ColorSuccess = lipgloss.Color("#2CD7C7")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
)

// ColorMode decides whether output carries ANSI styling.
type ColorMode string

const (
	// ColorAuto styles only when the writer is a terminal.
	ColorAuto ColorMode = "auto"
	// ColorAlways styles unconditionally.
	ColorAlways ColorMode = "always"
	// ColorNever emits plain text.
	ColorNever ColorMode = "never"
)

// ParseColorMode converts "auto", "always" or "never". Empty means auto.
func ParseColorMode(s string) (ColorMode, error) {
	switch ColorMode(s) {
	case "", ColorAuto:
		return ColorAuto, nil
	case ColorAlways, ColorNever:
		return ColorMode(s), nil
	default:
		return "", fmt.Errorf("unknown color mode %q", s)
	}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Icon provides themed status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconArrow   Icon = "→"
	IconBullet  Icon = "•"
)

// Theme holds lipgloss styles bound to one output writer.
//
// Description:
//
//	Styles are created from a renderer for the writer rather than the
//	process-wide default renderer, so a report written to a file or a
//	buffer gets its own color decision.
//
// Thread Safety: Immutable after creation; safe for concurrent use.
type Theme struct {
	renderer *lipgloss.Renderer
	colored  bool

	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style
	Box       lipgloss.Style
	Border    lipgloss.Style
}

// NewTheme creates a Theme for w.
//
// Inputs:
//   - w: Destination writer. Terminal detection only works for *os.File.
//   - mode: ColorAuto styles when w is a terminal.
//
// Example:
//
//	theme := ux.NewTheme(os.Stdout, ux.ColorAuto)
//	fmt.Fprintln(os.Stdout, theme.Title.Render("MinBench"))
func NewTheme(w io.Writer, mode ColorMode) *Theme {
	r := lipgloss.NewRenderer(w)

	colored := false
	switch mode {
	case ColorAlways:
		r.SetColorProfile(termenv.TrueColor)
		colored = true
	case ColorNever:
		r.SetColorProfile(termenv.Ascii)
	default:
		if IsTerminal(w) {
			colored = r.ColorProfile() != termenv.Ascii
		} else {
			r.SetColorProfile(termenv.Ascii)
		}
	}

	return &Theme{
		renderer:  r,
		colored:   colored,
		Title:     r.NewStyle().Bold(true).Foreground(ColorTealBright),
		Subtitle:  r.NewStyle().Foreground(ColorTealPrimary),
		Bold:      r.NewStyle().Bold(true),
		Muted:     r.NewStyle().Foreground(ColorSlate),
		Success:   r.NewStyle().Foreground(ColorSuccess),
		Warning:   r.NewStyle().Foreground(ColorWarning),
		Error:     r.NewStyle().Foreground(ColorError),
		Highlight: r.NewStyle().Foreground(ColorTealBright).Bold(true),
		Box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorTealDeep).
			Padding(0, 1),
		Border: r.NewStyle().Foreground(ColorTealDeep),
	}
}

// Colored reports whether the theme emits ANSI styling.
func (t *Theme) Colored() bool {
	return t.colored
}

// NewStyle returns an empty style bound to the theme's renderer.
func (t *Theme) NewStyle() lipgloss.Style {
	return t.renderer.NewStyle()
}

// Icon returns the icon with appropriate styling
func (t *Theme) Icon(i Icon) string {
	switch i {
	case IconSuccess:
		return t.Success.Render(string(i))
	case IconWarning:
		return t.Warning.Render(string(i))
	case IconError:
		return t.Error.Render(string(i))
	default:
		return string(i)
	}
}

// Line helpers

// SuccessLine formats a success message with checkmark
func (t *Theme) SuccessLine(text string) string {
	return fmt.Sprintf("%s %s", t.Icon(IconSuccess), t.Success.Render(text))
}

// WarningLine formats a warning message
func (t *Theme) WarningLine(text string) string {
	return fmt.Sprintf("%s %s", t.Icon(IconWarning), t.Warning.Render(text))
}

// ErrorLine formats an error message
func (t *Theme) ErrorLine(text string) string {
	return fmt.Sprintf("%s %s", t.Icon(IconError), t.Error.Render(text))
}

// InfoLine formats an informational message behind a muted gutter
func (t *Theme) InfoLine(text string) string {
	return fmt.Sprintf("%s %s", t.Muted.Render("│"), text)
}

// BoxText renders title and content in a rounded box
func (t *Theme) BoxText(title, content string) string {
	return t.Box.Render(t.Title.Render(title) + "\n" + content)
}
