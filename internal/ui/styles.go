package ui

import (
	"regexp"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
// - Default (white/black): Primary text
// - Accent (soft teal #2DD4BF): Highlights, paths, command names
// - Muted (gray): Secondary info, counts
// - No colored success/error/warning - use unicode symbols only

const defaultAccent = "#2DD4BF"

var (
	// Accent style for file paths, command names, highlights
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(defaultAccent))

	// Muted style for secondary info, hints, counts
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	// Bold style for emphasis
	Bold = lipgloss.NewStyle().Bold(true)

	// AccentBold combines accent color with bold
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color(defaultAccent)).Bold(true)
)

var accentColor = defaultAccent

var validAccent = regexp.MustCompile(`^(\d{1,3}|#[0-9a-fA-F]{6})$`)

// ConfigureTheme overrides the accent color from config.
// Accepts ANSI color codes ("0" to "255") or hex colors ("#RRGGBB").
// Invalid values are ignored and the default accent is kept.
func ConfigureTheme(accent string) {
	if accent == "" || !validAccent.MatchString(accent) {
		return
	}

	accentColor = accent
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(accent))
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color(accent)).Bold(true)
}

// AccentColor returns the configured accent color, if any.
func AccentColor() (string, bool) {
	if accentColor == "" {
		return "", false
	}
	return accentColor, true
}
