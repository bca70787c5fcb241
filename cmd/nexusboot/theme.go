package main

import (
	"fmt"
	"io"

	"nexusboot/pkg/eventlog"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colors used for terminal output.
type Theme struct {
	Primary lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Muted   lipgloss.Color
}

// DefaultTheme returns the default nexusboot theme.
func DefaultTheme() Theme {
	return Theme{
		Primary: lipgloss.Color("12"),  // Blue
		Success: lipgloss.Color("10"),  // Green
		Warning: lipgloss.Color("11"),  // Yellow
		Error:   lipgloss.Color("9"),   // Red
		Muted:   lipgloss.Color("240"), // Gray
	}
}

// Check renders the completed-step mark.
func (t Theme) Check() string {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true).Render("✓")
}

// EventStyle picks the style for a journal event type.
func (t Theme) EventStyle(evType string) lipgloss.Style {
	switch evType {
	case eventlog.TypeRunFinished:
		return lipgloss.NewStyle().Foreground(t.Success)
	case eventlog.TypeRunFailed:
		return lipgloss.NewStyle().Foreground(t.Error)
	case eventlog.TypeRuleMatched:
		return lipgloss.NewStyle().Foreground(t.Primary)
	default:
		return lipgloss.NewStyle()
	}
}

// MutedStyle is used for timestamps and identifiers.
func (t Theme) MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Muted)
}

// Warnf writes a "warning:" line to w with the prefix in the warning color.
func (t Theme) Warnf(w io.Writer, format string, args ...any) {
	prefix := lipgloss.NewStyle().Foreground(t.Warning).Render("warning:")
	fmt.Fprintf(w, "%s %s\n", prefix, fmt.Sprintf(format, args...))
}
