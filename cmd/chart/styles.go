package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/rxtech-lab/argo-dashboard/internal/engine"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	upStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	downStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	panelStyle = lipgloss.NewStyle().PaddingRight(2)
)

// FormatSummary renders the header line with an arrow for the direction of the last change.
func FormatSummary(symbol string, summary engine.Summary) string {
	line := fmt.Sprintf("%s %s", symbol, summary.Close.StringFixed(2))

	if !summary.ChangeAmount.Valid {
		return line
	}

	change := summary.ChangeAmount.Decimal.StringFixed(2)
	if summary.ChangePercent.Valid {
		change += fmt.Sprintf(" (%s%%)", summary.ChangePercent.Decimal.StringFixed(2))
	}

	switch summary.Direction {
	case engine.DirectionUp:
		return line + " " + upStyle.Render("▲ +"+change)
	case engine.DirectionDown:
		return line + " " + downStyle.Render("▼ "+change)
	default:
		return line + " " + change
	}
}
