package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/MikhailDrugie/se-attack-modeling/internal/model"
)

// This file centralizes the lipgloss styles used across the TUI.

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF")).
			Background(lipgloss.Color("63")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			PaddingLeft(2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Margin(1, 2)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				MarginBottom(1)

	detailTextStyle = lipgloss.NewStyle().
			MarginLeft(2)

	// Tone palette shared by scan statuses and severities.
	toneNeutralStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	toneInfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	toneSuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	toneWarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	toneErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// toneStyle maps a presentation tone to its terminal style. Total:
// anything unrecognized renders neutral.
func toneStyle(t model.Tone) lipgloss.Style {
	switch t {
	case model.ToneSuccess:
		return toneSuccessStyle
	case model.ToneWarning:
		return toneWarningStyle
	case model.ToneError:
		return toneErrorStyle
	case model.ToneInfo:
		return toneInfoStyle
	default:
		return toneNeutralStyle
	}
}

// renderStatus renders a scan status with its lifecycle color.
func renderStatus(s model.ScanStatus) string {
	return toneStyle(s.Tone()).Render(s.String())
}

// renderSeverity renders a severity with its urgency color.
func renderSeverity(s model.Severity) string {
	return toneStyle(s.Tone()).Render(s.String())
}
