package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

type theme struct {
	title    lipgloss.Style
	selected lipgloss.Style
	dim      lipgloss.Style
	status   lipgloss.Style
	warn     lipgloss.Style
	panel    lipgloss.Style
}

// newTheme picks colors for the requested mode. The terminal's background
// is only a fallback; Ctrl+Shift+L overrides it at runtime.
func newTheme(dark bool) theme {
	accent := lipgloss.Color("12")
	dimmed := lipgloss.Color("8")
	warn := lipgloss.Color("11")
	if !dark && !termenv.HasDarkBackground() {
		accent = lipgloss.Color("4")
		dimmed = lipgloss.Color("7")
		warn = lipgloss.Color("3")
	}
	return theme{
		title:    lipgloss.NewStyle().Bold(true),
		selected: lipgloss.NewStyle().Foreground(accent).Bold(true),
		dim:      lipgloss.NewStyle().Foreground(dimmed),
		status:   lipgloss.NewStyle().Foreground(dimmed),
		warn:     lipgloss.NewStyle().Foreground(warn),
		panel:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}
