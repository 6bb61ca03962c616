package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226"))

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	// Rows whose PSS moved more than 10 MiB in one cycle stand out.
	hotRowStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255"))

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)
