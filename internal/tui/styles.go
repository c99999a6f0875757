package tui

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("#7AA2F7")
	successColor = lipgloss.Color("#4ECDC4")
	warningColor = lipgloss.Color("#FFE66D")
	errorColor   = lipgloss.Color("#FF6B6B")
	subtleColor  = lipgloss.Color("#666666")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	subtleStyle = lipgloss.NewStyle().
			Foreground(subtleColor)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	columnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#C0CAF5"))

	selectedColumnStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#1A1B26")).
				Background(primaryColor)

	skipColumnStyle = lipgloss.NewStyle().
			Foreground(subtleColor)

	boundaryStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	mappedStyle = lipgloss.NewStyle().
			Foreground(successColor)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(primaryColor)
)
