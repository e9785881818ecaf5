package tui

import "github.com/charmbracelet/lipgloss"

const maxCardWidth = 76

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1, 2)

	primaryStyle   = lipgloss.NewStyle().Bold(true)
	secondaryStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("252"))
	referenceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Align(lipgloss.Right)

	toastStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)
