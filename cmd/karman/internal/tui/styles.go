package tui

import "github.com/charmbracelet/lipgloss"

var (
	userPrefixStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4")) // blue
	answerPrefixStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")) // cyan
	sectionStyle      = lipgloss.NewStyle().Bold(true)
	changeStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // yellow
	successStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // green
	spinnerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("5")) // magenta
	dimStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	errorBlockStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("1"))
)
