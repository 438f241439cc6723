package main

import "github.com/charmbracelet/lipgloss"

var (
	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	styleWarning = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))

	styleName = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	styleDim = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)
