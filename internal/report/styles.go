package report

import "github.com/charmbracelet/lipgloss"

var (
	Title    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ffff"))
	Subtle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	Value    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ccff"))
	Negative = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff8844"))
	Invalid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688")).Italic(true)

	// Header underlines column titles
	Header = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#888899")).
		BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(lipgloss.Color("#444466"))
)
