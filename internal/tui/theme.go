package tui

import "github.com/charmbracelet/lipgloss"

// Theme is one colour scheme of the UI
type Theme struct {
	Name string

	Title   lipgloss.Style
	Section lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Muted   lipgloss.Style
	Hint    lipgloss.Style
	Error   lipgloss.Style
	Active  lipgloss.Style
	Card    lipgloss.Style

	GaugeFill  string
	GaugeEmpty string
}

func darkTheme() Theme {
	return Theme{
		Name:       "dark",
		Title:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00d7ff")),
		Section:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffd700")),
		Label:      lipgloss.NewStyle().Foreground(lipgloss.Color("#87d7af")),
		Value:      lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")),
		Muted:      lipgloss.NewStyle().Foreground(lipgloss.Color("#808080")),
		Hint:       lipgloss.NewStyle().Foreground(lipgloss.Color("#5fafff")),
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f")).Bold(true),
		Active:     lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff87")).Bold(true),
		Card:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("60")).Padding(0, 1).MarginRight(1),
		GaugeFill:  "█",
		GaugeEmpty: "░",
	}
}

func lightTheme() Theme {
	return Theme{
		Name:       "light",
		Title:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#005f87")),
		Section:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#875f00")),
		Label:      lipgloss.NewStyle().Foreground(lipgloss.Color("#005f5f")),
		Value:      lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")),
		Muted:      lipgloss.NewStyle().Foreground(lipgloss.Color("#6c6c6c")),
		Hint:       lipgloss.NewStyle().Foreground(lipgloss.Color("#0050a0")),
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color("#af0000")).Bold(true),
		Active:     lipgloss.NewStyle().Foreground(lipgloss.Color("#008700")).Bold(true),
		Card:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("245")).Padding(0, 1).MarginRight(1),
		GaugeFill:  "█",
		GaugeEmpty: "·",
	}
}
