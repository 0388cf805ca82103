package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	Title    lipgloss.Style
	Pane     lipgloss.Style
	Active   lipgloss.Style
	Heading  lipgloss.Style
	Selected lipgloss.Style
	Muted    lipgloss.Style
	Gift     lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Total    lipgloss.Style
}

func defaultStyles() styles {
	pane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Width(38)

	return styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).MarginBottom(1),
		Pane:     pane,
		Active:   pane.BorderForeground(lipgloss.Color("205")),
		Heading:  lipgloss.NewStyle().Bold(true).Underline(true),
		Selected: lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Gift:     lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Italic(true),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Total:    lipgloss.NewStyle().Bold(true),
	}
}
