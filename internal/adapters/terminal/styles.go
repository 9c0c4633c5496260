package terminal

import "github.com/charmbracelet/lipgloss"

type styles struct {
	info    lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	action  lipgloss.Style
	link    lipgloss.Style
}

func newStyles() styles {
	return styles{
		info:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		success: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114")),
		failure: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		action:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
		link:    lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("159")),
	}
}
