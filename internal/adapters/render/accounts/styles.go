package accounts

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	active   lipgloss.Style
	account  lipgloss.Style
	detail   lipgloss.Style
	marker   lipgloss.Style
	badge    lipgloss.Style
	badgeOff lipgloss.Style
	empty    lipgloss.Style
	hint     lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true),
		header:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		active:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		account:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		detail:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		marker:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("159")),
		badge:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("16")).Background(lipgloss.Color("39")).Padding(0, 1),
		badgeOff: lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("238")).Padding(0, 1),
		empty:    lipgloss.NewStyle().Faint(true),
		hint:     lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true),
	}
}
