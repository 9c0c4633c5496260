package accounts

import (
	"fmt"

	"github.com/bnema/nailbox/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const (
	activeMarker   = "●"
	inactiveMarker = " "
)

type RenderOptions struct {
	Selected domain.AccountID
	// Compact shows only the first letter of each address, as the collapsed
	// switcher does.
	Compact bool
}

func renderView(accounts []domain.Account, opts RenderOptions, s styles) string {
	if opts.Compact {
		return renderCompact(accounts, opts, s)
	}

	lines := []string{
		s.title.Render("Linked accounts"),
		s.header.Render(fmt.Sprintf("accounts: %d", len(accounts))),
	}

	if len(accounts) == 0 {
		lines = append(lines,
			s.empty.Render("No accounts linked."),
			s.hint.Render("Run `nailbox account add` to link one."),
		)
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, account := range accounts {
		lines = append(lines, renderRow(account, account.ID == opts.Selected, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderRow(account domain.Account, active bool, s styles) string {
	marker := s.marker.Render(inactiveMarker)
	address := s.account.Render(account.EmailAddress)
	if active {
		marker = s.marker.Render(activeMarker)
		address = s.active.Render(account.EmailAddress)
	}

	parts := []string{marker, " ", address}
	if account.Name != "" && account.Name != account.EmailAddress {
		parts = append(parts, " ", s.detail.Render("("+account.Name+")"))
	}
	parts = append(parts, " ", s.detail.Render(string(account.ID)))

	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func renderCompact(accounts []domain.Account, opts RenderOptions, s styles) string {
	if len(accounts) == 0 {
		return s.empty.Render("-")
	}

	badges := make([]string, 0, len(accounts)*2)
	for i, account := range accounts {
		if i > 0 {
			badges = append(badges, " ")
		}
		style := s.badgeOff
		if account.ID == opts.Selected {
			style = s.badge
		}
		badges = append(badges, style.Render(account.Initial()))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, badges...)
}
