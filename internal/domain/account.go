package domain

import (
	"strings"
	"unicode/utf8"
)

type AccountID string

type Account struct {
	ID           AccountID
	EmailAddress string
	Name         string
}

// Initial is the collapsed switcher label: the first letter of the address.
func (a Account) Initial() string {
	address := strings.TrimSpace(a.EmailAddress)
	if address == "" {
		return ""
	}

	r, _ := utf8.DecodeRuneInString(address)
	return strings.ToUpper(string(r))
}

func FindAccount(accounts []Account, id AccountID) (Account, bool) {
	for _, account := range accounts {
		if account.ID == id {
			return account, true
		}
	}

	return Account{}, false
}

// WithoutAccount returns accounts minus id, preserving order.
func WithoutAccount(accounts []Account, id AccountID) []Account {
	remaining := make([]Account, 0, len(accounts))
	for _, account := range accounts {
		if account.ID == id {
			continue
		}
		remaining = append(remaining, account)
	}

	return remaining
}
