package domain

import (
	"fmt"
	"strings"
)

// Provider is the mailbox service type passed to the authorization endpoint.
type Provider string

const (
	ProviderOffice365 Provider = "Office365"
	ProviderGoogle    Provider = "Google"
	ProviderEWS       Provider = "EWS"
	ProviderIMAP      Provider = "IMAP"

	DefaultProvider = ProviderOffice365
)

func ParseProvider(raw string) (Provider, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return DefaultProvider, nil
	}

	for _, provider := range []Provider{ProviderOffice365, ProviderGoogle, ProviderEWS, ProviderIMAP} {
		if strings.EqualFold(trimmed, string(provider)) {
			return provider, nil
		}
	}

	return "", fmt.Errorf("%w %q", ErrUnsupportedProvider, raw)
}
