package domain

import "errors"

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrEmptyAccountID      = errors.New("account id is required")
	ErrNoAccountSelected   = errors.New("no account selected")
	ErrNoPendingDelete     = errors.New("no account pending deletion")
	ErrNavigationInFlight  = errors.New("add-account navigation in flight")
	ErrSessionClosed       = errors.New("session closed")
	ErrUnsupportedProvider = errors.New("unsupported provider")
	ErrSecretNotFound      = errors.New("secret not found")
)
