package ports

import (
	"context"

	"github.com/bnema/nailbox/internal/domain"
)

// AccountService is the remote mail API owning linked accounts.
type AccountService interface {
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	DeleteAccount(ctx context.Context, id domain.AccountID) error
	SyncAccount(ctx context.Context, id domain.AccountID) error
}

type AuthorizationURLProvider interface {
	AuthorizationURL(ctx context.Context, provider domain.Provider) (string, error)
}
