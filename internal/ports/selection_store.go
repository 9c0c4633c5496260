package ports

import (
	"context"

	"github.com/bnema/nailbox/internal/domain"
)

// SelectionStore persists the selected account id across restarts.
// Load returns an empty id when nothing was saved.
type SelectionStore interface {
	Load(ctx context.Context) (domain.AccountID, error)
	Save(ctx context.Context, id domain.AccountID) error
	Clear(ctx context.Context) error
}
