package ports

import (
	"context"

	"github.com/bnema/nailbox/internal/domain"
)

type Notifier interface {
	Notify(ctx context.Context, notification domain.Notification)
}

// Navigator sends the user to an external URL, e.g. an OAuth consent page.
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}
