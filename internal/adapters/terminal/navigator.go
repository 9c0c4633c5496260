package terminal

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/nailbox/internal/ports"
)

// Navigator hands the authorization URL to the user. Linking finishes in the
// browser; the next account listing picks up the new account.
type Navigator struct {
	out    io.Writer
	styles styles
}

var _ ports.Navigator = (*Navigator)(nil)

func NewNavigator(out io.Writer) *Navigator {
	return &Navigator{out: out, styles: newStyles()}
}

func (n *Navigator) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(n.out, "Open this URL to link your account:\n%s\n", n.styles.link.Render(url)); err != nil {
		return fmt.Errorf("write authorization url: %w", err)
	}

	return nil
}
