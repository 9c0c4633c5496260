package cmd

import (
	"bytes"
	"context"
	"fmt"

	"github.com/bnema/nailbox/internal/domain"
	"github.com/spf13/cobra"
)

func newSyncCmd(app *app) *cobra.Command {
	var accountID string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Trigger an email sync for the active account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Toasts are held back while the spinner owns the terminal.
			var held bytes.Buffer
			defer func() {
				_, _ = cmd.ErrOrStderr().Write(held.Bytes())
			}()

			session, err := app.newSession(cmd, &held)
			if err != nil {
				return err
			}
			defer session.Close()

			if err := session.Refresh(cmd.Context()); err != nil {
				return err
			}

			id := domain.AccountID(accountID)
			if id != "" {
				if _, ok := domain.FindAccount(session.Accounts(), id); !ok {
					return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
				}
			}

			return runSyncSpinner(cmd.Context(), cmd.ErrOrStderr(), "Syncing emails...", func(ctx context.Context) error {
				return session.TriggerSync(ctx, id)
			})
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "Account ID (defaults to the active account)")

	return cmd
}
