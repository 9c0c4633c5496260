package cmd

import (
	"encoding/json"
	"fmt"

	accountsrender "github.com/bnema/nailbox/internal/adapters/render/accounts"
	"github.com/bnema/nailbox/internal/domain"
	"github.com/spf13/cobra"
)

const deleteWarningFormat = "This will permanently delete %s and all associated emails, threads, and attachments. This action cannot be undone."

type accountJSON struct {
	ID           string `json:"id"`
	EmailAddress string `json:"emailAddress"`
	Name         string `json:"name"`
	Selected     bool   `json:"selected"`
}

func newAccountCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage linked mail accounts",
	}

	cmd.AddCommand(
		newAccountListCmd(app),
		newAccountCurrentCmd(app),
		newAccountSelectCmd(app),
		newAccountDeleteCmd(app),
		newAccountAddCmd(app),
	)

	return cmd
}

func newAccountListCmd(app *app) *cobra.Command {
	var asJSON bool
	var compact bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List linked accounts and mark the active one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := app.newSession(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer session.Close()

			if err := session.Refresh(cmd.Context()); err != nil {
				return err
			}

			accounts := session.Accounts()
			selected := session.Selected()

			if asJSON {
				payload := make([]accountJSON, 0, len(accounts))
				for _, account := range accounts {
					payload = append(payload, accountJSON{
						ID:           string(account.ID),
						EmailAddress: account.EmailAddress,
						Name:         account.Name,
						Selected:     account.ID == selected,
					})
				}
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(payload)
			}

			output, err := app.accountRenderer(accounts, accountsrender.RenderOptions{Selected: selected, Compact: compact})
			if err != nil {
				return fmt.Errorf("render accounts: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), output)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().BoolVar(&compact, "compact", false, "Show initials only")

	return cmd
}

func newAccountCurrentCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the active account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := app.newSession(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer session.Close()

			if err := session.Refresh(cmd.Context()); err != nil {
				return err
			}

			account, ok := session.SelectedAccount()
			if !ok {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No account selected")
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", account.EmailAddress, account.ID)
			return err
		},
	}
}

func newAccountSelectCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "select <account-id>",
		Short: "Make an account the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.AccountID(args[0])

			session, err := app.newSession(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer session.Close()

			if err := session.Refresh(cmd.Context()); err != nil {
				return err
			}

			account, ok := domain.FindAccount(session.Accounts(), id)
			if !ok {
				return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
			}

			if err := session.SelectAccount(cmd.Context(), id); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Selected %s\n", account.EmailAddress)
			return err
		},
	}
}

func newAccountDeleteCmd(app *app) *cobra.Command {
	var skipConfirm bool

	cmd := &cobra.Command{
		Use:   "delete <account-id>",
		Short: "Delete a linked account and its mail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.newSession(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer session.Close()

			if err := session.Refresh(cmd.Context()); err != nil {
				return err
			}

			account, err := session.RequestDelete(domain.AccountID(args[0]))
			if err != nil {
				return err
			}

			if skipConfirm {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleting %s (%s)\n", account.EmailAddress, account.ID); err != nil {
					session.CancelDelete()
					return err
				}
			} else {
				confirmed, err := app.confirm(cmd, "Delete account?", fmt.Sprintf(deleteWarningFormat, account.EmailAddress))
				if err != nil {
					session.CancelDelete()
					return fmt.Errorf("confirm delete: %w", err)
				}
				if !confirmed {
					session.CancelDelete()
					_, err := fmt.Fprintln(cmd.OutOrStdout(), "Delete canceled")
					return err
				}
			}

			if err := session.ConfirmDelete(cmd.Context()); err != nil {
				return err
			}

			if next, ok := session.SelectedAccount(); ok {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Active account: %s\n", next.EmailAddress)
				return err
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&skipConfirm, "yes", false, "Delete without asking; the address is still printed")

	return cmd
}

func newAccountAddCmd(app *app) *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Print the authorization URL that links a new account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed := app.provider
			if provider != "" {
				var err error
				parsed, err = domain.ParseProvider(provider)
				if err != nil {
					return err
				}
			}

			session, err := app.newSession(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer session.Close()

			if err := session.RequestAddAccount(cmd.Context(), parsed); err != nil {
				return err
			}
			// The URL has been handed to the user; nothing else runs in this process.
			session.NavigationDone()
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Mail provider (Office365|Google|EWS|IMAP)")

	return cmd
}
