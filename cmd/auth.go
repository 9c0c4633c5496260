package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newAuthCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the Nailbox API credentials",
	}

	token := &cobra.Command{
		Use:   "token",
		Short: "Manage the API bearer token",
	}
	token.AddCommand(newAuthTokenSetCmd(app), newAuthTokenRemoveCmd(app))

	cmd.AddCommand(token)

	return cmd
}

func newAuthTokenSetCmd(app *app) *cobra.Command {
	var value string
	var fromStdin bool

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the API bearer token in the secret store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if fromStdin {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read token from stdin: %w", err)
				}
				value = strings.TrimSpace(string(raw))
			}

			if err := app.credentials.SetAPIToken(cmd.Context(), value); err != nil {
				return err
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "API token stored")
			return err
		},
	}

	cmd.Flags().StringVar(&value, "value", "", "Token value")
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read the token from stdin")
	cmd.MarkFlagsOneRequired("value", "stdin")
	cmd.MarkFlagsMutuallyExclusive("value", "stdin")

	return cmd
}

func newAuthTokenRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Remove the stored API bearer token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.credentials.RemoveAPIToken(cmd.Context()); err != nil {
				return err
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "API token removed")
			return err
		},
	}
}
