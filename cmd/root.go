package cmd

import (
	"github.com/bnema/nailbox/internal/config"
	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	app, err := wireApp()
	return buildRootCmd(app, err)
}

func buildRootCmd(app *app, wireErr error) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "nailbox",
		Short:         "Nailbox: manage linked mail accounts from the terminal",
		Long:          "nailbox lists the mail accounts linked to your Nailbox workspace, keeps track of the active one, and links, deletes or syncs accounts through the Nailbox API.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	if wireErr != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return wireErr
		}
		return rootCmd
	}

	rootCmd.PersistentFlags().String("log-level", app.cfg.Log.Level, "Log level (debug|info|warn|error)")
	_ = app.viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return app.configureLogging(cmd.ErrOrStderr())
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newAccountCmd(app),
		newSyncCmd(app),
		newAuthCmd(app),
	)

	return rootCmd
}
