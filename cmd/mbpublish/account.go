package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericmwalk/obsidian-mbpublish/internal/config"
)

func newAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "account",
		Short: "Verify the API token and store the account username",
		Long: `Account checks the configured API token against Micro.blog and
persists the detected username into the settings file. The username is
required for the XML-RPC update path.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}
			if err := app.requireToken(); err != nil {
				return err
			}

			username, err := app.mb.Account(cmd.Context())
			if err != nil {
				return err
			}

			app.settings.Username = username
			if err := config.Save(app.vaultPath, app.settings); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Micro.blog username: %s\n", username)
			return nil
		},
	}
}
