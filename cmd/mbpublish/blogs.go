package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericmwalk/obsidian-mbpublish/internal/config"
)

func newBlogsCmd() *cobra.Command {
	var setBlog string

	cmd := &cobra.Command{
		Use:   "blogs",
		Short: "List the blogs this account can publish to",
		Long: `Blogs lists every destination the configured token can publish to.
Use --set with a destination uid to persist it as the default; new posts
then carry it as mp-destination.`,
		Example: `mbpublish blogs --set https://example.micro.blog/`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}
			if err := app.requireToken(); err != nil {
				return err
			}

			destinations, err := app.mb.Destinations(cmd.Context())
			if err != nil {
				return err
			}

			if setBlog != "" {
				found := false
				for _, dest := range destinations {
					if dest.UID == setBlog {
						found = true
						break
					}
				}
				if !found {
					return fmt.Errorf("destination %q is not available to this account", setBlog)
				}

				app.settings.Blog = setBlog
				if err := config.Save(app.vaultPath, app.settings); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Default blog set to %s\n", setBlog)
			}

			for _, dest := range destinations {
				marker := " "
				if dest.UID == app.settings.Blog {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\t%s\n", marker, dest.UID, dest.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&setBlog, "set", "", "persist a destination uid as the default blog")
	return cmd
}
