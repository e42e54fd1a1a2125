package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish <note>",
		Short: "Publish a note to Micro.blog",
		Long: `Publish sends the note at the given vault-relative path to Micro.blog.
A note without a microblog_id in its front matter is created as a new post
and the front matter is rewritten with the assigned id and URL; a note that
already has one is updated in place on the server.`,
		Example: `mbpublish publish posts/trip.md`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}
			if err := app.requireToken(); err != nil {
				return err
			}

			result, err := app.publishNote(cmd.Context(), args[0], stderrStatus)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "Failed to publish post.")
				return err
			}

			fmt.Fprintln(cmd.ErrOrStderr(), "Post published to Micro.blog.")
			fmt.Fprintln(cmd.OutOrStdout(), result.URL)
			return nil
		},
	}
}
