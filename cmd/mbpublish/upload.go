package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <note>",
		Short: "Upload a note's embedded images to Micro.blog",
		Long: `Upload finds every ![[image]] embed in the note, uploads the images to
the Micro.blog media endpoint one at a time, and rewrites the note so each
marker becomes a standard markdown image pointing at the hosted copy.
Images that cannot be resolved in the vault are skipped, not fatal.`,
		Example: `mbpublish upload posts/trip.md`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}
			if err := app.requireToken(); err != nil {
				return err
			}

			notePath := args[0]
			content, err := app.vault.Read(notePath)
			if err != nil {
				return err
			}

			updated, uploads, err := app.uploader(stderrStatus).UploadAll(cmd.Context(), content, notePath)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "Image upload failed.")
				return err
			}

			if updated != content {
				if err := app.vault.Write(notePath, updated); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Uploaded %d image(s) to Micro.blog.\n", len(uploads))
			for _, upload := range uploads {
				fmt.Fprintln(cmd.OutOrStdout(), upload.URL)
			}
			return nil
		},
	}
}
