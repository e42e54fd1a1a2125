// Package main implements the Micro.blog publisher for Obsidian vaults.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/ericmwalk/obsidian-mbpublish/internal/alttext"
	"github.com/ericmwalk/obsidian-mbpublish/internal/config"
	"github.com/ericmwalk/obsidian-mbpublish/internal/frontmatter"
	"github.com/ericmwalk/obsidian-mbpublish/internal/httpclient"
	"github.com/ericmwalk/obsidian-mbpublish/internal/microblog"
	"github.com/ericmwalk/obsidian-mbpublish/internal/pathfilter"
	"github.com/ericmwalk/obsidian-mbpublish/internal/photo"
	"github.com/ericmwalk/obsidian-mbpublish/internal/publish"
	"github.com/ericmwalk/obsidian-mbpublish/internal/types"
	"github.com/ericmwalk/obsidian-mbpublish/internal/vault"
	"github.com/ericmwalk/obsidian-mbpublish/internal/xmlrpc"
)

var vaultFlag string

func main() {
	root := &cobra.Command{
		Use:   "mbpublish",
		Short: "Publish Obsidian notes to Micro.blog",
		Long: `mbpublish publishes notes and images from an Obsidian vault to
Micro.blog. Notes with a front matter status of "published" are created
through micropub or, when they already carry a post id, updated through the
legacy XML-RPC endpoint. Embedded images upload to the media endpoint and
the note text is rewritten to point at the hosted copies.`,
		Example: `mbpublish --vault ~/obsidian publish posts/trip.md`,
	}

	root.PersistentFlags().StringVar(&vaultFlag, "vault", ".", "path to the Obsidian vault")

	root.AddCommand(
		newPublishCmd(),
		newUploadCmd(),
		newBlogsCmd(),
		newAccountCmd(),
		newServeCmd(),
	)

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
	); err != nil {
		os.Exit(1)
	}
}

// app bundles the vault, settings and clients every subcommand needs.
type app struct {
	vaultPath string
	settings  config.Settings
	vault     *vault.Service
	mb        *microblog.Client
}

func loadApp() (*app, error) {
	settings, err := config.Load(vaultFlag)
	if err != nil {
		return nil, err
	}

	v := vault.New(vaultFlag, pathfilter.New(nil))
	return &app{
		vaultPath: v.VaultPath(),
		settings:  settings,
		vault:     v,
		mb:        microblog.New("", settings.APIToken, httpclient.New()),
	}, nil
}

// requireToken validates the settings every remote command depends on.
func (a *app) requireToken() error {
	return a.settings.Validate()
}

// username returns the configured username, fetching and persisting it from
// the account endpoint the first time it is needed.
func (a *app) username(ctx context.Context) (string, error) {
	if a.settings.Username != "" {
		return a.settings.Username, nil
	}

	username, err := a.mb.Account(ctx)
	if err != nil {
		return "", fmt.Errorf("username not configured and lookup failed: %w", err)
	}

	a.settings.Username = username
	if err := config.Save(a.vaultPath, a.settings); err != nil {
		return "", err
	}
	return username, nil
}

// publisher assembles the post pipeline with the given status sink. The
// username is only needed on the update path; callers pass it when the note
// already carries a post id.
func (a *app) publisher(status types.StatusFunc, username string) *publish.Publisher {
	editor := xmlrpc.New("", username, a.settings.APIToken, httpclient.New())
	return publish.New(a.vault, a.mb, editor, publish.Options{
		Destination:  a.settings.Blog,
		DateFallback: a.settings.DateFallback,
		Status:       status,
	})
}

// publishNote runs the full publish workflow for one note, resolving the
// username first when the note is headed down the update path.
func (a *app) publishNote(ctx context.Context, notePath string, status types.StatusFunc) (types.PublishResult, error) {
	username := ""
	if raw, err := a.vault.Read(notePath); err == nil {
		if doc, err := frontmatter.Parse(raw); err == nil && doc.Has("microblog_id") {
			username, err = a.username(ctx)
			if err != nil {
				return types.PublishResult{}, err
			}
		}
	}

	return a.publisher(status, username).Publish(ctx, notePath)
}

// uploader assembles the image pipeline with the given status sink.
func (a *app) uploader(status types.StatusFunc) *photo.Uploader {
	opts := photo.Options{
		DeleteAfterUpload: a.settings.DeleteAfterUpload,
		Status:            status,
	}
	if a.settings.UseAIAltText && a.settings.OpenAIAPIKey != "" {
		opts.Describer = alttext.New("", a.settings.OpenAIAPIKey, httpclient.New())
	}
	return photo.New(a.vault, a.mb, opts)
}

// stderrStatus writes progress messages to stderr, keeping stdout for
// results.
func stderrStatus(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}
