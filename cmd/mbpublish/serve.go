package main

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/ericmwalk/obsidian-mbpublish/internal/types"
)

type (
	// PublishInput contains parameters for publishing a note.
	PublishInput struct {
		Path string `json:"path" jsonschema:"Path to the note relative to vault root"`
	}

	// PublishOutput contains the result of publishing a note.
	PublishOutput struct {
		URL    string   `json:"url"`
		PostID string   `json:"postId"`
		Status []string `json:"status,omitempty"`
	}

	// UploadInput contains parameters for uploading a note's images.
	UploadInput struct {
		Path string `json:"path" jsonschema:"Path to the note relative to vault root"`
	}

	// UploadOutput contains the result of an image upload batch.
	UploadOutput struct {
		Uploaded int                  `json:"uploaded"`
		Results  []types.UploadResult `json:"results,omitempty"`
		Status   []string             `json:"status,omitempty"`
	}

	// BlogsInput contains parameters for listing destinations.
	BlogsInput struct{}

	// BlogsOutput contains the destinations available to the account.
	BlogsOutput struct {
		Destinations []types.Destination `json:"destinations"`
	}
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run an MCP server exposing the publish and upload pipelines",
		Long: `Serve runs a Model Context Protocol server over stdio so any
MCP-compatible editor or AI harness can publish notes and upload images
through the same pipelines as the CLI commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}
			if err := app.requireToken(); err != nil {
				return err
			}

			server := mcp.NewServer(&mcp.Implementation{
				Name:    "mbpublish",
				Version: version,
			}, nil)

			registerTools(server, app)

			if err := server.Run(cmd.Context(), &mcp.StdioTransport{}); err != nil {
				return fmt.Errorf("error running server: %w", err)
			}
			return nil
		},
	}
}

func registerTools(server *mcp.Server, app *app) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "publish",
		Description: "Publish a note to Micro.blog. Creates a new post, or updates the existing one when the note's front matter already carries a microblog_id. Requires front matter status: published.",
	}, app.handlePublish)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "upload_images",
		Description: "Upload every ![[image]] embedded in a note to the Micro.blog media endpoint and rewrite the note to reference the hosted copies. Unresolvable images are skipped.",
	}, app.handleUpload)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_blogs",
		Description: "List the destination blogs the configured account can publish to.",
	}, app.handleBlogs)
}

func (a *app) handlePublish(ctx context.Context, req *mcp.CallToolRequest, input PublishInput) (*mcp.CallToolResult, PublishOutput, error) {
	var status []string
	sink := func(msg string) { status = append(status, msg) }

	result, err := a.publishNote(ctx, input.Path, sink)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, PublishOutput{Status: status}, err
	}

	return nil, PublishOutput{
		URL:    result.URL,
		PostID: result.PostID,
		Status: status,
	}, nil
}

func (a *app) handleUpload(ctx context.Context, req *mcp.CallToolRequest, input UploadInput) (*mcp.CallToolResult, UploadOutput, error) {
	var status []string
	sink := func(msg string) { status = append(status, msg) }

	content, err := a.vault.Read(input.Path)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, UploadOutput{}, err
	}

	updated, uploads, err := a.uploader(sink).UploadAll(ctx, content, input.Path)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, UploadOutput{Status: status}, err
	}

	if updated != content {
		if err := a.vault.Write(input.Path, updated); err != nil {
			return &mcp.CallToolResult{IsError: true}, UploadOutput{Status: status}, err
		}
	}

	return nil, UploadOutput{
		Uploaded: len(uploads),
		Results:  uploads,
		Status:   status,
	}, nil
}

func (a *app) handleBlogs(ctx context.Context, req *mcp.CallToolRequest, input BlogsInput) (*mcp.CallToolResult, BlogsOutput, error) {
	destinations, err := a.mb.Destinations(ctx)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, BlogsOutput{}, err
	}

	return nil, BlogsOutput{Destinations: destinations}, nil
}
