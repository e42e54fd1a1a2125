// Package photo uploads a note's embedded images to remote hosting and
// rewrites the note text to point at the uploaded copies.
package photo

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/ericmwalk/obsidian-mbpublish/internal/alttext"
	"github.com/ericmwalk/obsidian-mbpublish/internal/types"
	"github.com/ericmwalk/obsidian-mbpublish/internal/vault"
	"github.com/ericmwalk/obsidian-mbpublish/internal/wikilink"
)

// MediaUploader uploads one file and returns its remote URL.
type MediaUploader interface {
	UploadMedia(ctx context.Context, filename string, data []byte) (string, error)
}

// Describer produces alt text for an image already uploaded at a URL.
type Describer interface {
	Describe(ctx context.Context, imageURL string) (string, error)
}

// Options tune one Uploader.
type Options struct {
	// Describer, when set, generates alt text per image. Any failure falls
	// back to filename-derived text and never fails the batch.
	Describer Describer
	// DeleteAfterUpload moves source files to the vault trash once their
	// markers have been rewritten.
	DeleteAfterUpload bool
	// Status receives progress messages; nil discards them.
	Status types.StatusFunc
}

// Uploader is the image batch pipeline for one vault.
type Uploader struct {
	vault  *vault.Service
	media  MediaUploader
	opts   Options
	status types.StatusFunc
}

// New creates an Uploader over the given vault and media endpoint.
func New(v *vault.Service, media MediaUploader, opts Options) *Uploader {
	status := opts.Status
	if status == nil {
		status = types.Discard
	}
	return &Uploader{
		vault:  v,
		media:  media,
		opts:   opts,
		status: status,
	}
}

// UploadAll finds every embedded-image marker in content, uploads the images
// one at a time, and returns the rewritten text plus a result per successful
// upload. A marker whose target does not resolve is reported through the
// status sink, left untouched in the text, and does not abort the batch;
// read and upload failures do.
//
// Images are processed strictly in document order so the "image i of N"
// numbering and the status sequence stay deterministic.
func (u *Uploader) UploadAll(ctx context.Context, content, sourcePath string) (string, []types.UploadResult, error) {
	links := wikilink.ExtractImages(content)

	var (
		uploads      []types.UploadResult
		replacements []wikilink.Replacement
		toTrash      []string
		trashSeen    = map[string]bool{}
	)

	for i, link := range links {
		u.status(fmt.Sprintf("Uploading image %d of %d...", i+1, len(links)))

		rel, err := u.vault.ResolveLink(link.Target, sourcePath)
		if err != nil {
			if errors.Is(err, vault.ErrLinkNotFound) {
				u.status(fmt.Sprintf("Image not found, skipping: %s", link.Target))
				continue
			}
			return "", nil, err
		}

		data, err := u.vault.ReadBinary(rel)
		if err != nil {
			return "", nil, err
		}

		filename := path.Base(rel)
		uploadedURL, err := u.media.UploadMedia(ctx, filename, data)
		if err != nil {
			return "", nil, err
		}

		alt := u.altText(ctx, filename, uploadedURL)

		replacements = append(replacements, wikilink.Replacement{
			Link: link,
			Text: fmt.Sprintf("![%s](%s)", alt, uploadedURL),
		})
		uploads = append(uploads, types.UploadResult{
			Original: link.Target,
			URL:      uploadedURL,
			AltText:  alt,
		})

		if u.opts.DeleteAfterUpload && !trashSeen[rel] {
			trashSeen[rel] = true
			toTrash = append(toTrash, rel)
		}
	}

	updated := wikilink.ReplaceSpans(content, replacements)

	// Source files go to trash only after every substitution is in place,
	// and once per file even when several markers referenced it.
	for _, rel := range toTrash {
		if err := u.vault.Trash(rel); err != nil {
			return "", nil, err
		}
	}

	return updated, uploads, nil
}

func (u *Uploader) altText(ctx context.Context, filename, uploadedURL string) string {
	fallback := alttext.Fallback(filename)
	if u.opts.Describer == nil {
		return fallback
	}

	u.status(fmt.Sprintf("Generating alt text for %s...", filename))
	text, err := u.opts.Describer.Describe(ctx, uploadedURL)
	if err != nil {
		return fallback
	}
	return text
}
