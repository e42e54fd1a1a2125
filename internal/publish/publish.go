// Package publish decides whether a note becomes a new remote post or an
// update to an existing one, and carries the result back into the note's
// front matter.
package publish

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ericmwalk/obsidian-mbpublish/internal/config"
	"github.com/ericmwalk/obsidian-mbpublish/internal/dateutil"
	"github.com/ericmwalk/obsidian-mbpublish/internal/frontmatter"
	"github.com/ericmwalk/obsidian-mbpublish/internal/types"
	"github.com/ericmwalk/obsidian-mbpublish/internal/vault"
)

// PostURLPrefix is how an updated post's URL is derived from its id.
const PostURLPrefix = "https://micro.blog/posts/"

// Keys this pipeline owns inside a note's front matter. Everything else
// passes through untouched.
const (
	keyTitle  = "title"
	keyStatus = "status"
	keyTags   = "tags"
	keyDate   = "date"
	keyPostID = "microblog_id"
	keyURL    = "url"
)

// PostCreator publishes a brand-new entry.
type PostCreator interface {
	CreatePost(ctx context.Context, entry types.Entry) (types.PublishResult, error)
}

// PostEditor updates an already-published post.
type PostEditor interface {
	EditPost(ctx context.Context, params types.EditParams) error
}

// Options tune one Publisher.
type Options struct {
	// Destination is the mp-destination uid for the create path; empty
	// publishes to the account default.
	Destination string
	// DateFallback is config.DateFallbackNow or config.DateFallbackError.
	DateFallback string
	// Clock supplies the substitute time for the now-fallback; nil uses
	// time.Now.
	Clock func() time.Time
	// Status receives progress messages; nil discards them.
	Status types.StatusFunc
}

// Publisher runs the create-or-update workflow for one vault.
type Publisher struct {
	vault   *vault.Service
	creator PostCreator
	editor  PostEditor
	opts    Options
	status  types.StatusFunc
	clock   func() time.Time
}

// New creates a Publisher over the given vault and protocol clients.
func New(v *vault.Service, creator PostCreator, editor PostEditor, opts Options) *Publisher {
	status := opts.Status
	if status == nil {
		status = types.Discard
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Publisher{
		vault:   v,
		creator: creator,
		editor:  editor,
		opts:    opts,
		status:  status,
		clock:   clock,
	}
}

// Publish reads the note at notePath and sends it to the remote service.
// A note already carrying a post id goes down the legacy update path and the
// local file is left alone; a note without one is created via micropub and
// its front matter is rewritten with the new id, URL and display date.
//
// Nothing is sent unless the front matter status is "published" (any case).
func (p *Publisher) Publish(ctx context.Context, notePath string) (types.PublishResult, error) {
	unlock := p.vault.Lock(notePath)
	defer unlock()

	raw, err := p.vault.Read(notePath)
	if err != nil {
		return types.PublishResult{}, err
	}

	doc, err := frontmatter.Parse(raw)
	if err != nil {
		return types.PublishResult{}, err
	}
	if err := frontmatter.RequireStatus(doc, "published"); err != nil {
		return types.PublishResult{}, err
	}

	title, _ := doc.GetString(keyTitle)
	status, _ := doc.GetString(keyStatus)
	tags := doc.GetList(keyTags)
	postID, _ := doc.GetString(keyPostID)
	rawDate, _ := doc.GetString(keyDate)

	localDate, err := p.noteDate(rawDate)
	if err != nil {
		return types.PublishResult{}, err
	}

	body := strings.TrimSpace(doc.Body)

	if postID != "" {
		p.status("Updating Micro.blog post...")
		err := p.editor.EditPost(ctx, types.EditParams{
			PostID:     postID,
			Title:      title,
			Content:    body,
			Date:       localDate,
			Categories: tags,
			Status:     status,
		})
		if err != nil {
			return types.PublishResult{}, err
		}
		return types.PublishResult{URL: PostURLPrefix + postID, PostID: postID}, nil
	}

	p.status("Publishing new post to Micro.blog...")
	result, err := p.creator.CreatePost(ctx, types.Entry{
		Title:       title,
		Content:     body,
		Status:      status,
		Published:   dateutil.UTCISO(localDate),
		Categories:  tags,
		Destination: p.opts.Destination,
	})
	if err != nil {
		return types.PublishResult{}, err
	}

	doc.Set(keyPostID, frontmatter.String(result.PostID))
	doc.Set(keyURL, frontmatter.String(result.URL))
	doc.Set(keyTitle, frontmatter.String(title))
	doc.Set(keyDate, frontmatter.String(dateutil.Display(localDate)))

	rendered, err := doc.Render()
	if err != nil {
		return types.PublishResult{}, err
	}
	if err := p.vault.Write(notePath, rendered); err != nil {
		return types.PublishResult{}, err
	}

	return result, nil
}

// noteDate turns the raw front matter date into the pipeline's single
// LocalDate value. An unrecognized date either aborts or substitutes the
// current time, per the configured policy; the substitution is announced
// through the status sink rather than applied silently.
func (p *Publisher) noteDate(rawDate string) (time.Time, error) {
	localDate, err := dateutil.Parse(rawDate)
	if err == nil {
		return localDate, nil
	}

	if p.opts.DateFallback == config.DateFallbackError {
		return time.Time{}, fmt.Errorf("note date %q: %w", rawDate, err)
	}

	p.status(fmt.Sprintf("Note date %q not recognized; using the current time.", rawDate))
	return p.clock(), nil
}
