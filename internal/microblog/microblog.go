// Package microblog is the Micropub client for Micro.blog: creating posts,
// uploading media and reading account configuration.
package microblog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/ericmwalk/obsidian-mbpublish/internal/httpclient"
	"github.com/ericmwalk/obsidian-mbpublish/internal/types"
)

// DefaultBaseURL is the production Micro.blog endpoint root.
const DefaultBaseURL = "https://micro.blog"

var (
	// ErrNoPostID is returned when a create response carries no post
	// identifier: without it the note cannot be marked published, so the
	// local document is left untouched.
	ErrNoPostID = errors.New("could not determine post ID from response")

	// ErrNoMediaLocation is returned when a media upload succeeds at the
	// transport level but the response lacks the Location header naming the
	// uploaded asset.
	ErrNoMediaLocation = errors.New("no image URL returned from media endpoint")
)

// Client talks to the Micropub endpoints with bearer-token auth.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a Client. Empty baseURL selects the production endpoint; a nil
// httpClient selects the shared default.
func New(baseURL, token string, hc *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if hc == nil {
		hc = httpclient.New()
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    hc,
	}
}

// CreatePost publishes a new entry via the form-encoded micropub endpoint
// and returns the new post's URL and identifier.
func (c *Client) CreatePost(ctx context.Context, entry types.Entry) (types.PublishResult, error) {
	form := url.Values{}
	form.Set("h", "entry")
	form.Set("content", entry.Content)
	form.Set("post-status", entry.Status)
	form.Set("published", entry.Published)
	if entry.Title != "" {
		form.Set("name", entry.Title)
	}
	for _, category := range entry.Categories {
		form.Add("category", category)
	}
	if entry.Destination != "" {
		form.Set("mp-destination", entry.Destination)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/micropub",
		strings.NewReader(form.Encode()))
	if err != nil {
		return types.PublishResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return types.PublishResult{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.PublishResult{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return types.PublishResult{}, fmt.Errorf("micropub create failed: status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed struct {
		Edit string `json:"edit"`
		URL  string `json:"url"`
	}
	// A non-JSON body is treated the same as a body without an edit path:
	// the Location fallback below may still yield a URL, but no ID.
	_ = json.Unmarshal(body, &parsed)

	postID := ""
	if parsed.Edit != "" {
		postID = path.Base(parsed.Edit)
	}
	postURL := parsed.URL
	if postURL == "" {
		postURL = resp.Header.Get("Location")
	}

	if postID == "" {
		return types.PublishResult{}, ErrNoPostID
	}

	return types.PublishResult{URL: postURL, PostID: postID}, nil
}

// UploadMedia posts one file to the media endpoint as multipart/form-data
// and returns the uploaded asset's URL from the Location header.
func (c *Client) UploadMedia(ctx context.Context, filename string, data []byte) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	boundary := "MbpublishBoundary" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := w.SetBoundary(boundary); err != nil {
		return "", err
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", MIMEType(filename))
	part, err := w.CreatePart(header)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/micropub/media", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("media upload failed: status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return "", ErrNoMediaLocation
	}

	return location, nil
}

// Destinations lists the blogs this account can publish to.
func (c *Client) Destinations(ctx context.Context) ([]types.Destination, error) {
	var parsed struct {
		Destination []types.Destination `json:"destination"`
	}
	if err := c.getJSON(ctx, "/micropub?q=config", &parsed); err != nil {
		return nil, err
	}
	return parsed.Destination, nil
}

// Account returns the username behind the configured token.
func (c *Client) Account(ctx context.Context) (string, error) {
	var parsed struct {
		Username string `json:"username"`
	}
	if err := c.getJSON(ctx, "/account", &parsed); err != nil {
		return "", err
	}
	if parsed.Username == "" {
		return "", errors.New("account response carried no username")
	}
	return parsed.Username, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("request to %s failed: status %d: %s",
			endpoint, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", endpoint, err)
	}
	return nil
}

// MIMEType infers an upload content type from the file extension. Unknown
// extensions upload as a generic binary type.
func MIMEType(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
