// Package xmlrpc is the legacy RPC client Micro.blog requires for editing
// posts that already exist.
package xmlrpc

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ericmwalk/obsidian-mbpublish/internal/dateutil"
	"github.com/ericmwalk/obsidian-mbpublish/internal/httpclient"
	"github.com/ericmwalk/obsidian-mbpublish/internal/types"
)

// DefaultEndpoint is the production XML-RPC endpoint.
const DefaultEndpoint = "https://micro.blog/xmlrpc"

// ErrUpdateRejected is returned when the RPC response lacks the boolean
// success marker. There is no partial-success reading of such a response.
var ErrUpdateRejected = errors.New("post update rejected by server")

// successMarker is the literal the server puts in the response body when the
// edit went through.
const successMarker = "<boolean>1</boolean>"

// Client calls the editPost method with basic authentication.
type Client struct {
	endpoint string
	username string
	token    string
	http     *http.Client
}

// New creates a Client. Empty endpoint selects the production one; a nil
// httpClient selects the shared default.
func New(endpoint, username, token string, hc *http.Client) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if hc == nil {
		hc = httpclient.New()
	}
	return &Client{
		endpoint: endpoint,
		username: username,
		token:    token,
		http:     hc,
	}
}

// EditPost updates an existing post. Success requires the literal boolean
// marker in the response body; anything else fails with ErrUpdateRejected.
func (c *Client) EditPost(ctx context.Context, params types.EditParams) error {
	envelope := c.buildEnvelope(params)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint,
		strings.NewReader(envelope))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.username, c.token)
	req.Header.Set("Content-Type", "text/xml")

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
		return fmt.Errorf("post update failed: status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if !strings.Contains(string(body), successMarker) {
		return fmt.Errorf("%w: %s", ErrUpdateRejected, strings.TrimSpace(string(body)))
	}

	return nil
}

// buildEnvelope assembles the methodCall document by hand: three positional
// string params (post id, username, token) followed by a struct of post
// fields. All text is XML-escaped before interpolation.
func (c *Client) buildEnvelope(params types.EditParams) string {
	var b strings.Builder

	b.WriteString(`<?xml version="1.0"?>` + "\n")
	b.WriteString("<methodCall>\n")
	b.WriteString("  <methodName>microblog.editPost</methodName>\n")
	b.WriteString("  <params>\n")
	for _, param := range []string{params.PostID, c.username, c.token} {
		fmt.Fprintf(&b, "    <param><value><string>%s</string></value></param>\n", escape(param))
	}
	b.WriteString("    <param>\n      <value>\n        <struct>\n")

	fmt.Fprintf(&b, "          <member><name>title</name><value><string>%s</string></value></member>\n",
		escape(params.Title))
	fmt.Fprintf(&b, "          <member><name>description</name><value><string>%s</string></value></member>\n",
		escape(params.Content))
	fmt.Fprintf(&b, "          <member><name>dateCreated</name><value><dateTime.iso8601>%s</dateTime.iso8601></value></member>\n",
		dateutil.Compact(params.Date))

	if len(params.Categories) > 0 {
		b.WriteString("          <member><name>categories</name><value><array><data>")
		for _, category := range params.Categories {
			fmt.Fprintf(&b, "<value><string>%s</string></value>", escape(category))
		}
		b.WriteString("</data></array></value></member>\n")
	}
	if params.Status != "" {
		fmt.Fprintf(&b, "          <member><name>post_status</name><value><string>%s</string></value></member>\n",
			escape(params.Status))
	}

	b.WriteString("        </struct>\n      </value>\n    </param>\n")
	b.WriteString("  </params>\n</methodCall>\n")

	return b.String()
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
