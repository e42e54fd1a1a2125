// Package alttext generates descriptive alt text for uploaded images through
// a vision-capable chat-completion endpoint.
package alttext

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/ericmwalk/obsidian-mbpublish/internal/httpclient"
)

// DefaultEndpoint is the chat-completion endpoint used when none is
// configured.
const DefaultEndpoint = "https://api.openai.com/v1/chat/completions"

const (
	model     = "gpt-4o"
	maxTokens = 60
	prompt    = "Write a short, descriptive alt text for the image. Keep it concise and relevant."
)

// Generator calls the completion endpoint with bearer auth. Callers treat
// any error as recoverable and fall back to Fallback text; nothing here is
// allowed to fail a batch.
type Generator struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// New creates a Generator. Empty endpoint selects the default; a nil
// httpClient selects the shared default.
func New(endpoint, apiKey string, hc *http.Client) *Generator {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if hc == nil {
		hc = httpclient.New()
	}
	return &Generator{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     hc,
	}
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

// Describe asks the model for alt text describing the image at imageURL.
func (g *Generator) Describe(ctx context.Context, image string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &imageURL{URL: image}},
			},
		}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("alt text request failed: status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode alt text response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", errors.New("alt text response carried no choices")
	}
	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("alt text response was empty")
	}

	return text, nil
}

// Fallback derives deterministic alt text from a filename: extension
// stripped, separators replaced with spaces.
func Fallback(filename string) string {
	base := path.Base(filename)
	base = strings.TrimSuffix(base, path.Ext(base))
	return strings.NewReplacer("-", " ", "_", " ").Replace(base)
}
