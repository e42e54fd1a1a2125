package alttext

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDescribe(t *testing.T) {
	var gotPayload map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q, want bearer key", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		io.WriteString(w, `{"choices":[{"message":{"content":"  A red bicycle against a wall.  "}}]}`)
	}))
	defer srv.Close()

	g := New(srv.URL, "sk-test", srv.Client())
	text, err := g.Describe(context.Background(), "https://cdn.micro.blog/photo.png")
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}
	if text != "A red bicycle against a wall." {
		t.Errorf("Describe() = %q, want trimmed content", text)
	}

	if gotPayload["model"] != "gpt-4o" {
		t.Errorf("model = %v, want gpt-4o", gotPayload["model"])
	}
	if gotPayload["max_tokens"] != float64(60) {
		t.Errorf("max_tokens = %v, want 60", gotPayload["max_tokens"])
	}

	messages := gotPayload["messages"].([]any)
	content := messages[0].(map[string]any)["content"].([]any)
	if len(content) != 2 {
		t.Fatalf("message content parts = %d, want 2", len(content))
	}
	img := content[1].(map[string]any)
	if img["type"] != "image_url" {
		t.Errorf("second part type = %v, want image_url", img["type"])
	}
	if url := img["image_url"].(map[string]any)["url"]; url != "https://cdn.micro.blog/photo.png" {
		t.Errorf("image url = %v", url)
	}
}

func TestDescribeEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"choices":[{"message":{"content":""}}]}`)
	}))
	defer srv.Close()

	g := New(srv.URL, "sk-test", srv.Client())
	if _, err := g.Describe(context.Background(), "https://cdn/x.png"); err == nil {
		t.Error("Describe() with empty content should fail so callers fall back")
	}
}

func TestDescribeErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := New(srv.URL, "sk-test", srv.Client())
	if _, err := g.Describe(context.Background(), "https://cdn/x.png"); err == nil {
		t.Error("Describe() should surface non-2xx as error")
	}
}

func TestFallback(t *testing.T) {
	cases := map[string]string{
		"sunset-at-the-beach.jpg": "sunset at the beach",
		"IMG_2024_03_05.png":      "IMG 2024 03 05",
		"plain.webp":              "plain",
		"attachments/red-sky.gif": "red sky",
		"noextension":             "noextension",
	}
	for filename, want := range cases {
		if got := Fallback(filename); got != want {
			t.Errorf("Fallback(%q) = %q, want %q", filename, got, want)
		}
	}
}
