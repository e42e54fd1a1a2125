package microblog

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ericmwalk/obsidian-mbpublish/internal/types"
)

func TestCreatePost(t *testing.T) {
	var gotForm map[string][]string
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/micropub" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm() error = %v", err)
		}
		gotForm = r.PostForm

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		io.WriteString(w, `{"edit":"https://micro.blog/account/edit/4242","url":"https://example.micro.blog/4242.html"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok123", srv.Client())
	result, err := c.CreatePost(context.Background(), types.Entry{
		Title:       "Hello",
		Content:     "Body text",
		Status:      "published",
		Published:   "2024-03-05T14:30:00Z",
		Categories:  []string{"travel", "photos"},
		Destination: "https://example.micro.blog/",
	})
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}

	if result.PostID != "4242" {
		t.Errorf("PostID = %q, want %q", result.PostID, "4242")
	}
	if result.URL != "https://example.micro.blog/4242.html" {
		t.Errorf("URL = %q, want the json url", result.URL)
	}
	if gotAuth != "Bearer tok123" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}

	checks := map[string]string{
		"h":              "entry",
		"content":        "Body text",
		"post-status":    "published",
		"published":      "2024-03-05T14:30:00Z",
		"name":           "Hello",
		"mp-destination": "https://example.micro.blog/",
	}
	for key, want := range checks {
		if got := gotForm[key]; len(got) != 1 || got[0] != want {
			t.Errorf("form[%q] = %v, want [%s]", key, got, want)
		}
	}
	if cats := gotForm["category"]; len(cats) != 2 || cats[0] != "travel" || cats[1] != "photos" {
		t.Errorf("form[category] = %v, want repeated values", cats)
	}
}

func TestCreatePostWithoutIDFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", srv.Client())
	_, err := c.CreatePost(context.Background(), types.Entry{Content: "x", Status: "published"})
	if !errors.Is(err, ErrNoPostID) {
		t.Errorf("CreatePost() error = %v, want ErrNoPostID", err)
	}
}

func TestCreatePostLocationFallbackForURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "https://example.micro.blog/9000.html")
		io.WriteString(w, `{"edit":"/account/edit/9000"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", srv.Client())
	result, err := c.CreatePost(context.Background(), types.Entry{Content: "x", Status: "published"})
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	if result.URL != "https://example.micro.blog/9000.html" {
		t.Errorf("URL = %q, want Location header fallback", result.URL)
	}
	if result.PostID != "9000" {
		t.Errorf("PostID = %q, want 9000", result.PostID)
	}
}

func TestUploadMedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/micropub/media" {
			t.Errorf("path = %s, want /micropub/media", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm() error = %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile() error = %v", err)
		}
		defer file.Close()

		if header.Filename != "photo.png" {
			t.Errorf("filename = %q, want photo.png", header.Filename)
		}
		if ct := header.Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("part content type = %q, want image/png", ct)
		}
		data, _ := io.ReadAll(file)
		if string(data) != "fake png bytes" {
			t.Errorf("file content = %q", data)
		}

		w.Header().Set("Location", "https://cdn.micro.blog/photo.png")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", srv.Client())
	url, err := c.UploadMedia(context.Background(), "photo.png", []byte("fake png bytes"))
	if err != nil {
		t.Fatalf("UploadMedia() error = %v", err)
	}
	if url != "https://cdn.micro.blog/photo.png" {
		t.Errorf("UploadMedia() = %q, want the Location header", url)
	}
}

func TestUploadMediaWithoutLocationFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", srv.Client())
	_, err := c.UploadMedia(context.Background(), "photo.png", []byte("x"))
	if !errors.Is(err, ErrNoMediaLocation) {
		t.Errorf("UploadMedia() error = %v, want ErrNoMediaLocation", err)
	}
}

func TestDestinations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/micropub" || r.URL.Query().Get("q") != "config" {
			t.Errorf("unexpected request: %s", r.URL)
		}
		io.WriteString(w, `{"destination":[{"uid":"https://one.micro.blog/","name":"One"},{"uid":"https://two.micro.blog/","name":"Two"}]}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", srv.Client())
	dests, err := c.Destinations(context.Background())
	if err != nil {
		t.Fatalf("Destinations() error = %v", err)
	}
	if len(dests) != 2 || dests[0].Name != "One" || dests[1].UID != "https://two.micro.blog/" {
		t.Errorf("Destinations() = %v", dests)
	}
}

func TestAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/account" {
			t.Errorf("path = %s, want /account", r.URL.Path)
		}
		io.WriteString(w, `{"username":"ericmwalk"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", srv.Client())
	username, err := c.Account(context.Background())
	if err != nil {
		t.Fatalf("Account() error = %v", err)
	}
	if username != "ericmwalk" {
		t.Errorf("Account() = %q, want ericmwalk", username)
	}
}

func TestErrorStatusSurfacesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL, "bad", srv.Client())
	_, err := c.CreatePost(context.Background(), types.Entry{Content: "x"})
	if err == nil || !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "invalid token") {
		t.Errorf("CreatePost() error = %v, want status and body surfaced", err)
	}
}

func TestMIMEType(t *testing.T) {
	cases := map[string]string{
		"a.png":     "image/png",
		"b.GIF":     "image/gif",
		"c.webp":    "image/webp",
		"d.jpg":     "image/jpeg",
		"e.JPEG":    "image/jpeg",
		"f.pdf":     "application/octet-stream",
		"noext":     "application/octet-stream",
		"dir/a.png": "image/png",
	}
	for filename, want := range cases {
		if got := MIMEType(filename); got != want {
			t.Errorf("MIMEType(%q) = %q, want %q", filename, got, want)
		}
	}
}
