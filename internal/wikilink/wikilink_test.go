package wikilink

import "testing"

func TestExtractImagesInOrder(t *testing.T) {
	body := "intro ![[first.png]] middle ![[second.jpg]] end"

	links := ExtractImages(body)
	if len(links) != 2 {
		t.Fatalf("ExtractImages() returned %d links, want 2", len(links))
	}
	if links[0].Target != "first.png" || links[1].Target != "second.jpg" {
		t.Errorf("targets = %q, %q; want first.png, second.jpg", links[0].Target, links[1].Target)
	}
	if body[links[0].Start:links[0].End] != "![[first.png]]" {
		t.Errorf("span does not cover the marker: %q", body[links[0].Start:links[0].End])
	}
}

func TestExtractImagesStripsSubpathAndAlias(t *testing.T) {
	links := ExtractImages("![[photo.png#section]] and ![[other.jpg|caption text]]")
	if len(links) != 2 {
		t.Fatalf("ExtractImages() returned %d links, want 2", len(links))
	}
	if links[0].Target != "photo.png" {
		t.Errorf("Target = %q, want photo.png", links[0].Target)
	}
	if links[0].Raw != "![[photo.png#section]]" {
		t.Errorf("Raw = %q, want the full marker", links[0].Raw)
	}
	if links[1].Target != "other.jpg" {
		t.Errorf("Target = %q, want other.jpg", links[1].Target)
	}
}

func TestExtractImagesIgnoresPlainLinks(t *testing.T) {
	links := ExtractImages("a [[wiki link]] and a ![markdown](img.png)")
	if len(links) != 0 {
		t.Errorf("ExtractImages() = %v, want none", links)
	}
}

func TestReplaceSpansHandlesRepeatedMarkers(t *testing.T) {
	body := "![[same.png]] text ![[same.png]]"

	links := ExtractImages(body)
	if len(links) != 2 {
		t.Fatalf("ExtractImages() returned %d links, want 2", len(links))
	}

	got := ReplaceSpans(body, []Replacement{
		{Link: links[0], Text: "A"},
		{Link: links[1], Text: "B"},
	})
	if got != "A text B" {
		t.Errorf("ReplaceSpans() = %q, want %q", got, "A text B")
	}
}

func TestReplaceSpansPartial(t *testing.T) {
	body := "![[a.png]] ![[missing.png]] ![[c.png]]"
	links := ExtractImages(body)

	// Middle link skipped: its marker must come through untouched.
	got := ReplaceSpans(body, []Replacement{
		{Link: links[0], Text: "![alt a](https://cdn/a.jpg)"},
		{Link: links[2], Text: "![alt c](https://cdn/c.jpg)"},
	})
	want := "![alt a](https://cdn/a.jpg) ![[missing.png]] ![alt c](https://cdn/c.jpg)"
	if got != want {
		t.Errorf("ReplaceSpans() = %q, want %q", got, want)
	}
}
