// Package wikilink extracts embedded-image markers from note text.
package wikilink

import "regexp"

var imageRe = regexp.MustCompile(`!\[\[([^\]]+)\]\]`)

// Link is one ![[...]] embed occurrence.
type Link struct {
	// Target is the link destination with any trailing #subpath or |alias
	// stripped, ready for vault resolution.
	Target string
	// Raw is the exact marker text as it appears in the note.
	Raw string
	// Start and End are the byte span of Raw within the scanned text.
	// Rewrites go by span, not by substring search, so repeated identical
	// markers each get their own replacement.
	Start int
	End   int
}

// ExtractImages returns every embedded-image marker in body, in document
// order.
func ExtractImages(body string) []Link {
	matches := imageRe.FindAllStringSubmatchIndex(body, -1)
	links := make([]Link, 0, len(matches))
	for _, m := range matches {
		raw := body[m[0]:m[1]]
		target := body[m[2]:m[3]]
		for i, c := range target {
			if c == '#' || c == '|' {
				target = target[:i]
				break
			}
		}
		links = append(links, Link{
			Target: target,
			Raw:    raw,
			Start:  m[0],
			End:    m[1],
		})
	}
	return links
}

// ReplaceSpans applies replacements to text by span. Each element of repl
// pairs a Link (as returned by ExtractImages against the same text) with its
// replacement string; spans are applied back to front so earlier offsets
// stay valid.
func ReplaceSpans(text string, repl []Replacement) string {
	for i := len(repl) - 1; i >= 0; i-- {
		r := repl[i]
		text = text[:r.Link.Start] + r.Text + text[r.Link.End:]
	}
	return text
}

// Replacement pairs an extracted link with the text that replaces it.
type Replacement struct {
	Link Link
	Text string
}
