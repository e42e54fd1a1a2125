// Package types defines the data structures shared across the publish and
// upload pipelines.
package types

import "time"

type (
	// PublishResult is the outcome of publishing a note: the remote URL and
	// the post identifier that marks the note as already published.
	PublishResult struct {
		URL    string `json:"url"`
		PostID string `json:"postId"`
	}

	// UploadResult records one successfully uploaded image.
	UploadResult struct {
		Original string `json:"original"`
		URL      string `json:"url"`
		AltText  string `json:"altText"`
	}

	// Destination is one blog reachable through the account, as listed by
	// the micropub config endpoint.
	Destination struct {
		UID  string `json:"uid"`
		Name string `json:"name"`
	}

	// Entry carries the fields of a new micropub post.
	Entry struct {
		Title       string
		Content     string
		Status      string
		Published   string // UTC ISO form, precomputed by the pipeline
		Categories  []string
		Destination string
	}

	// EditParams carries the fields of an XML-RPC post update.
	EditParams struct {
		PostID     string
		Title      string
		Content    string
		Date       time.Time
		Categories []string
		Status     string
	}
)

// StatusFunc receives one-line progress messages between pipeline steps. It
// is called synchronously; implementations must not block.
type StatusFunc func(msg string)

// Discard is a StatusFunc that drops all messages.
func Discard(string) {}
