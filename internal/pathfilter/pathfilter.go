// Package pathfilter decides which vault paths the publisher may touch.
package pathfilter

import (
	"regexp"
	"strings"
)

// Filter screens vault-relative paths against ignore patterns and an
// extension allow list. Notes and image attachments pass; editor internals,
// VCS metadata and the trash folder do not.
type Filter struct {
	ignoredPatterns   []string
	allowedExtensions []string
}

// Config adds extra patterns and extensions on top of the defaults.
type Config struct {
	IgnoredPatterns   []string
	AllowedExtensions []string
}

// New creates a Filter with the default rules plus any extras from config.
func New(config *Config) *Filter {
	f := &Filter{
		ignoredPatterns: []string{
			".obsidian/**",
			".git/**",
			".trash/**",
			"node_modules/**",
			".DS_Store",
			"Thumbs.db",
		},
		allowedExtensions: []string{
			".md",
			".markdown",
			".txt",
			// Attachments the upload pipeline can resolve.
			".png",
			".gif",
			".webp",
			".jpg",
			".jpeg",
		},
	}

	if config != nil {
		f.ignoredPatterns = append(f.ignoredPatterns, config.IgnoredPatterns...)
		f.allowedExtensions = append(f.allowedExtensions, config.AllowedExtensions...)
	}

	return f
}

// globMatch converts a glob pattern to regex and tests it against the path.
func (f *Filter) globMatch(pattern, path string) bool {
	normalized := strings.ReplaceAll(pattern, "\\", "/")

	regexPattern := regexp.QuoteMeta(normalized)
	regexPattern = strings.ReplaceAll(regexPattern, `\*\*`, ".*")  // ** matches any
	regexPattern = strings.ReplaceAll(regexPattern, `\*`, "[^/]*") // * matches non-slash
	regexPattern = strings.ReplaceAll(regexPattern, `\?`, "[^/]")  // ? matches single char
	regexPattern = "^" + regexPattern + "$"

	re, err := regexp.Compile(regexPattern)
	if err != nil {
		return false
	}

	return re.MatchString(path)
}

// IsAllowed reports whether a vault-relative path may be read, written or
// trashed by the publisher.
func (f *Filter) IsAllowed(path string) bool {
	normalized := strings.ReplaceAll(path, "\\", "/")

	for _, pattern := range f.ignoredPatterns {
		if f.globMatch(pattern, normalized) {
			return false
		}
	}

	if len(f.allowedExtensions) > 0 && isFile(normalized) {
		lower := strings.ToLower(normalized)
		for _, ext := range f.allowedExtensions {
			if strings.HasSuffix(lower, strings.ToLower(ext)) {
				return true
			}
		}
		return false
	}

	return true
}

// isFile determines if a path represents a file (has a plausible extension).
func isFile(path string) bool {
	if strings.HasSuffix(path, "/") {
		return false
	}

	last := path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		last = path[i+1:]
	}

	dot := strings.LastIndex(last, ".")
	if dot <= 0 {
		// No dot, or a dotfile like .gitignore.
		return false
	}

	ext := last[dot+1:]
	if len(ext) < 1 || len(ext) > 10 {
		return false
	}

	matched, _ := regexp.MatchString("^[a-zA-Z0-9]+$", ext)
	return matched
}
