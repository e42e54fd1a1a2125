// Package vault provides file system operations for the Obsidian vault the
// publisher reads from and writes back to.
package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ericmwalk/obsidian-mbpublish/internal/pathfilter"
)

// ErrLinkNotFound is returned when a wikilink target resolves to no file in
// the vault. The upload pipeline treats it as a skippable condition.
var ErrLinkNotFound = errors.New("link target not found in vault")

// trashDir is where Trash moves files, relative to the vault root.
const trashDir = ".trash"

// Service provides read/write/resolve/trash operations rooted at one vault.
type Service struct {
	vaultPath string
	filter    *pathfilter.Filter
	locks     sync.Map // vault-relative path -> *sync.Mutex
}

// New creates a Service for the vault at vaultPath.
func New(vaultPath string, f *pathfilter.Filter) *Service {
	absPath, _ := filepath.Abs(vaultPath)
	if f == nil {
		f = pathfilter.New(nil)
	}
	return &Service{
		vaultPath: absPath,
		filter:    f,
	}
}

// ResolvePath resolves a vault-relative path to an absolute one and rejects
// traversal outside the vault.
func (s *Service) ResolvePath(relativePath string) (string, error) {
	relativePath = strings.TrimSpace(relativePath)
	relativePath = strings.TrimPrefix(relativePath, "/")

	absPath, err := filepath.Abs(filepath.Join(s.vaultPath, relativePath))
	if err != nil {
		return "", err
	}

	relPath, err := filepath.Rel(s.vaultPath, absPath)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(relPath, "..") {
		return "", fmt.Errorf("path traversal not allowed: %s", relativePath)
	}

	return absPath, nil
}

// Read returns the full text of a note.
func (s *Service) Read(path string) (string, error) {
	data, err := s.readFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadBinary returns the raw bytes of a file, typically an image attachment.
func (s *Service) ReadBinary(path string) ([]byte, error) {
	return s.readFile(path)
}

func (s *Service) readFile(path string) ([]byte, error) {
	fullPath, err := s.ResolvePath(path)
	if err != nil {
		return nil, err
	}

	if !s.filter.IsAllowed(path) {
		return nil, fmt.Errorf("access denied: %s", path)
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("permission denied: %s", path)
		}
		return nil, fmt.Errorf("failed to read file: %s - %w", path, err)
	}

	return data, nil
}

// Write replaces the full content of a note, creating parent directories as
// needed.
func (s *Service) Write(path, content string) error {
	fullPath, err := s.ResolvePath(path)
	if err != nil {
		return err
	}

	if !s.filter.IsAllowed(path) {
		return fmt.Errorf("access denied: %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write file: %s - %w", path, err)
	}

	return nil
}

// ResolveLink resolves a wikilink target to a vault-relative path, using the
// linking note's own path to disambiguate. Resolution order follows the
// editor's: a target containing a slash is tried as a vault path directly;
// a bare name matches by file name anywhere in the vault, preferring the
// source note's directory, then the shortest path.
func (s *Service) ResolveLink(target, sourcePath string) (string, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", ErrLinkNotFound
	}

	if strings.Contains(target, "/") {
		for _, candidate := range []string{target, target + ".md"} {
			if s.fileExists(candidate) {
				return candidate, nil
			}
		}
		return "", fmt.Errorf("%w: %s", ErrLinkNotFound, target)
	}

	names := []string{target}
	if !strings.Contains(target, ".") {
		names = append(names, target+".md")
	}

	var candidates []string
	for _, rel := range s.listFiles() {
		base := filepath.Base(rel)
		for _, name := range names {
			if strings.EqualFold(base, name) {
				candidates = append(candidates, rel)
			}
		}
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: %s", ErrLinkNotFound, target)
	}

	sourceDir := filepath.ToSlash(filepath.Dir(sourcePath))
	sort.Slice(candidates, func(i, j int) bool {
		iSame := filepath.ToSlash(filepath.Dir(candidates[i])) == sourceDir
		jSame := filepath.ToSlash(filepath.Dir(candidates[j])) == sourceDir
		if iSame != jSame {
			return iSame
		}
		if len(candidates[i]) != len(candidates[j]) {
			return len(candidates[i]) < len(candidates[j])
		}
		return candidates[i] < candidates[j]
	})

	return candidates[0], nil
}

func (s *Service) fileExists(path string) bool {
	fullPath, err := s.ResolvePath(path)
	if err != nil || !s.filter.IsAllowed(path) {
		return false
	}
	info, err := os.Stat(fullPath)
	return err == nil && !info.IsDir()
}

// listFiles recursively collects every allowed file in the vault, as
// vault-relative slash paths.
func (s *Service) listFiles() []string {
	var files []string
	s.walk(s.vaultPath, &files)
	return files
}

func (s *Service) walk(dirPath string, files *[]string) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return
	}

	for _, entry := range entries {
		fullPath := filepath.Join(dirPath, entry.Name())
		rel, err := filepath.Rel(s.vaultPath, fullPath)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)

		if entry.IsDir() {
			s.walk(fullPath, files)
		} else if entry.Type().IsRegular() && s.filter.IsAllowed(rel) {
			*files = append(*files, rel)
		}
	}
}

// Trash moves a file into the vault's .trash folder instead of deleting it.
// A name collision in the trash gets a numeric suffix.
func (s *Service) Trash(path string) error {
	fullPath, err := s.ResolvePath(path)
	if err != nil {
		return err
	}

	if !s.filter.IsAllowed(path) {
		return fmt.Errorf("access denied: %s", path)
	}

	if _, err := os.Stat(fullPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("file not found: %s", path)
		}
		return fmt.Errorf("failed to stat file: %s - %w", path, err)
	}

	trashRoot := filepath.Join(s.vaultPath, trashDir)
	if err := os.MkdirAll(trashRoot, 0o755); err != nil {
		return fmt.Errorf("failed to create trash directory: %w", err)
	}

	base := filepath.Base(fullPath)
	dest := filepath.Join(trashRoot, base)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(dest); errors.Is(err, fs.ErrNotExist) {
			break
		}
		dest = filepath.Join(trashRoot, fmt.Sprintf("%s-%d%s", stem, counter, ext))
	}

	if err := os.Rename(fullPath, dest); err != nil {
		return fmt.Errorf("failed to move file to trash: %s - %w", path, err)
	}

	return nil
}

// Lock takes the advisory lock for one document and returns the release
// function. Pipelines hold it for a whole invocation so overlapping
// publish/upload runs on the same note serialize instead of racing on its
// front matter.
func (s *Service) Lock(path string) func() {
	actual, _ := s.locks.LoadOrStore(filepath.ToSlash(filepath.Clean(path)), &sync.Mutex{})
	mu := actual.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// VaultPath returns the absolute vault root.
func (s *Service) VaultPath() string {
	return s.vaultPath
}
