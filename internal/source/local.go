package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/arnstead/skald/internal/apperr"
)

// Local implements Provider on top of a local directory, for deployments
// where the documents live next to the service instead of in a remote
// repository. It is read-only.
type Local struct {
	root string // absolute path to the content root
}

// NewLocal creates a Local provider rooted at the given directory.
// The directory must already exist.
func NewLocal(root string) (*Local, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("source: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("source: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source: root is not a directory: %s", abs)
	}
	return &Local{root: abs}, nil
}

// DefaultBranch returns the context's configured branch, or "main". There
// is nothing to discover locally.
func (l *Local) DefaultBranch(_ context.Context, rc *Context) (string, error) {
	if rc.Branch != "" {
		return rc.Branch, nil
	}
	return "main", nil
}

// Tree walks the content root and lists every regular file as a blob entry
// with a slash-separated relative path.
func (l *Local) Tree(_ context.Context, _ *Context, _ string) ([]TreeEntry, error) {
	var out []TreeEntry
	err := filepath.WalkDir(l.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(l.root, p)
		if err != nil {
			return err
		}
		out = append(out, TreeEntry{Path: filepath.ToSlash(rel), Type: "blob"})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("source: list local tree: %w", err)
	}
	return out, nil
}

// FetchMarkdown reads one file from the content root.
func (l *Local) FetchMarkdown(_ context.Context, _ *Context, _ string, path string) (string, error) {
	abs, err := l.safePath(path)
	if err != nil {
		return "", &apperr.FetchError{Path: path}
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", &apperr.FetchError{Path: path}
	}
	return string(data), nil
}

// safePath resolves a relative path against the content root and rejects
// any result that escapes it.
func (l *Local) safePath(rel string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(strings.TrimLeft(rel, "/")))
	abs, err := filepath.Abs(filepath.Join(l.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("source: resolve path: %w", err)
	}
	if abs != l.root && !strings.HasPrefix(abs, l.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("source: path escapes content root: %s", rel)
	}
	return abs, nil
}

// Root returns the absolute content root, for static serving and watching.
func (l *Local) Root() string {
	return l.root
}
