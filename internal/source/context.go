// Package source resolves and fetches knowledge-base content: a GitHub-backed
// client with a two-tier cache and same-origin fallback, plus a read-only
// local filesystem provider for same-host deployments.
package source

import (
	"context"
	"sync"

	"github.com/arnstead/skald/internal/apperr"
)

// TreeEntry is one entry of the recursive repository file listing.
// Type "blob" denotes a file.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

// Provider resolves a branch, lists repository files, and fetches one
// file's raw text.
type Provider interface {
	DefaultBranch(ctx context.Context, rc *Context) (string, error)
	Tree(ctx context.Context, rc *Context, branch string) ([]TreeEntry, error)
	FetchMarkdown(ctx context.Context, rc *Context, branch, path string) (string, error)
}

// Context identifies one knowledge-base source and scopes its per-session
// cache. Immutable except for the cache fields, which are set once on first
// resolution and reused thereafter.
type Context struct {
	Owner    string
	Repo     string
	DocsPath string
	Branch   string // optional override; wins over discovery
	Offline  bool   // reserved, does not alter fetch behavior

	mu     sync.Mutex
	branch string
	tree   []TreeEntry
}

// NewContext validates the required fields and applies the docs path
// default. Missing owner or repo fails before any network call.
func NewContext(owner, repo, docsPath, branch string) (*Context, error) {
	if owner == "" || repo == "" {
		return nil, apperr.ErrMissingConfiguration
	}
	if docsPath == "" {
		docsPath = "docs"
	}
	return &Context{Owner: owner, Repo: repo, DocsPath: docsPath, Branch: branch}, nil
}

func (rc *Context) cachedBranch() string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.branch
}

func (rc *Context) storeBranch(branch string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.branch == "" {
		rc.branch = branch
	}
}

func (rc *Context) cachedTree() []TreeEntry {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.tree
}

func (rc *Context) storeTree(tree []TreeEntry) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.tree == nil {
		rc.tree = tree
	}
}
