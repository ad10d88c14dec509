package source

import (
	"context"
	"log/slog"
)

// RawStore is a persistent read-through store for raw file contents.
// Implemented by rawcache.Store.
type RawStore interface {
	Get(key string) (string, bool, error)
	Put(key, content string) error
}

// CachedProvider decorates a Provider with a persistent read-through cache
// for raw markdown. Branch and tree resolution stay memory-only (they are
// the volatile part of the protocol); only fetched file contents persist,
// keyed "owner/repo#branch/path".
type CachedProvider struct {
	next   Provider
	store  RawStore
	logger *slog.Logger
}

// WithRawCache wraps p so markdown fetches read through store.
func WithRawCache(p Provider, store RawStore, logger *slog.Logger) *CachedProvider {
	return &CachedProvider{next: p, store: store, logger: logger}
}

// Underlying returns the wrapped provider.
func (c *CachedProvider) Underlying() Provider {
	return c.next
}

// DefaultBranch delegates to the wrapped provider.
func (c *CachedProvider) DefaultBranch(ctx context.Context, rc *Context) (string, error) {
	return c.next.DefaultBranch(ctx, rc)
}

// Tree delegates to the wrapped provider.
func (c *CachedProvider) Tree(ctx context.Context, rc *Context, branch string) ([]TreeEntry, error) {
	return c.next.Tree(ctx, rc, branch)
}

// FetchMarkdown serves from the store when possible, otherwise fetches and
// stores. Store failures are logged, never escalated: the cache is an
// optimization, not a source of truth.
func (c *CachedProvider) FetchMarkdown(ctx context.Context, rc *Context, branch, path string) (string, error) {
	key := TreeKey(rc, branch) + "/" + path

	if text, ok, err := c.store.Get(key); err != nil {
		c.logger.Warn("raw cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	} else if ok {
		return text, nil
	}

	text, err := c.next.FetchMarkdown(ctx, rc, branch, path)
	if err != nil {
		return "", err
	}
	if err := c.store.Put(key, text); err != nil {
		c.logger.Warn("raw cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return text, nil
}
