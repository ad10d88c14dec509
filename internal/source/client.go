package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/arnstead/skald/internal/apperr"
)

const (
	defaultAPIBase = "https://api.github.com"
	defaultRawBase = "https://raw.githubusercontent.com"
)

// Client fetches repository metadata, file listings, and raw content over
// the GitHub protocol shape. Branch and tree lookups go through the
// two-tier cache (per-context, then process-wide); raw content fetches fall
// back to a same-origin URL when the content host fails, so deployments
// that serve documents from the page's own origin work without extra
// configuration.
type Client struct {
	http         *http.Client
	cache        *ProcessCache
	apiBase      string
	rawBase      string
	fallbackBase string
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithAPIBase overrides the metadata/tree endpoint base URL.
func WithAPIBase(base string) ClientOption {
	return func(c *Client) { c.apiBase = strings.TrimRight(base, "/") }
}

// WithRawBase overrides the raw-content endpoint base URL.
func WithRawBase(base string) ClientOption {
	return func(c *Client) { c.rawBase = strings.TrimRight(base, "/") }
}

// WithFallbackBase sets the origin used for the same-origin fallback fetch.
// Paths are rooted at "/" under this base.
func WithFallbackBase(base string) ClientOption {
	return func(c *Client) { c.fallbackBase = strings.TrimRight(base, "/") }
}

// NewClient creates a Client backed by the given process-wide cache.
func NewClient(cache *ProcessCache, opts ...ClientOption) *Client {
	c := &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		cache:   cache,
		apiBase: defaultAPIBase,
		rawBase: defaultRawBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultBranch resolves the repository's default branch. An explicit
// branch on the context always wins over discovery; otherwise the
// per-context cache and the process-wide cache are consulted before a
// single metadata request. A missing default_branch field resolves to
// "main".
func (c *Client) DefaultBranch(ctx context.Context, rc *Context) (string, error) {
	if rc.Branch != "" {
		return rc.Branch, nil
	}
	if b := rc.cachedBranch(); b != "" {
		return b, nil
	}
	if b, ok := c.cache.Branch(RepoKey(rc)); ok {
		return b, nil
	}

	var meta struct {
		DefaultBranch string `json:"default_branch"`
	}
	if err := c.getJSON(ctx, c.repoURL(rc), &meta); err != nil {
		return "", err
	}

	branch := meta.DefaultBranch
	if branch == "" {
		branch = "main"
	}
	c.cache.SetBranch(RepoKey(rc), branch)
	rc.storeBranch(branch)
	return branch, nil
}

// Tree fetches the recursive file listing for branch, once per cache key.
func (c *Client) Tree(ctx context.Context, rc *Context, branch string) ([]TreeEntry, error) {
	if t := rc.cachedTree(); t != nil {
		return t, nil
	}
	if t, ok := c.cache.Tree(TreeKey(rc, branch)); ok {
		return t, nil
	}

	var payload struct {
		Tree *[]TreeEntry `json:"tree"`
	}
	treeURL := fmt.Sprintf("%s/git/trees/%s?recursive=1", c.repoURL(rc), url.PathEscape(branch))
	if err := c.getJSON(ctx, treeURL, &payload); err != nil {
		return nil, err
	}
	if payload.Tree == nil {
		return nil, apperr.ErrMissingTreeData
	}

	tree := *payload.Tree
	c.cache.SetTree(TreeKey(rc, branch), tree)
	rc.storeTree(tree)
	return tree, nil
}

// FetchMarkdown attempts a direct fetch from the content host and, on any
// failure, exactly one same-origin fallback fetch of the same path rooted
// at "/". Both failing yields a FetchError carrying the path.
func (c *Client) FetchMarkdown(ctx context.Context, rc *Context, branch, path string) (string, error) {
	rawURL := fmt.Sprintf("%s/%s/%s/%s/%s",
		c.rawBase, url.PathEscape(rc.Owner), url.PathEscape(rc.Repo),
		url.PathEscape(branch), encodePath(path))
	if text, err := c.getText(ctx, rawURL); err == nil {
		return text, nil
	}

	fallbackURL := c.fallbackBase + "/" + strings.TrimLeft(path, "/")
	if text, err := c.getText(ctx, fallbackURL); err == nil {
		return text, nil
	}

	return "", &apperr.FetchError{Path: path}
}

func (c *Client) repoURL(rc *Context) string {
	return fmt.Sprintf("%s/repos/%s/%s", c.apiBase, url.PathEscape(rc.Owner), url.PathEscape(rc.Repo))
}

func (c *Client) getJSON(ctx context.Context, rawURL string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("source: build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("source: request %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("source: request %s failed with status %d", rawURL, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("source: decode %s: %w", rawURL, err)
	}
	return nil
}

func (c *Client) getText(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// encodePath URL-encodes each path segment while keeping the separators.
func encodePath(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
