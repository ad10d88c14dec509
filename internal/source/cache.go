package source

import "sync"

// ProcessCache is the process-wide tier of the two-tier cache. Keys follow a
// documented scheme so tests can seed and inspect entries directly:
// branches are keyed "owner/repo", trees "owner/repo#branch". Entries are
// never invalidated for the life of the process; concurrent resolvers may
// race to populate a key, which is harmless because values are deterministic
// (last writer wins).
type ProcessCache struct {
	mu       sync.RWMutex
	branches map[string]string
	trees    map[string][]TreeEntry
}

// NewProcessCache creates an empty process-wide cache.
func NewProcessCache() *ProcessCache {
	return &ProcessCache{
		branches: map[string]string{},
		trees:    map[string][]TreeEntry{},
	}
}

// RepoKey is the branch-cache key for a context.
func RepoKey(rc *Context) string {
	return rc.Owner + "/" + rc.Repo
}

// TreeKey is the tree-cache key for a context and branch.
func TreeKey(rc *Context, branch string) string {
	return RepoKey(rc) + "#" + branch
}

// Branch returns the cached default branch for key, if populated.
func (c *ProcessCache) Branch(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.branches[key]
	return b, ok
}

// SetBranch stores the default branch for key.
func (c *ProcessCache) SetBranch(key, branch string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.branches[key] = branch
}

// Tree returns the cached file listing for key, if populated.
func (c *ProcessCache) Tree(key string) ([]TreeEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.trees[key]
	return t, ok
}

// SetTree stores the file listing for key.
func (c *ProcessCache) SetTree(key string, tree []TreeEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trees[key] = tree
}
