package source_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/arnstead/skald/internal/source"
	"github.com/arnstead/skald/internal/testutil"
)

// memStore is an in-memory RawStore that records keys and can be forced to
// fail on either side.
type memStore struct {
	mu     sync.Mutex
	data   map[string]string
	keys   []string
	getErr error
	putErr error
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}}
}

func (m *memStore) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	text, ok := m.data[key]
	return text, ok, nil
}

func (m *memStore) Put(key, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.data[key] = content
	m.keys = append(m.keys, key)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCachedProvider_ReadThrough(t *testing.T) {
	repo, srv := testutil.NewFakeRepo(t, "main", map[string]string{
		"docs/a.md": "# A",
	})
	rc := newContext(t)
	store := newMemStore()
	p := source.WithRawCache(newClient(srv.URL, source.NewProcessCache()), store, discardLogger())

	for i := 0; i < 2; i++ {
		text, err := p.FetchMarkdown(context.Background(), rc, "main", "docs/a.md")
		if err != nil {
			t.Fatalf("fetch %d: %v", i+1, err)
		}
		if text != "# A" {
			t.Fatalf("fetch %d text = %q", i+1, text)
		}
	}

	// Second fetch must be served from the store.
	if got := repo.RawRequests("docs/a.md"); got != 1 {
		t.Errorf("raw requests = %d, want 1", got)
	}
	wantKey := source.TreeKey(rc, "main") + "/docs/a.md"
	if len(store.keys) != 1 || store.keys[0] != wantKey {
		t.Errorf("stored keys = %v, want [%s]", store.keys, wantKey)
	}
}

func TestCachedProvider_StoreFailuresTolerated(t *testing.T) {
	repo, srv := testutil.NewFakeRepo(t, "main", map[string]string{
		"docs/a.md": "# A",
	})
	rc := newContext(t)
	store := newMemStore()
	store.getErr = errors.New("disk read failed")
	store.putErr = errors.New("disk write failed")
	p := source.WithRawCache(newClient(srv.URL, source.NewProcessCache()), store, discardLogger())

	// A broken store makes every fetch go to the provider, never an error.
	for i := 0; i < 2; i++ {
		text, err := p.FetchMarkdown(context.Background(), rc, "main", "docs/a.md")
		if err != nil {
			t.Fatalf("fetch %d: %v", i+1, err)
		}
		if text != "# A" {
			t.Fatalf("fetch %d text = %q", i+1, text)
		}
	}
	if got := repo.RawRequests("docs/a.md"); got != 2 {
		t.Errorf("raw requests = %d, want 2", got)
	}
}

func TestCachedProvider_Delegates(t *testing.T) {
	_, srv := testutil.NewFakeRepo(t, "trunk", map[string]string{
		"docs/a.md": "# A",
	})
	rc := newContext(t)
	client := newClient(srv.URL, source.NewProcessCache())
	p := source.WithRawCache(client, newMemStore(), discardLogger())

	branch, err := p.DefaultBranch(context.Background(), rc)
	if err != nil {
		t.Fatal(err)
	}
	if branch != "trunk" {
		t.Errorf("branch = %q, want trunk", branch)
	}
	tree, err := p.Tree(context.Background(), rc, branch)
	if err != nil {
		t.Fatal(err)
	}
	if len(tree) != 1 || tree[0].Path != "docs/a.md" {
		t.Errorf("tree = %+v", tree)
	}
	if p.Underlying() != client {
		t.Error("Underlying should return the wrapped provider")
	}
}
