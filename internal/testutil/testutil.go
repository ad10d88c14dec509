// Package testutil provides shared test helpers for faking the document
// source protocol.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// FakeRepo serves the document source protocol for a fixed set of files:
// the repository metadata endpoint, the recursive tree endpoint, and the
// raw-content endpoint, all on one test server. Request counters let tests
// assert cache idempotence.
type FakeRepo struct {
	Branch string
	Files  map[string]string
	// Broken paths appear in the tree listing but fail on raw fetch.
	Broken map[string]bool

	mu           sync.Mutex
	metaRequests int
	treeRequests int
	rawRequests  map[string]int
}

// NewFakeRepo starts a test server for the given branch and files (keyed by
// repository-relative path). The server is shut down with the test.
func NewFakeRepo(t *testing.T, branch string, files map[string]string) (*FakeRepo, *httptest.Server) {
	t.Helper()
	f := &FakeRepo{Branch: branch, Files: files, rawRequests: map[string]int{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *FakeRepo) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/"), "/")

	switch {
	case len(parts) == 3 && parts[0] == "repos":
		f.metaRequests++
		writeJSON(w, map[string]any{"default_branch": f.Branch})

	case len(parts) == 6 && parts[0] == "repos" && parts[3] == "git" && parts[4] == "trees":
		f.treeRequests++
		tree := []map[string]string{}
		for path := range f.Files {
			tree = append(tree, map[string]string{"path": path, "type": "blob"})
		}
		for path := range f.Broken {
			tree = append(tree, map[string]string{"path": path, "type": "blob"})
		}
		writeJSON(w, map[string]any{"tree": tree})

	case len(parts) >= 4:
		// Raw content: /{owner}/{repo}/{branch}/{path...}
		path := strings.Join(parts[3:], "/")
		f.rawRequests[path]++
		content, ok := f.Files[path]
		if !ok || f.Broken[path] {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(content))

	default:
		http.NotFound(w, r)
	}
}

// MetaRequests returns how many metadata-endpoint requests were served.
func (f *FakeRepo) MetaRequests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.metaRequests
}

// TreeRequests returns how many tree-endpoint requests were served.
func (f *FakeRepo) TreeRequests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.treeRequests
}

// RawRequests returns how many raw-content requests were served for path.
func (f *FakeRepo) RawRequests(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rawRequests[path]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
