package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arnstead/skald/internal/kbservice"
	"github.com/arnstead/skald/internal/source"
	"github.com/arnstead/skald/internal/testutil"
)

// testEnv sets up a fake repository, service, and router for testing.
func testEnv(t *testing.T, files map[string]string) (*kbservice.Service, http.Handler) {
	t.Helper()

	_, srv := testutil.NewFakeRepo(t, "main", files)
	client := source.NewClient(source.NewProcessCache(),
		source.WithAPIBase(srv.URL),
		source.WithRawBase(srv.URL),
	)
	rc, err := source.NewContext("acme", "handbook", "docs", "")
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := kbservice.New(client, rc, "General", logger)
	return svc, NewRouter(svc)
}

func defaultFiles() map[string]string {
	return map[string]string{
		"docs/guides/setup.md": "---\ntitle: Setup Guide\ntags: [go, install]\nupdated: 2024-03-01\n---\n\n## Install\n\nRun the installer.\n\n## Verify\n\nCheck the version.\n",
		"docs/faq.md":          "---\ntitle: FAQ\ntags: [go]\n---\n\nCommon questions.\n",
		"docs/wip.md":          "---\ntitle: WIP\ndraft: true\n---\n\nNot ready.\n",
	}
}

func TestListArticles(t *testing.T) {
	_, router := testEnv(t, defaultFiles())

	req := httptest.NewRequest(http.MethodGet, "/articles", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Articles []kbservice.ListItem `json:"articles"`
		Total    int                  `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Total != 2 {
		t.Fatalf("total = %d, want 2 (draft excluded)", resp.Total)
	}
	if resp.Articles[0].Title != "Setup Guide" {
		t.Errorf("first title = %q, want dated article first", resp.Articles[0].Title)
	}
}

func TestListArticlesFiltered(t *testing.T) {
	_, router := testEnv(t, defaultFiles())

	req := httptest.NewRequest(http.MethodGet, "/articles?tags=install", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Articles []kbservice.ListItem `json:"articles"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Articles) != 1 || resp.Articles[0].Title != "Setup Guide" {
		t.Errorf("filtered articles = %+v, want only Setup Guide", resp.Articles)
	}

	// The legacy tag parameter behaves the same.
	req = httptest.NewRequest(http.MethodGet, "/articles?tag=INSTALL", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Articles) != 1 {
		t.Errorf("tag param articles = %d, want 1", len(resp.Articles))
	}
}

func TestGetArticle(t *testing.T) {
	_, router := testEnv(t, defaultFiles())

	req := httptest.NewRequest(http.MethodGet, "/articles/docs/guides/setup.md", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var article kbservice.Article
	if err := json.Unmarshal(w.Body.Bytes(), &article); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if article.Title != "Setup Guide" {
		t.Errorf("title = %q", article.Title)
	}
	if len(article.Outline) != 2 {
		t.Errorf("outline entries = %d, want 2", len(article.Outline))
	}
	if article.HTML == "" {
		t.Error("expected rendered HTML")
	}
}

func TestGetArticleDraft(t *testing.T) {
	_, router := testEnv(t, defaultFiles())

	req := httptest.NewRequest(http.MethodGet, "/articles/docs/wip.md", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}

	var resp errResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Kind != KindDraft {
		t.Errorf("kind = %q, want %q", resp.Kind, KindDraft)
	}
}

func TestGetArticleMissing(t *testing.T) {
	_, router := testEnv(t, defaultFiles())

	req := httptest.NewRequest(http.MethodGet, "/articles/docs/nope.md", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}

	var resp errResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Kind != KindFetchFailed {
		t.Errorf("kind = %q, want %q", resp.Kind, KindFetchFailed)
	}
}

func TestGetArticleEmptyPath(t *testing.T) {
	_, router := testEnv(t, defaultFiles())

	req := httptest.NewRequest(http.MethodGet, "/articles/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestListTags(t *testing.T) {
	_, router := testEnv(t, defaultFiles())

	req := httptest.NewRequest(http.MethodGet, "/tags", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Tags map[string]int `json:"tags"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Tags["go"] != 2 {
		t.Errorf("go count = %d, want 2", resp.Tags["go"])
	}
	if resp.Tags["install"] != 1 {
		t.Errorf("install count = %d, want 1", resp.Tags["install"])
	}
}

func TestReload(t *testing.T) {
	svc, router := testEnv(t, defaultFiles())

	req := httptest.NewRequest(http.MethodPost, "/reload", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if len(svc.Skipped()) != 0 {
		t.Errorf("skipped = %v, want none", svc.Skipped())
	}
}
