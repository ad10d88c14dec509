// Package kbservice coordinates the content pipeline: branch resolution,
// index building, filtered listings, and single-article loading with
// rendering and outline extraction.
package kbservice

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/arnstead/skald/internal/apperr"
	"github.com/arnstead/skald/internal/document"
	"github.com/arnstead/skald/internal/frontmatter"
	"github.com/arnstead/skald/internal/index"
	"github.com/arnstead/skald/internal/outline"
	"github.com/arnstead/skald/internal/render"
	"github.com/arnstead/skald/internal/source"
)

// ListItem is one article in a list response. Bodies stay server-side; the
// list carries only what the card view shows.
type ListItem struct {
	Path        string   `json:"path"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Updated     string   `json:"updated,omitempty"`
	ReadMinutes int      `json:"read_time_minutes"`
}

// Article is the detail representation of one document: normalized
// metadata, rendered markup, and the navigation outline (nil when the
// document has no h2/h3 headings).
type Article struct {
	Path        string            `json:"path"`
	Title       string            `json:"title"`
	Category    string            `json:"category"`
	Tags        []string          `json:"tags"`
	Updated     string            `json:"updated,omitempty"`
	ReadMinutes int               `json:"read_time_minutes"`
	HTML        string            `json:"html"`
	Outline     []outline.Heading `json:"outline,omitempty"`
}

// Service owns the document set for one knowledge-base source.
type Service struct {
	provider        source.Provider
	rc              *source.Context
	logger          *slog.Logger
	defaultCategory string

	mu      sync.RWMutex
	idx     *index.Index
	skipped []index.Skipped
}

// New creates a Service. defaultCategory is the display label for documents
// without a category.
func New(provider source.Provider, rc *source.Context, defaultCategory string, logger *slog.Logger) *Service {
	return &Service{
		provider:        provider,
		rc:              rc,
		logger:          logger,
		defaultCategory: defaultCategory,
	}
}

// Reload resolves the branch and rebuilds the whole index. The previous
// document set stays live until the rebuild succeeds.
func (s *Service) Reload(ctx context.Context) error {
	branch, err := s.provider.DefaultBranch(ctx, s.rc)
	if err != nil {
		return err
	}
	records, skipped, err := index.Build(ctx, s.provider, s.rc, branch, s.logger)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.idx = index.New(records, s.defaultCategory)
	s.skipped = skipped
	s.mu.Unlock()

	s.logger.Info("knowledge base indexed",
		slog.String("branch", branch),
		slog.Int("articles", len(records)),
		slog.Int("skipped", len(skipped)))
	return nil
}

// List returns list items matching the free-text query and tag filters.
func (s *Service) List(ctx context.Context, query string, tags []string) ([]ListItem, error) {
	ix, err := s.current(ctx)
	if err != nil {
		return nil, err
	}

	records := ix.Filter(query, tags)
	items := make([]ListItem, len(records))
	for i, rec := range records {
		items[i] = ListItem{
			Path:        rec.Path,
			Title:       rec.Title,
			Description: rec.Description,
			Category:    rec.CategoryLabel(s.defaultCategory),
			Tags:        rec.Tags,
			Updated:     rec.Updated,
			ReadMinutes: rec.ReadMinutes,
		}
	}
	return items, nil
}

// TagCounts returns tag occurrences across the unfiltered document set.
func (s *Service) TagCounts(ctx context.Context) (map[string]int, error) {
	ix, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return ix.TagCounts(), nil
}

// Skipped returns the files left out of the last index build.
func (s *Service) Skipped() []index.Skipped {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.skipped
}

// Get loads one article by repository-relative path, independent of the
// index: the document is fetched fresh, parsed, rendered, and outlined.
// A draft surfaces apperr.ErrDraft so callers can word it as "not
// published" rather than a load failure.
func (s *Service) Get(ctx context.Context, path string) (*Article, error) {
	path = strings.TrimLeft(path, "/")

	branch, err := s.provider.DefaultBranch(ctx, s.rc)
	if err != nil {
		return nil, err
	}
	text, err := s.provider.FetchMarkdown(ctx, s.rc, branch, path)
	if err != nil {
		return nil, err
	}

	fm := frontmatter.Parse(text)
	if document.IsDraft(fm.Meta) {
		return nil, apperr.ErrDraft
	}
	rec := document.Normalize(path, fm)

	markup, err := render.Markdown(rec.Body)
	if err != nil {
		return nil, err
	}
	markup, headings, err := outline.Enhance(markup)
	if err != nil {
		return nil, err
	}

	return &Article{
		Path:        rec.Path,
		Title:       rec.Title,
		Category:    rec.CategoryLabel(s.defaultCategory),
		Tags:        rec.Tags,
		Updated:     rec.Updated,
		ReadMinutes: rec.ReadMinutes,
		HTML:        markup,
		Outline:     headings,
	}, nil
}

// current returns the built index, building it on first use.
func (s *Service) current(ctx context.Context) (*index.Index, error) {
	s.mu.RLock()
	ix := s.idx
	s.mu.RUnlock()
	if ix != nil {
		return ix, nil
	}

	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx, nil
}
