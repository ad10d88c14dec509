// Package index builds and queries the in-memory article index: discovery
// of Markdown files under the docs path, per-file fetch/parse/normalize with
// skip-on-error, deterministic ordering, filtering, and tag aggregation.
package index

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arnstead/skald/internal/document"
	"github.com/arnstead/skald/internal/frontmatter"
	"github.com/arnstead/skald/internal/source"
)

// fetchWorkers bounds concurrent document fetches during a build.
const fetchWorkers = 4

// Skipped records one file left out of the index and why. Skips never fail
// the build: one bad file must not blank the whole list.
type Skipped struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Build enumerates .md files under the context's docs path, loads and
// normalizes each, and returns the published records in display order plus
// the list of skipped files. Drafts are excluded silently; fetch failures
// are logged and skipped.
func Build(ctx context.Context, p source.Provider, rc *source.Context, branch string, logger *slog.Logger) ([]document.Record, []Skipped, error) {
	tree, err := p.Tree(ctx, rc, branch)
	if err != nil {
		return nil, nil, err
	}

	prefix := strings.TrimRight(rc.DocsPath, "/") + "/"
	var paths []string
	for _, entry := range tree {
		if entry.Type != "blob" || !strings.HasPrefix(entry.Path, prefix) {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(entry.Path), ".md") {
			continue
		}
		paths = append(paths, entry.Path)
	}

	records := make([]*document.Record, len(paths))
	var (
		mu      sync.Mutex
		skipped []Skipped
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(fetchWorkers)
	for i, path := range paths {
		g.Go(func() error {
			text, err := p.FetchMarkdown(gCtx, rc, branch, path)
			if err != nil {
				logger.Warn("failed to load article", slog.String("path", path), slog.String("error", err.Error()))
				mu.Lock()
				skipped = append(skipped, Skipped{Path: path, Reason: err.Error()})
				mu.Unlock()
				return nil
			}
			rec := document.Normalize(path, frontmatter.Parse(text))
			if rec.Draft {
				return nil
			}
			records[i] = &rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	out := make([]document.Record, 0, len(records))
	for _, rec := range records {
		if rec != nil {
			out = append(out, *rec)
		}
	}
	sortRecords(out)

	// Deterministic skip order regardless of fetch interleaving.
	sort.Slice(skipped, func(i, j int) bool { return skipped[i].Path < skipped[j].Path })

	return out, skipped, nil
}

// sortRecords orders documents with an update timestamp before those
// without, newest first; undated documents follow alphabetically by title.
// Title breaks all remaining ties, making the order total.
func sortRecords(records []document.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		aDated, bDated := a.Updated != "", b.Updated != ""
		if aDated != bDated {
			return aDated
		}
		if aDated && bDated {
			at, bt := parseWhen(a.Updated), parseWhen(b.Updated)
			if !at.Equal(bt) {
				return at.After(bt)
			}
		}
		return a.Title < b.Title
	})
}

var whenLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// parseWhen interprets an update timestamp leniently. Unparseable values
// sort as the zero time (oldest) rather than being rejected.
func parseWhen(value string) time.Time {
	for _, layout := range whenLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}
