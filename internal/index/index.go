package index

import (
	"strings"

	"github.com/arnstead/skald/internal/document"
)

// Index answers query and tag-filter requests over a built document set.
// Tag counts are aggregated once over the unfiltered set; the Index is
// immutable, so a changed document set means building a new Index.
type Index struct {
	docs            []document.Record
	tagCounts       map[string]int
	defaultCategory string
}

// New builds an Index over docs. defaultCategory is the display label used
// for documents without a category when matching free-text queries.
func New(docs []document.Record, defaultCategory string) *Index {
	counts := map[string]int{}
	for _, doc := range docs {
		for _, tag := range doc.Tags {
			counts[strings.ToLower(tag)]++
		}
	}
	return &Index{docs: docs, tagCounts: counts, defaultCategory: defaultCategory}
}

// Documents returns the full ordered document set.
func (ix *Index) Documents() []document.Record {
	return ix.docs
}

// TagCounts returns occurrences of each lowercased tag across the
// unfiltered document set.
func (ix *Index) TagCounts() map[string]int {
	return ix.tagCounts
}

// Filter returns documents matching the free-text query (case-insensitive
// substring over title, description, category label, space-joined tags, and
// body) and all active tag filters (AND semantics: every filter tag must
// match one of the document's tags case-insensitively, and the document
// must have at least one tag). Query and tags combine by AND.
func (ix *Index) Filter(query string, tags []string) []document.Record {
	query = strings.ToLower(strings.TrimSpace(query))

	active := make([]string, 0, len(tags))
	for _, tag := range tags {
		if t := strings.ToLower(strings.TrimSpace(tag)); t != "" {
			active = append(active, t)
		}
	}

	out := []document.Record{}
	for _, doc := range ix.docs {
		if query != "" && !ix.matchesQuery(doc, query) {
			continue
		}
		if len(active) > 0 && !matchesAllTags(doc, active) {
			continue
		}
		out = append(out, doc)
	}
	return out
}

func (ix *Index) matchesQuery(doc document.Record, query string) bool {
	haystacks := []string{
		doc.Title,
		doc.Description,
		doc.CategoryLabel(ix.defaultCategory),
		strings.Join(doc.Tags, " "),
		doc.Body,
	}
	for _, h := range haystacks {
		if h != "" && strings.Contains(strings.ToLower(h), query) {
			return true
		}
	}
	return false
}

func matchesAllTags(doc document.Record, active []string) bool {
	if len(doc.Tags) == 0 {
		return false
	}
	for _, want := range active {
		found := false
		for _, have := range doc.Tags {
			if strings.EqualFold(have, want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
