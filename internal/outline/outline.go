// Package outline derives an in-page navigation list from rendered article
// markup: level-2 and level-3 headings with collision-free anchor slugs.
package outline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Heading is one outline entry. Level is 2 or 3; Slug is unique within one
// document's outline.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	Slug  string `json:"slug"`
}

var (
	nonSlugRe = regexp.MustCompile(`[^a-z0-9\s-]`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

// Enhance post-processes rendered article markup: it assigns anchor ids to
// h2/h3 headings (keeping ids the renderer already set), hardens
// absolute-URL links with target/rel attributes, and returns the updated
// markup together with the outline. A nil outline means the document has no
// h2/h3 headings and callers should hide the navigation panel. No other
// markup is altered.
func Enhance(markup string) (string, []Heading, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", nil, fmt.Errorf("outline: parse markup: %w", err)
	}

	counts := map[string]int{}
	var headings []Heading

	doc.Find("h2, h3").Each(func(_ int, sel *goquery.Selection) {
		level := 2
		if goquery.NodeName(sel) == "h3" {
			level = 3
		}
		text := sel.Text()

		// The slug counter advances for every heading, even when an
		// existing id wins, so later collisions stay deterministic.
		slug := nextSlug(text, counts)
		id, ok := sel.Attr("id")
		if !ok || id == "" {
			id = slug
			sel.SetAttr("id", id)
		}

		headings = append(headings, Heading{Level: level, Text: text, Slug: id})
	})

	doc.Find(`a[href^="http"]`).Each(func(_ int, sel *goquery.Selection) {
		sel.SetAttr("target", "_blank")
		sel.SetAttr("rel", "noopener")
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", nil, fmt.Errorf("outline: serialize markup: %w", err)
	}
	return out, headings, nil
}

// nextSlug computes a collision-free anchor for the heading text: lowercase,
// trimmed, stripped to [a-z0-9\s-], whitespace collapsed to hyphens. Repeats
// of a base slug get a -N suffix; an empty base falls back to a positional
// section-N anchor.
func nextSlug(text string, counts map[string]int) string {
	base := strings.TrimSpace(strings.ToLower(text))
	base = nonSlugRe.ReplaceAllString(base, "")
	base = spaceRe.ReplaceAllString(base, "-")

	n := counts[base]
	counts[base] = n + 1

	if n > 0 {
		return fmt.Sprintf("%s-%d", base, n)
	}
	if base == "" {
		return fmt.Sprintf("section-%d", len(counts)+1)
	}
	return base
}
