// Package document normalizes parsed front matter into canonical article
// records: title and category resolution, tag and timestamp coercion, draft
// detection, read-time estimation, and excerpt derivation.
package document

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/arnstead/skald/internal/frontmatter"
)

// ExcerptLength is the target length for derived list-view excerpts.
const ExcerptLength = 220

// Record is the canonical form of one knowledge-base article. It is derived
// entirely from the front matter plus the file path and never mutated; a
// changed source file produces a new record via a fresh fetch.
type Record struct {
	Path        string   `json:"path"`
	Title       string   `json:"title"`
	Category    string   `json:"category,omitempty"` // empty means unset; display label is caller-supplied
	Tags        []string `json:"tags"`
	Updated     string   `json:"updated,omitempty"` // empty means no update timestamp
	ReadMinutes int      `json:"read_time_minutes"`
	Draft       bool     `json:"-"`
	Description string   `json:"description"`
	Body        string   `json:"-"`
}

// CategoryLabel returns the record's category, or fallback when unset.
// The label is caller-supplied to keep this package locale-independent.
func (r Record) CategoryLabel(fallback string) string {
	if r.Category == "" {
		return fallback
	}
	return r.Category
}

// Normalize maps front matter plus the file's repository-relative path into
// a Record.
func Normalize(path string, fm frontmatter.FrontMatter) Record {
	meta := fm.Meta

	title := stringValue(meta["title"])
	if title == "" {
		title = TitleFromPath(path)
	}

	description := stringValue(meta["description"])
	if description == "" {
		description = Excerpt(fm.Body, ExcerptLength)
	}

	return Record{
		Path:        path,
		Title:       title,
		Category:    category(meta),
		Tags:        NormalizeTags(meta["tags"]),
		Updated:     firstScalar(meta, "updated", "lastUpdated", "date"),
		ReadMinutes: ReadMinutes(fm.Body),
		Draft:       IsDraft(meta),
		Description: description,
		Body:        fm.Body,
	}
}

// category resolves the first present string among "category" and "section".
// A value that trims to empty leaves the category unset.
func category(meta map[string]any) string {
	for _, key := range []string{"category", "section"} {
		s, ok := meta[key].(string)
		if !ok || s == "" {
			continue
		}
		return strings.TrimSpace(s)
	}
	return ""
}

// firstScalar returns the first non-empty value among keys, stringified.
func firstScalar(meta map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := stringifyScalar(meta[key]); s != "" {
			return s
		}
	}
	return ""
}

// NormalizeTags coerces a front-matter tags value into a string list. Lists
// are stringified per element, a comma-separated string is split, anything
// else yields an empty list. Entries that trim to empty are dropped; there
// is no de-duplication.
func NormalizeTags(value any) []string {
	out := []string{}
	switch v := value.(type) {
	case []any:
		for _, item := range v {
			if s := strings.TrimSpace(stringifyScalar(item)); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, part := range strings.Split(v, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// IsDraft reports whether the metadata marks a document as unpublished:
// draft true (boolean or the string "true" in any case), published exactly
// false, or status equal to "draft" case-insensitively.
func IsDraft(meta map[string]any) bool {
	switch v := meta["draft"].(type) {
	case bool:
		if v {
			return true
		}
	case string:
		if strings.EqualFold(v, "true") {
			return true
		}
	}
	if published, ok := meta["published"].(bool); ok && !published {
		return true
	}
	if status, ok := meta["status"].(string); ok && strings.EqualFold(status, "draft") {
		return true
	}
	return false
}

// TitleFromPath derives a display title from a file's base name: drop the
// .md extension, split on dashes and underscores, capitalize each segment.
func TitleFromPath(path string) string {
	base := path
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	if strings.EqualFold(base[max(0, len(base)-3):], ".md") {
		base = base[:len(base)-3]
	}

	parts := strings.FieldsFunc(base, func(r rune) bool { return r == '-' || r == '_' })
	for i, part := range parts {
		runes := []rune(part)
		runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}

// ReadMinutes estimates reading time at 200 words per minute, never below 1.
func ReadMinutes(body string) int {
	words := len(strings.Fields(body))
	minutes := int(math.Round(float64(words) / 200))
	if minutes < 1 {
		return 1
	}
	return minutes
}

var (
	fencedCodeRe = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe = regexp.MustCompile("`[^`]*`")
	imageRe      = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkRe       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	markerRe     = regexp.MustCompile(`[#>*_~]`)
	spaceRe      = regexp.MustCompile(`\s+`)
)

// Excerpt derives a plain-text preview from a Markdown body: code blocks and
// spans removed, images dropped, links reduced to their text, residual
// emphasis/heading/quote markers stripped, whitespace collapsed. The result
// is truncated to length with an ellipsis only when truncation occurred.
func Excerpt(body string, length int) string {
	text := fencedCodeRe.ReplaceAllString(body, " ")
	text = inlineCodeRe.ReplaceAllString(text, " ")
	text = imageRe.ReplaceAllString(text, " ")
	text = linkRe.ReplaceAllString(text, "$1")
	text = markerRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))

	runes := []rune(text)
	if len(runes) <= length {
		return text
	}
	return strings.TrimRight(string(runes[:length]), " ") + "…"
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

// stringifyScalar renders a front-matter scalar for display purposes.
func stringifyScalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}
