// Package frontmatter splits a Markdown document into its metadata block and
// body. The metadata grammar is a deliberately small subset of YAML: scalar
// key/value lines, inline bracket lists, and open lists continued by dash
// lines. Front matter is hand-edited text, so the parser never fails: any
// line it cannot interpret is skipped and a malformed block degrades to an
// empty metadata map.
package frontmatter

import (
	"regexp"
	"strconv"
	"strings"
)

// FrontMatter holds the parsed metadata and the remaining document body.
// Scalar values are string, bool, or float64; list values are []any.
// Body is trimmed; when no valid metadata block exists it is the entire
// trimmed input and Meta is empty.
type FrontMatter struct {
	Meta map[string]any
	Body string
}

var (
	// The block opens with "---" on the first line and closes with a "---" line.
	blockRe = regexp.MustCompile(`(?s)^---\r?\n(.*?)\r?\n---(?:\r?\n|$)`)
	keyRe   = regexp.MustCompile(`^([A-Za-z0-9_\- ]+):\s*(.*)$`)
)

// Parse extracts front matter from raw document text. It never fails:
// inputs without a well-formed delimiter pair yield empty metadata and the
// whole trimmed input as body.
func Parse(raw string) FrontMatter {
	if !strings.HasPrefix(raw, "---") {
		return FrontMatter{Meta: map[string]any{}, Body: strings.TrimSpace(raw)}
	}

	m := blockRe.FindStringSubmatch(raw)
	if m == nil {
		return FrontMatter{Meta: map[string]any{}, Body: strings.TrimSpace(raw)}
	}

	return FrontMatter{
		Meta: parseBlock(m[1]),
		Body: strings.TrimSpace(raw[len(m[0]):]),
	}
}

// parseBlock runs a two-state line machine over the metadata block:
// scanning for key lines, or collecting dash items into an open list.
func parseBlock(block string) map[string]any {
	const (
		scanningKey = iota
		inOpenList
	)

	meta := map[string]any{}
	state := scanningKey
	listKey := ""

	for _, rawLine := range strings.Split(block, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}

		if state == inOpenList {
			if item, ok := strings.CutPrefix(line, "-"); ok && item != "" {
				list, _ := meta[listKey].([]any)
				meta[listKey] = append(list, cleanScalar(strings.TrimSpace(item)))
				continue
			}
		}

		kv := keyRe.FindStringSubmatch(line)
		if kv == nil {
			// Unparseable line: skip, keep going.
			continue
		}
		key := strings.TrimSpace(kv[1])
		value := strings.TrimSpace(kv[2])

		switch {
		case value == "":
			// Bare "key:" opens a list collected from subsequent dash lines.
			meta[key] = []any{}
			state = inOpenList
			listKey = key

		case strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]"):
			meta[key] = parseInlineList(value)
			// Dash lines may still append to a bracket list.
			state = inOpenList
			listKey = key

		default:
			meta[key] = cleanScalar(value)
			state = scanningKey
		}
	}

	return meta
}

func parseInlineList(value string) []any {
	inner := strings.TrimSpace(value[1 : len(value)-1])
	if inner == "" {
		return []any{}
	}
	items := []any{}
	for _, part := range strings.Split(inner, ",") {
		item := cleanScalar(strings.TrimSpace(part))
		if s, ok := item.(string); ok && s == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}

// cleanScalar interprets a raw scalar: the literals "true"/"false" become
// booleans, strings that parse fully as a number become float64, and any
// other value has a single layer of matching surrounding quotes stripped.
func cleanScalar(value string) any {
	switch value {
	case "true":
		return true
	case "false":
		return false
	}

	if value != "" {
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			return n
		}
	}

	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if first == last && (first == '"' || first == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}
