// Package render converts Markdown bodies to HTML. The engine fills the
// external-renderer slot in the pipeline and stays behind this package so
// it can be swapped without touching callers.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// engine is safe for concurrent use; a single instance serves all requests.
var engine = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Linkify),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// Markdown renders a Markdown body to HTML.
func Markdown(body string) (string, error) {
	var buf bytes.Buffer
	if err := engine.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return buf.String(), nil
}
