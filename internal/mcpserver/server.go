// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes read-only knowledge-base tools for LLM integration via
// stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/arnstead/skald/internal/kbservice"
)

// Server wraps the MCP server with knowledge-base tools.
type Server struct {
	mcp *server.MCPServer
	svc *kbservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *kbservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Skald",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_articles",
		mcp.WithDescription("Search published articles by text query and/or tags. "+
			"Returns article metadata including path, title, category, and excerpt."),
		mcp.WithString("query", mcp.Description("Substring to match against titles, descriptions, tags, and body text")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags; articles must carry every listed tag")),
	), s.searchArticles)

	s.mcp.AddTool(mcp.NewTool("read_article",
		mcp.WithDescription("Read a single article: normalized metadata, raw Markdown body, "+
			"rendered HTML, and heading outline. Draft articles are not readable."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Repository path of the article (e.g. docs/guides/setup.md)")),
	), s.readArticle)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List all tags across published articles with usage counts."),
	), s.listTags)

	// Resource: article front-matter format.
	s.mcp.AddResource(
		mcp.NewResource("skald://article-format", "Article Format",
			mcp.WithResourceDescription("Front-matter conventions recognized when articles are indexed."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readArticleFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchArticles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := ""
	if q, err := req.RequireString("query"); err == nil {
		query = q
	}
	rawTags := ""
	if tv, err := req.RequireString("tags"); err == nil {
		rawTags = tv
	}
	var tags []string
	for _, part := range strings.Split(rawTags, ",") {
		if t := strings.ToLower(strings.TrimSpace(part)); t != "" {
			tags = append(tags, t)
		}
	}

	items, err := s.svc.List(ctx, strings.TrimSpace(query), tags)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readArticle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	article, err := s.svc.Get(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("unable to read %s: %v", path, err)), nil
	}
	out, _ := json.MarshalIndent(article, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	counts, err := s.svc.TagCounts(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(counts, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readArticleFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "skald://article-format",
			MIMEType: "text/markdown",
			Text:     ArticleFormatContract,
		},
	}, nil
}
