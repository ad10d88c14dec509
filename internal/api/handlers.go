// Package api implements the knowledge-base REST API using chi.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/arnstead/skald/internal/apperr"
	"github.com/arnstead/skald/internal/kbservice"
)

// Error kinds exposed in API responses. Anything unclassified is reported
// as KindInternal with generic wording.
const (
	KindDraft       = "draft"
	KindFetchFailed = "fetch_failed"
	KindMissingTree = "missing_tree"
	KindInternal    = "internal"
)

// Handler holds API route handlers.
type Handler struct {
	svc *kbservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *kbservice.Service) *Handler {
	return &Handler{svc: svc}
}

// articlePath extracts the article path from the URL wildcard. Supports
// encoded slashes from generated clients (e.g. docs%2Fguide.md).
func articlePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// parseTags splits the comma-separated tag filter into lowercase tags.
// "tags" wins over the legacy "tag" parameter.
func parseTags(q url.Values) []string {
	raw := q.Get("tags")
	if raw == "" {
		raw = q.Get("tag")
	}
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		if t := strings.ToLower(strings.TrimSpace(part)); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// ListArticles handles GET /api/articles with optional q and tags filters.
func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("q"))
	tags := parseTags(q)

	items, err := h.svc.List(r.Context(), query, tags)
	if err != nil {
		h.writeLoadError(w, "list articles failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"articles": items,
		"total":    len(items),
		"skipped":  h.svc.Skipped(),
	})
}

// GetArticle handles GET /api/articles/*.
func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	path := articlePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody(KindInternal, "no article was specified"))
		return
	}

	article, err := h.svc.Get(r.Context(), path)
	if err != nil {
		var fe *apperr.FetchError
		switch {
		case errors.Is(err, apperr.ErrDraft):
			writeJSON(w, http.StatusNotFound, errorBody(KindDraft, "this article is marked as draft and is not published yet"))
		case errors.As(err, &fe):
			writeJSON(w, http.StatusNotFound, errorBody(KindFetchFailed, fe.Error()))
		default:
			slog.Error("get article failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody(KindInternal, "unable to load the requested article"))
		}
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// ListTags handles GET /api/tags.
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.TagCounts(r.Context())
	if err != nil {
		h.writeLoadError(w, "list tags failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": counts})
}

// Reload handles POST /api/reload: a full rebuild is the only refresh path.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reload(r.Context()); err != nil {
		h.writeLoadError(w, "reload failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeLoadError maps whole-load failures to a single user-visible message
// per condition.
func (h *Handler) writeLoadError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, slog.String("error", err.Error()))
	switch {
	case errors.Is(err, apperr.ErrMissingTreeData):
		writeJSON(w, http.StatusBadGateway, errorBody(KindMissingTree, apperr.ErrMissingTreeData.Error()))
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody(KindInternal, "unable to load knowledge base content"))
	}
}
