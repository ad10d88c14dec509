package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/arnstead/skald/internal/kbservice"
)

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(svc *kbservice.Service) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	// Articles.
	r.Get("/articles", h.ListArticles)
	r.Get("/articles/*", h.GetArticle)

	// Tag index.
	r.Get("/tags", h.ListTags)

	// Full rebuild.
	r.Post("/reload", h.Reload)

	return r
}
