// internal/api/studio_routes.go
//
// Studio routes: editorial auxiliary records from the studio database.
// Public reads; the records are published content.

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aurelle/storefront/internal/studio"
)

// handleStudioBySlug returns one published record.
func (h *Handler) handleStudioBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	rec, err := h.Studio.GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, studio.ErrNotFound) {
			fail(w, http.StatusNotFound, "studio record not found")
			return
		}
		internalError(w, h.Log, "studio", err)
		return
	}
	ok(w, envelope{"record": rec})
}

// handleStudioList returns the records attached to a product handle,
// newest first.  `?product=` is required; an unknown handle is an empty
// list, not a 404.
func (h *Handler) handleStudioList(w http.ResponseWriter, r *http.Request) {
	handle := r.URL.Query().Get("product")
	if handle == "" {
		fail(w, http.StatusBadRequest, "product query parameter is required")
		return
	}

	recs, err := h.Studio.ListByProduct(r.Context(), handle)
	if err != nil {
		internalError(w, h.Log, "studio", err)
		return
	}
	if recs == nil {
		recs = []studio.Record{}
	}
	ok(w, envelope{"records": recs})
}
