// internal/api/assist_routes.go
//
// Assist route: one completion call per request.  The frontend owns the
// transcript; nothing is stored here.

package api

import "net/http"

// handleChat forwards the conversation to the completion API.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeAndValidate(r, h.Validate, &req); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := h.Assist.Complete(r.Context(), req.Messages)
	if err != nil {
		internalError(w, h.Log, "assist", err)
		return
	}
	ok(w, envelope{"message": reply})
}
