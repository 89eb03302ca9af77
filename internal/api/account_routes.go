// internal/api/account_routes.go
//
// Account routes: full profile fetch and the completeness check.  Both
// read the session cookie directly (distinct lightweight calls, never
// cached beyond the request).

package api

import (
	"net/http"

	"github.com/aurelle/storefront/internal/session"
)

// handleProfile returns the full customer profile with addresses and
// wholesale metafields.
func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	token, found := session.Read(r)
	if !found {
		fail(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	profile, err := h.Platform.CustomerProfile(r.Context(), token)
	if err != nil {
		internalError(w, h.Log, "profile", err)
		return
	}
	if profile == nil {
		fail(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	ok(w, envelope{"customer": profile})
}

// handleCompleteness reports whether the business profile is fully
// filled in.  Guests are always "complete" (never nag anonymous
// sessions), and faults fail open inside the checker.
func (h *Handler) handleCompleteness(w http.ResponseWriter, r *http.Request) {
	token, _ := session.Read(r) // empty token → guest → complete
	complete := h.Checker.Check(r.Context(), token)
	ok(w, envelope{"complete": complete})
}
