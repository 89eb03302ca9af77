// internal/api/auth_routes.go
//
// Session routes: sign-in, sign-out, verification, recovery, reset, and
// activation.
//
// Error taxonomy (see also internal/auth):
//
//   • Credential rejection → 400/401 with the platform's own message.
//   • Guest on /verify     → 401 `{success:false}`; not a fault.
//   • Transport faults     → opaque 500, details logged only.
//
// Every route that mints or confirms a token re-issues the session
// cookie, which renews its 30-day window.  The interceptor never does
// that; these routes are the only writers.

package api

import (
	"errors"
	"net/http"

	"github.com/aurelle/storefront/internal/auth"
	"github.com/aurelle/storefront/internal/commerce"
	"github.com/aurelle/storefront/internal/session"
)

// errFreshTokenRejected covers the odd case where the platform rejects a
// token it just minted.
var errFreshTokenRejected = errors.New("platform rejected freshly minted token")

// newState builds the per-request auth state container.  All cookie and
// phase transitions for sign-in and sign-out flow through it, so there
// is exactly one writer for both.
func (h *Handler) newState() *auth.State {
	return auth.NewState(h.Platform, h.Verifier, h.Cookies, h.Log)
}

// customerJSON is the customer projection returned to the frontend.
func customerJSON(s *auth.Session) envelope {
	return envelope{
		"customer": envelope{
			"id":        s.Customer.ID,
			"firstName": s.Customer.FirstName,
			"lastName":  s.Customer.LastName,
			"email":     s.Customer.Email,
			"phone":     s.Customer.Phone,
		},
		"tags":     s.Tags,
		"approved": s.Approved,
	}
}

// handleSignIn exchanges credentials for a session cookie.  The state
// container owns the cookie write and the counters.
func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeAndValidate(r, h.Validate, &req); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	st := h.newState()
	res := st.SignIn(r.Context(), w, req.Email, req.Password)
	if res.Fault {
		// Details are already in the log; callers get the opaque body.
		fail(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !res.Success {
		fail(w, http.StatusUnauthorized, res.Error)
		return
	}

	// Resolve the full identity on the fresh token so the frontend can
	// hydrate without a second round trip.  A guest result here would
	// mean the platform rejected its own token; treat it as a fault.
	sess := h.Verifier.Verify(r.Context(), st.Token())
	if sess == nil {
		internalError(w, h.Log, "signin", errFreshTokenRejected)
		return
	}
	ok(w, customerJSON(sess))
}

// handleSignOut settles the container for the request, then lets it
// clear the cookie and revoke the token best-effort.
func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	token, _ := session.Read(r)

	st := h.newState()
	st.Hydrate(r.Context(), auth.SignalsFromRequest(r), token)
	st.SignOut(r.Context(), w)
	ok(w, nil)
}

// handleSession is the hydration endpoint the frontend calls on page
// load.  When the interceptor already attached signals the container
// settles from them with no extra platform round trip; otherwise it
// verifies the cookie once.  Read-only: no cookie write, no renewal.
func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	token, _ := session.Read(r)

	st := h.newState()
	st.Hydrate(r.Context(), auth.SignalsFromRequest(r), token)

	ok(w, envelope{
		"phase":         st.Phase().String(),
		"authenticated": st.IsAuthenticated(),
		"email":         st.Email(),
	})
}

// handleVerify is the explicit verification endpoint the frontend calls
// when a page load carried no interceptor signals.  Success renews the
// cookie's 30-day window.
func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	token, found := session.Read(r)
	if !found {
		fail(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	sess := h.Verifier.Verify(r.Context(), token)
	if sess == nil {
		// Guest and fault are indistinguishable by contract.
		fail(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	h.Cookies.Set(w, token) // silent renewal
	ok(w, customerJSON(sess))
}

// handleRecover asks the platform to send a reset email.  The response
// is 200 whether or not the address has an account, so the route cannot
// be used to enumerate customers.
func (h *Handler) handleRecover(w http.ResponseWriter, r *http.Request) {
	var req recoverRequest
	if err := decodeAndValidate(r, h.Validate, &req); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	userErrs, err := h.Platform.Recover(r.Context(), req.Email)
	if err != nil {
		internalError(w, h.Log, "recover", err)
		return
	}
	if len(userErrs) > 0 {
		h.Log.Infow("recover user error suppressed", "err", userErrs[0].Message)
	}
	ok(w, nil)
}

// handleReset completes a password reset and signs the customer in.
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeAndValidate(r, h.Validate, &req); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	tok, userErrs, err := h.Platform.ResetByURL(r.Context(), req.ResetURL, req.Password)
	if err != nil {
		internalError(w, h.Log, "reset", err)
		return
	}
	if tok == nil {
		fail(w, http.StatusBadRequest,
			commerce.FirstMessage(userErrs, "This reset link is invalid or has expired."))
		return
	}

	h.Cookies.Set(w, tok.Token)
	ok(w, nil)
}

// handleActivate completes account activation and signs the customer in.
func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	var req activateRequest
	if err := decodeAndValidate(r, h.Validate, &req); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	tok, userErrs, err := h.Platform.Activate(r.Context(), req.ActivationURL, req.Password)
	if err != nil {
		internalError(w, h.Log, "activate", err)
		return
	}
	if tok == nil {
		fail(w, http.StatusBadRequest,
			commerce.FirstMessage(userErrs, "This activation link is invalid or has expired."))
		return
	}

	h.Cookies.Set(w, tok.Token)
	ok(w, nil)
}
