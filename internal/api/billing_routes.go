// internal/api/billing_routes.go
//
// Billing route: subscription checkout-session creation.
//
// This is the second call site of the shared token verifier.  Identity
// binding matters here: the payment customer is resolved from the
// *verified* email, never from anything in the request body, so a
// visitor cannot open a checkout session against someone else's
// account.  Approval gating is server-side for the same reason.

package api

import (
	"net/http"

	"github.com/aurelle/storefront/internal/metrics"
	"github.com/aurelle/storefront/internal/session"
)

// handleCheckoutSession verifies the session, gates on wholesale
// approval, and returns the hosted checkout URL.
func (h *Handler) handleCheckoutSession(w http.ResponseWriter, r *http.Request) {
	token, found := session.Read(r)
	if !found {
		fail(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	sess := h.Verifier.Verify(r.Context(), token)
	if sess == nil {
		fail(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	if !sess.Approved {
		fail(w, http.StatusForbidden, "wholesale approval required")
		return
	}

	customerID, err := h.Billing.EnsureCustomer(r.Context(), sess.Customer.Email)
	if err != nil {
		internalError(w, h.Log, "checkout-session", err)
		return
	}
	url, err := h.Billing.CreateCheckoutSession(r.Context(), customerID)
	if err != nil {
		internalError(w, h.Log, "checkout-session", err)
		return
	}

	metrics.CheckoutSessionsTotal.Inc()
	ok(w, envelope{"url": url})
}
