// internal/auth/verifier.go
//
// Token verifier: opaque session token → authorized customer, or guest.
//
/*
Context
--------
One verifier, two call sites: the request interceptor and the billing
handlers both resolve "who is this token" through this type, so the
token + tag merge can never drift between them.

Verification is two strictly sequential upstream calls:

  1. Storefront customer lookup by token.  Unknown token, expired token,
     or platform "no customer" → guest.
  2. Admin search by the customer's email → free-text tags; wholesale
     approval is derived from the tag set, case-insensitively.

Failure policy (a contract, not an accident): Verify NEVER returns an
error.  A nil *Session means guest, whether the cookie was absent, the
token was rejected, or an upstream call faulted mid-flight.  Faults are
logged and counted but are indistinguishable from "guest" to callers, so
an upstream outage degrades the storefront to anonymous browsing instead
of erroring pages.

Concurrent verifications of the same token (two tabs, parallel fetches)
are collapsed through singleflight.  Nothing is cached: the group only
deduplicates calls in flight, so every settled verification still hits
the platform.
*/
package auth

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/aurelle/storefront/internal/commerce"
	"github.com/aurelle/storefront/internal/metrics"
)

// approvedTag is the admin-side label that marks a wholesale account as
// approved.  Matching is case-insensitive.
const approvedTag = "approved"

// Session is the merged, server-derived identity for one verified token.
// Approved is always recomputed here from the admin tag lookup; no client
// input can influence it.
type Session struct {
	Customer commerce.Customer
	Tags     []string
	Approved bool
}

// Platform is the slice of the commerce client the verifier needs.
type Platform interface {
	CustomerByToken(ctx context.Context, token string) (*commerce.Customer, error)
	CustomerTags(ctx context.Context, email string) ([]string, error)
}

// Verifier resolves session tokens.  Safe for concurrent use; construct
// once and inject into every call site.
type Verifier struct {
	platform Platform
	log      *zap.SugaredLogger
	sf       singleflight.Group
}

// NewVerifier builds a Verifier on top of the given platform client.
func NewVerifier(platform Platform, log *zap.SugaredLogger) *Verifier {
	if log == nil {
		log = zap.S()
	}
	return &Verifier{platform: platform, log: log}
}

// Verify resolves token to a Session, or nil for guest.  It never
// returns an error; see the failure policy above.  An empty token is a
// guest immediately, with no network call.
func (v *Verifier) Verify(ctx context.Context, token string) *Session {
	if token == "" {
		metrics.VerifyTotal.WithLabelValues(metrics.OutcomeGuest).Inc()
		return nil
	}

	// Collapse same-token races.  The cookie renewal both racers would
	// trigger is idempotent, so sharing one result is benign.  The lookup
	// detaches from the first caller's cancellation: piggybacked requests
	// must not collapse to guest because that caller went away.
	res, _, _ := v.sf.Do(token, func() (interface{}, error) {
		return v.verify(context.WithoutCancel(ctx), token), nil
	})
	sess, _ := res.(*Session)
	return sess
}

// verify performs the two-step lookup and merge.  All faults collapse to
// nil here so Verify's contract holds.
func (v *Verifier) verify(ctx context.Context, token string) *Session {
	cust, err := v.platform.CustomerByToken(ctx, token)
	if err != nil {
		v.log.Warnw("customer lookup fault, treating as guest", "err", err)
		metrics.VerifyTotal.WithLabelValues(metrics.OutcomeFault).Inc()
		return nil
	}
	if cust == nil {
		metrics.VerifyTotal.WithLabelValues(metrics.OutcomeGuest).Inc()
		return nil
	}

	var tags []string
	if cust.Email != "" {
		tags, err = v.platform.CustomerTags(ctx, cust.Email)
		if err != nil {
			v.log.Warnw("tag lookup fault, treating as guest",
				"customer_id", cust.ID, "err", err)
			metrics.VerifyTotal.WithLabelValues(metrics.OutcomeFault).Inc()
			return nil
		}
	}

	metrics.VerifyTotal.WithLabelValues(metrics.OutcomeAuthenticated).Inc()
	return &Session{
		Customer: *cust,
		Tags:     tags,
		Approved: hasApprovedTag(tags),
	}
}

// hasApprovedTag reports whether tags contains the approval label in any
// letter casing.
func hasApprovedTag(tags []string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, approvedTag) {
			return true
		}
	}
	return false
}
