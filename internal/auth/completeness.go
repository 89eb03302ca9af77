// internal/auth/completeness.go
//
// Account-completeness check for wholesale customers.
//
// Context
// -------
//   Wholesale accounts must carry full business details before ordering:
//   the five personal fields (first name, last name, email, phone, and a
//   website OR social handle), plus two fully-filled address-book slots.
//   Slot 0 is billing and slot 1 is shipping by storefront convention;
//   the check is strictly positional, so a reordered address book can
//   flip the result.  That quirk is inherited behaviour, kept on purpose
//   until the address book grows stable identifiers.
//
//   The result only ever gates a "complete your profile" banner, so the
//   check fails open: guests are always "complete" (never nag anonymous
//   sessions), and a profile-fetch fault is "complete" too (never nag a
//   customer because the platform hiccupped).  Faults are logged.
//
//------------------------------------------------------------------------------

package auth

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/aurelle/storefront/internal/commerce"
)

// requiredAddressSlots is the number of positional address-book entries
// the check inspects.
const requiredAddressSlots = 2

// ProfileFetcher is the slice of the commerce client the checker needs.
type ProfileFetcher interface {
	CustomerProfile(ctx context.Context, token string) (*commerce.Profile, error)
}

// CompletenessChecker computes whether a customer's business profile is
// fully filled in.  Construct once and inject.
type CompletenessChecker struct {
	platform ProfileFetcher
	log      *zap.SugaredLogger
}

// NewCompletenessChecker builds a checker on top of the platform client.
func NewCompletenessChecker(platform ProfileFetcher, log *zap.SugaredLogger) *CompletenessChecker {
	if log == nil {
		log = zap.S()
	}
	return &CompletenessChecker{platform: platform, log: log}
}

// Check fetches the profile behind token and reports completeness.
// Guests (empty token) and fetch faults both report complete; see the
// fail-open note above.
func (c *CompletenessChecker) Check(ctx context.Context, token string) bool {
	if token == "" {
		return true
	}
	profile, err := c.platform.CustomerProfile(ctx, token)
	if err != nil {
		c.log.Warnw("completeness fetch fault, failing open", "err", err)
		return true
	}
	if profile == nil {
		// Token went stale between verification and this fetch; there
		// is nobody to nag.
		return true
	}
	return ProfileComplete(profile)
}

// ProfileComplete applies the completeness rules to an already-fetched
// profile.  Exported so the state container can reuse it on profiles it
// is already holding.
func ProfileComplete(p *commerce.Profile) bool {
	if blank(p.FirstName) || blank(p.LastName) || blank(p.Email) || blank(p.Phone) {
		return false
	}
	if blank(p.Website) && blank(p.Instagram) {
		return false
	}
	if len(p.Addresses) < requiredAddressSlots {
		return false
	}
	for i := 0; i < requiredAddressSlots; i++ {
		if !addressComplete(p.Addresses[i]) {
			return false
		}
	}
	return true
}

// addressComplete checks the required fields of one address slot.
func addressComplete(a commerce.Address) bool {
	return !blank(a.FirstName) &&
		!blank(a.LastName) &&
		!blank(a.Address1) &&
		!blank(a.City) &&
		!blank(a.Zip) &&
		!blank(a.Country) &&
		!blank(a.Phone)
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
