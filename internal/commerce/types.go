// internal/commerce/types.go
//
// Wire types shared by the storefront GraphQL and admin REST calls.
//
//------------------------------------------------------------------------------

package commerce

import "time"

// Customer is the lightweight identity returned by the token lookup.
// It carries no tags; those come from the admin search and are merged by
// internal/auth.
type Customer struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Address is one entry of a customer's address book.  The storefront
// convention is positional: slot 0 is billing, slot 1 is shipping.
type Address struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Company   string `json:"company"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2"`
	City      string `json:"city"`
	Province  string `json:"province"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

// Profile is the full customer record fetched for account pages and the
// completeness check.  Website and Instagram live in customer metafields
// on the platform; wholesale onboarding asks for at least one of them.
type Profile struct {
	Customer
	AcceptsMarketing bool      `json:"acceptsMarketing"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
	Website          string    `json:"website"`
	Instagram        string    `json:"instagram"`
	Addresses        []Address `json:"addresses"`
}

// AccessToken is the opaque session credential minted by sign-in,
// activation, and password reset.  The token is never parsed; expiry is
// informational (the cookie carries its own Max-Age).
type AccessToken struct {
	Token     string    `json:"accessToken"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UserError is a platform-reported rejection tied to caller input (wrong
// password, expired reset URL, malformed email).  These surface to the
// user verbatim; transport faults never do.
type UserError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FirstMessage returns the first user-error message, or fallback when the
// platform supplied none.
func FirstMessage(errs []UserError, fallback string) string {
	if len(errs) > 0 && errs[0].Message != "" {
		return errs[0].Message
	}
	return fallback
}
