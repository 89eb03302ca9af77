// internal/session/session.go
//
// Customer-session cookie codec.
//
// Context
// -------
//   The commerce platform issues an opaque access token after sign-in,
//   activation, or password reset.  This package is the only place that
//   token touches a cookie: one fixed name, apex-wide domain, SameSite
//   None + Secure (the storefront is served cross-site from the headless
//   frontend), and a 30-day Max-Age recomputed from "now" on every Set.
//   Every successful verification therefore silently extends the session.
//
//   The codec never inspects the token.  It is an opaque string written
//   and read verbatim; verification is internal/auth's job.
//
//   These are pure formatting operations with no error conditions.  The
//   only side effect is a Set-Cookie header on the outgoing response.
//
//------------------------------------------------------------------------------

package session

import (
	"net/http"
	"time"
)

// CookieName is fixed across environments; only the domain varies.
const CookieName = "_aurelle_customer"

// MaxAge is the session lifetime.  Renewal resets the full window.
const MaxAge = 30 * 24 * time.Hour

// Codec writes and clears the session cookie for one configured domain.
// The zero value scopes the cookie to the request host, which is what
// local development wants.
type Codec struct {
	Domain string
}

// Set writes the session cookie carrying token, with the 30-day Max-Age
// recomputed from now.  Callers invoke this after sign-in, activation,
// reset, and every successful explicit verification.
func (c Codec) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   int(MaxAge.Seconds()),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}

// Clear writes the same cookie with an empty value and Max-Age=0 so the
// browser deletes it across subdomains.  Deletion wins over any renewed
// cookie set earlier in the same response.
func (c Codec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   -1, // serializes as Max-Age=0
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}

// Read returns the session token carried by r, if any.
//
// ok == false when the cookie is missing or empty.
func Read(r *http.Request) (token string, ok bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
