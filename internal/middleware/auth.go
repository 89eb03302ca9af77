// internal/middleware/auth.go
//
// Request interceptor: attaches authentication signals ahead of rendering.
//
/*
Context
--------
Runs for every request except static assets and the metrics endpoint.
The flow per request:

  1. Strip any inbound copies of the signal headers.  They are internal
     transport between this hop and the renderer; a client that sends
     them is forging.
  2. Read the session cookie.  Absent → pass through as guest.
  3. Verify the token.  Success → set `X-Storefront-Authenticated: true`
     and, when known, the customer email on the *request* headers, and
     seed the request context with the session.
  4. Always call the next handler.  A guest result, a verification
     fault, even a panic out of verification: none of them may surface
     as a page error.  Authentication failing is a normal state here,
     not an HTTP failure.

The interceptor never writes the cookie.  Renewal belongs to the
explicit verification and sign-in routes, so this hop stays side-effect
free and two tabs racing through it stay benign.
*/
package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/aurelle/storefront/internal/auth"
	"github.com/aurelle/storefront/internal/session"
)

// skipPrefixes lists paths the interceptor ignores entirely.
var skipPrefixes = []string{
	"/static/",
	"/assets/",
	"/images/",
	"/favicon.ico",
	"/metrics",
}

// Authenticate wraps next with the session interceptor backed by v.
func Authenticate(v *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			// Clients must not be able to smuggle signals past us.
			r.Header.Del(auth.HeaderAuthenticated)
			r.Header.Del(auth.HeaderCustomerEmail)

			token, ok := session.Read(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			if sess := verifyQuietly(v, r, token); sess != nil {
				r.Header.Set(auth.HeaderAuthenticated, "true")
				if sess.Customer.Email != "" {
					r.Header.Set(auth.HeaderCustomerEmail, sess.Customer.Email)
				}
				r = r.WithContext(auth.WithSession(r.Context(), sess))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// verifyQuietly calls the verifier and swallows anything it might panic
// with.  Verify's contract is "never errors", but this hop runs on every
// page view and must hold even if that contract breaks.
func verifyQuietly(v *auth.Verifier, r *http.Request, token string) (sess *auth.Session) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.S().Errorw("verification panic swallowed, treating as guest",
				"path", r.URL.Path, "panic", rec)
			sess = nil
		}
	}()
	return v.Verify(r.Context(), token)
}

func skipPath(p string) bool {
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}
