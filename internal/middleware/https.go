// internal/middleware/https.go
//
// HTTPS enforcement.  The session cookie is Secure + SameSite=None, so a
// plain-HTTP hop can never carry it anyway; redirecting early keeps the
// browser from silently dropping the session.
package middleware

import (
	"net/http"
	"strings"
)

// ForceHTTPS wraps h.  When enabled and the request is plain HTTP from a
// non-localhost host, it issues a 308 Permanent Redirect to the HTTPS
// version of the same URL.  Otherwise it calls the next handler
// unchanged.  Behind a TLS-terminating proxy the X-Forwarded-Proto
// header decides.
func ForceHTTPS(enabled bool, h http.Handler) http.Handler {
	if !enabled {
		return h
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS != nil ||
			r.Header.Get("X-Forwarded-Proto") == "https" ||
			stripPort(r.Host) == "localhost" {
			h.ServeHTTP(w, r)
			return
		}

		target := "https://" + r.Host + r.URL.RequestURI()
		http.Redirect(w, r, target, http.StatusPermanentRedirect)
	})
}

// stripPort removes the :port suffix from Host when present.
func stripPort(h string) string {
	if i := strings.IndexByte(h, ':'); i != -1 {
		return h[:i]
	}
	return h
}
