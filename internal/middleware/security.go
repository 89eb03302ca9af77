// Package middleware holds small, composable HTTP wrappers.
package middleware

import "net/http"

// Security sets security headers for every response.  The storefront
// serves JSON and server-rendered fragments for a headless frontend, so
// the policy is strict: nothing framed, nothing sniffed.
//
// Headers are set *before* next.ServeHTTP: once a handler calls
// WriteHeader the header map is flushed and later mutations never reach
// the wire.  A handler that needs a different value can still Set over
// the default before writing.
func Security(next http.Handler) http.Handler {
	const (
		hsts  = "max-age=63072000; includeSubDomains; preload"
		csp   = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'"
		xfo   = "DENY"
		nosn  = "nosniff"
		refer = "strict-origin-when-cross-origin"
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()

		if h.Get("Strict-Transport-Security") == "" {
			h.Set("Strict-Transport-Security", hsts)
		}
		if h.Get("Content-Security-Policy") == "" {
			h.Set("Content-Security-Policy", csp)
		}
		if h.Get("X-Frame-Options") == "" {
			h.Set("X-Frame-Options", xfo)
		}
		if h.Get("X-Content-Type-Options") == "" {
			h.Set("X-Content-Type-Options", nosn)
		}
		if h.Get("Referrer-Policy") == "" {
			h.Set("Referrer-Policy", refer)
		}

		next.ServeHTTP(w, r)
	})
}
