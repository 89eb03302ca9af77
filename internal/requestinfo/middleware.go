// internal/requestinfo/middleware.go
//
// HTTP middleware that enriches each request with *Info.
//
/*
Context
--------
This handler sits first in the chain, before security filters and the
auth interceptor.  For every request it:

  1. Parses the User-Agent header and Accept-Language list.
  2. Extracts the left-most public client IP from X-Forwarded-For or
     X-Real-IP, falling back to `r.RemoteAddr`.
  3. Performs a best-effort GeoLite2 lookup (no-op when disabled).
  4. Stores an `*Info` value in `request.Context` under an unexported
     key for access logging.

Instrumentation
---------------
When `STOREFRONT_LOG_LEVEL=debug`, each invocation logs a DEBUG span
containing client IP, country ISO, browser family, bot flag, and the
request path.

Notes
-----
  • All look-ups are read-only and pool-based, so the middleware is safe
    under heavy concurrency.
  • Oxford commas, two spaces after periods.
*/
package requestinfo

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

/*──────────────────────────── middleware ───────────────────────────────────*/

// Enrich wraps an http.Handler, attaches *Info, and forwards.
func Enrich(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		info := &Info{
			UA:        parseUA(r.UserAgent(), r.Header.Get("Accept-Language")),
			Geo:       lookupGeo(ip),
			URL:       r.URL, // pointer copy; safe for read-only access
			Timestamp: time.Now().UTC(),
		}

		zap.S().Debugw("request info",
			"ip", info.Geo.IP,
			"country", info.Geo.CountryISO,
			"browser", info.UA.Browser,
			"bot", info.UA.IsBot,
			"path", r.URL.Path,
		)

		ctx := context.WithValue(r.Context(), ctxKey{}, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

/*──────────────────────────── client IP helper ─────────────────────────────*/

// clientIP extracts the left-most address from X-Forwarded-For or
// X-Real-IP, falling back to r.RemoteAddr ("ip:port").
func clientIP(r *http.Request) net.IP {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip
			}
		}
	}
	if xrip := r.Header.Get("X-Real-Ip"); xrip != "" {
		if ip := net.ParseIP(strings.TrimSpace(xrip)); ip != nil {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return net.ParseIP(host)
	}
	return nil
}
