// internal/auth/context.go
//
// Session propagation: request-context storage and the header signals the
// interceptor attaches for the rendering layer.
//
// Usage
// -----
//     // Interceptor attaches the verified session.
//     ctx = auth.WithSession(ctx, sess)
//
//     // Downstream handlers retrieve it.
//     sess, ok := auth.SessionFromContext(ctx)
//
// Notes
// -----
// • The renderer never sees the raw token; it gets only these signals.
// • Oxford commas, two spaces after periods.

package auth

import "context"

// Header signals carried from the interceptor to the rendering layer.
// Present only when verification succeeded; the interceptor strips any
// inbound copies so clients cannot forge them.
const (
	HeaderAuthenticated = "X-Storefront-Authenticated"
	HeaderCustomerEmail = "X-Storefront-Customer-Email"
)

// sessionKey is unexported to avoid context-key collisions.
type sessionKey struct{}

// WithSession returns a new context carrying the verified session.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext extracts the session from ctx.  It returns
// (nil, false) when the request is a guest or the interceptor has not
// run.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	if !ok || s == nil {
		return nil, false
	}
	return s, true
}
