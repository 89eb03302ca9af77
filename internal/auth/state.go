// internal/auth/state.go
//
// Auth state container for the rendering layer.
//
/*
Context
--------
Server-rendered pages need one place to ask "is this visitor signed in,
and as whom" for the lifetime of a render.  This container is that
place: an explicit, scoped state machine with one writer (itself) and
many readers, deliberately not a package-level singleton.

States:

  Uninitialized → Hydrating → {Authenticated, Guest}
  Authenticated → SignOut        → Guest
  Guest         → SignIn success → Authenticated
  Guest         → SignIn failure → Guest (with a human-readable reason)

Hydration prefers the interceptor's header signals: when the request
already carried them, the container settles immediately with no extra
round trip.  Requests that arrived without signals (the interceptor only
runs on cookie-bearing server hops) fall back to one explicit
verification before settling.

SignIn never panics and never returns a Go error to the render layer;
credential rejections come back as a result with the platform's own
message, and transport faults as a generic one.
*/
package auth

import (
	"context"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/aurelle/storefront/internal/commerce"
	"github.com/aurelle/storefront/internal/metrics"
	"github.com/aurelle/storefront/internal/session"
)

// Phase is the container's position in the state machine.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseHydrating
	PhaseAuthenticated
	PhaseGuest
)

// String implements fmt.Stringer for logs.
func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseHydrating:
		return "hydrating"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseGuest:
		return "guest"
	default:
		return "unknown"
	}
}

// Signals is the projection of the interceptor's header signals used to
// hydrate without a redundant verification.
type Signals struct {
	Present       bool // true when the interceptor ran on this request
	Authenticated bool
	Email         string
}

// SignalsFromRequest reads the interceptor's headers off r.
func SignalsFromRequest(r *http.Request) Signals {
	v := r.Header.Get(HeaderAuthenticated)
	if v == "" {
		return Signals{}
	}
	return Signals{
		Present:       true,
		Authenticated: v == "true",
		Email:         r.Header.Get(HeaderCustomerEmail),
	}
}

// SignInResult is what the render layer shows the visitor.
type SignInResult struct {
	Success bool
	Fault   bool   // transport fault, as opposed to a credential rejection
	Error   string // human-readable reason when Success is false
}

// StatePlatform is the slice of the commerce client the container needs.
type StatePlatform interface {
	SignIn(ctx context.Context, email, password string) (*commerce.AccessToken, []commerce.UserError, error)
	SignOut(ctx context.Context, token string) error
	CustomerProfile(ctx context.Context, token string) (*commerce.Profile, error)
}

// State holds authentication state across one render lifetime.
type State struct {
	platform StatePlatform
	verifier *Verifier
	cookies  session.Codec
	log      *zap.SugaredLogger

	mu      sync.Mutex
	phase   Phase
	token   string
	email   string
	profile *commerce.Profile
}

// NewState builds an uninitialized container.
func NewState(platform StatePlatform, verifier *Verifier, cookies session.Codec, log *zap.SugaredLogger) *State {
	if log == nil {
		log = zap.S()
	}
	return &State{
		platform: platform,
		verifier: verifier,
		cookies:  cookies,
		log:      log,
		phase:    PhaseUninitialized,
	}
}

// Hydrate settles the container from the interceptor's signals, or, when
// they are absent, from one explicit verification of token.
func (s *State) Hydrate(ctx context.Context, sig Signals, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sig.Present {
		if sig.Authenticated {
			s.phase = PhaseAuthenticated
			s.token = token
			s.email = sig.Email
		} else {
			s.phase = PhaseGuest
		}
		return
	}

	s.phase = PhaseHydrating
	sess := s.verifier.Verify(ctx, token)
	if sess == nil {
		s.phase = PhaseGuest
		return
	}
	s.phase = PhaseAuthenticated
	s.token = token
	s.email = sess.Customer.Email
}

// SignIn exchanges credentials for a token, writes the session cookie,
// and fetches the full profile.  Failures leave the container in Guest
// and report a reason; they never propagate as errors.
func (s *State) SignIn(ctx context.Context, w http.ResponseWriter, email, password string) SignInResult {
	metrics.SignInTotal.Inc()

	tok, userErrs, err := s.platform.SignIn(ctx, email, password)
	if err != nil {
		s.log.Errorw("sign-in transport fault", "err", err)
		metrics.SignInFailuresTotal.Inc()
		s.setGuest()
		return SignInResult{Fault: true, Error: "Sign in is temporarily unavailable.  Please try again."}
	}
	if tok == nil {
		metrics.SignInFailuresTotal.Inc()
		s.setGuest()
		return SignInResult{Error: commerce.FirstMessage(userErrs, "Incorrect email or password.")}
	}

	s.cookies.Set(w, tok.Token)

	profile, err := s.platform.CustomerProfile(ctx, tok.Token)
	if err != nil {
		// The session is established; profile details can load later.
		s.log.Warnw("post-sign-in profile fetch fault", "err", err)
	}

	s.mu.Lock()
	s.phase = PhaseAuthenticated
	s.token = tok.Token
	s.email = email
	s.profile = profile
	if profile != nil {
		s.email = profile.Email
	}
	s.mu.Unlock()
	return SignInResult{Success: true}
}

// SignOut clears the cookie, revokes the token best-effort, and resets
// the container to Guest.  Callers redirect to the home route after.
func (s *State) SignOut(ctx context.Context, w http.ResponseWriter) {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	s.cookies.Clear(w)
	if token != "" {
		if err := s.platform.SignOut(ctx, token); err != nil {
			s.log.Warnw("token revoke fault on sign-out", "err", err)
		}
	}
	s.setGuest()
}

// RefreshUser re-fetches the profile without touching the phase; used
// after profile edits.
func (s *State) RefreshUser(ctx context.Context) {
	s.mu.Lock()
	token := s.token
	phase := s.phase
	s.mu.Unlock()

	if phase != PhaseAuthenticated || token == "" {
		return
	}
	profile, err := s.platform.CustomerProfile(ctx, token)
	if err != nil {
		s.log.Warnw("profile refresh fault", "err", err)
		return
	}
	s.mu.Lock()
	s.profile = profile
	if profile != nil {
		s.email = profile.Email
	}
	s.mu.Unlock()
}

func (s *State) setGuest() {
	s.mu.Lock()
	s.phase = PhaseGuest
	s.token = ""
	s.email = ""
	s.profile = nil
	s.mu.Unlock()
}

/*──────────────────────────── readers ──────────────────────────────────────*/

// Phase returns the current machine state.
func (s *State) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// IsAuthenticated reports whether the container settled authenticated.
func (s *State) IsAuthenticated() bool { return s.Phase() == PhaseAuthenticated }

// Loading reports whether the container has not settled yet.
func (s *State) Loading() bool {
	p := s.Phase()
	return p == PhaseUninitialized || p == PhaseHydrating
}

// Email returns the verified email, empty for guests.
func (s *State) Email() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.email
}

// Token returns the session token the container settled on, empty for
// guests.
func (s *State) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Profile returns the last fetched profile, which may be nil even when
// authenticated (hydration from signals skips the profile fetch).
func (s *State) Profile() *commerce.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}
