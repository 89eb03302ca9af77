// internal/auth/state_test.go
//
// Unit-tests for the auth state container's machine transitions.
//
// Run: go test ./internal/auth -v

package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/aurelle/storefront/internal/commerce"
	"github.com/aurelle/storefront/internal/session"
)

// fakeStatePlatform satisfies StatePlatform and Platform so one fake can
// back both the container and its verifier.
type fakeStatePlatform struct {
	fakePlatform // embeds CustomerByToken / CustomerTags

	token      *commerce.AccessToken
	userErrs   []commerce.UserError
	signInErr  error
	profile    *commerce.Profile
	profileErr error
	signOuts   int
}

func (f *fakeStatePlatform) SignIn(_ context.Context, _, _ string) (*commerce.AccessToken, []commerce.UserError, error) {
	return f.token, f.userErrs, f.signInErr
}

func (f *fakeStatePlatform) SignOut(_ context.Context, _ string) error {
	f.signOuts++
	return nil
}

func (f *fakeStatePlatform) CustomerProfile(_ context.Context, _ string) (*commerce.Profile, error) {
	return f.profile, f.profileErr
}

func newTestState(f *fakeStatePlatform) *State {
	v := NewVerifier(f, nil)
	return NewState(f, v, session.Codec{Domain: "aurelle.com"}, nil)
}

func TestState_StartsUninitialized(t *testing.T) {
	s := newTestState(&fakeStatePlatform{})
	if s.Phase() != PhaseUninitialized {
		t.Fatalf("phase = %v, want uninitialized", s.Phase())
	}
	if !s.Loading() {
		t.Fatal("uninitialized container reported settled")
	}
}

func TestHydrate_FromSignals_SkipsVerification(t *testing.T) {
	f := &fakeStatePlatform{}
	s := newTestState(f)

	s.Hydrate(context.Background(), Signals{Present: true, Authenticated: true, Email: "a@x.com"}, "tok")

	if s.Phase() != PhaseAuthenticated {
		t.Fatalf("phase = %v, want authenticated", s.Phase())
	}
	if s.Email() != "a@x.com" {
		t.Errorf("email = %q, want a@x.com", s.Email())
	}
	if f.customerCalls != 0 {
		t.Fatal("signal hydration hit the platform")
	}

	s2 := newTestState(f)
	s2.Hydrate(context.Background(), Signals{Present: true, Authenticated: false}, "")
	if s2.Phase() != PhaseGuest {
		t.Fatalf("phase = %v, want guest", s2.Phase())
	}
}

func TestHydrate_NoSignals_VerifiesOnce(t *testing.T) {
	f := &fakeStatePlatform{
		fakePlatform: fakePlatform{
			customer: &commerce.Customer{ID: "1", Email: "a@x.com"},
			tags:     []string{"approved"},
		},
	}
	s := newTestState(f)

	s.Hydrate(context.Background(), Signals{}, "tok")
	if s.Phase() != PhaseAuthenticated {
		t.Fatalf("phase = %v, want authenticated", s.Phase())
	}
	if f.customerCalls != 1 {
		t.Fatalf("verification calls = %d, want 1", f.customerCalls)
	}

	// Invalid token settles to guest, silently.
	s2 := newTestState(&fakeStatePlatform{})
	s2.Hydrate(context.Background(), Signals{}, "stale")
	if s2.Phase() != PhaseGuest {
		t.Fatalf("phase = %v, want guest", s2.Phase())
	}
}

func TestSignIn_Success(t *testing.T) {
	f := &fakeStatePlatform{
		token:   &commerce.AccessToken{Token: "fresh-tok"},
		profile: &commerce.Profile{Customer: commerce.Customer{ID: "1", Email: "a@x.com"}},
	}
	s := newTestState(f)
	rr := httptest.NewRecorder()

	res := s.SignIn(context.Background(), rr, "a@x.com", "hunter22")
	if !res.Success || res.Error != "" {
		t.Fatalf("result = %+v, want success", res)
	}
	if s.Phase() != PhaseAuthenticated {
		t.Fatalf("phase = %v, want authenticated", s.Phase())
	}

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != "fresh-tok" {
		t.Fatalf("cookie not set with fresh token: %+v", cookies)
	}
	if s.Profile() == nil || s.Profile().ID != "1" {
		t.Error("profile not retained after sign-in")
	}
}

func TestSignIn_CredentialRejection(t *testing.T) {
	f := &fakeStatePlatform{
		userErrs: []commerce.UserError{{Message: "Unidentified customer"}},
	}
	s := newTestState(f)
	rr := httptest.NewRecorder()

	res := s.SignIn(context.Background(), rr, "a@x.com", "wrong")
	if res.Success {
		t.Fatal("rejected credentials reported success")
	}
	if res.Error != "Unidentified customer" {
		t.Errorf("error = %q, want the platform's message", res.Error)
	}
	if s.Phase() != PhaseGuest {
		t.Fatalf("phase = %v, want guest", s.Phase())
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Fatal("cookie written on rejected sign-in")
	}
}

func TestSignIn_TransportFault(t *testing.T) {
	f := &fakeStatePlatform{signInErr: errors.New("dns failure")}
	s := newTestState(f)

	res := s.SignIn(context.Background(), httptest.NewRecorder(), "a@x.com", "pw")
	if res.Success || res.Error == "" {
		t.Fatalf("result = %+v, want generic failure message", res)
	}
	if !res.Fault {
		t.Error("fault = false, transport failures must be distinguishable from rejections")
	}
}

func TestSignOut_ResetsToGuest(t *testing.T) {
	f := &fakeStatePlatform{
		token:   &commerce.AccessToken{Token: "tok"},
		profile: &commerce.Profile{Customer: commerce.Customer{ID: "1", Email: "a@x.com"}},
	}
	s := newTestState(f)
	s.SignIn(context.Background(), httptest.NewRecorder(), "a@x.com", "pw")

	rr := httptest.NewRecorder()
	s.SignOut(context.Background(), rr)

	if s.Phase() != PhaseGuest {
		t.Fatalf("phase = %v, want guest", s.Phase())
	}
	if f.signOuts != 1 {
		t.Errorf("platform revocations = %d, want 1", f.signOuts)
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Fatalf("sign-out did not clear the cookie: %+v", cookies)
	}
	if s.Email() != "" || s.Profile() != nil {
		t.Error("identity retained after sign-out")
	}
}

func TestRefreshUser_KeepsPhase(t *testing.T) {
	f := &fakeStatePlatform{
		token:   &commerce.AccessToken{Token: "tok"},
		profile: &commerce.Profile{Customer: commerce.Customer{ID: "1", Email: "a@x.com"}},
	}
	s := newTestState(f)
	s.SignIn(context.Background(), httptest.NewRecorder(), "a@x.com", "pw")

	f.profile = &commerce.Profile{Customer: commerce.Customer{ID: "1", Email: "a@x.com", Phone: "+1 555"}}
	s.RefreshUser(context.Background())

	if s.Phase() != PhaseAuthenticated {
		t.Fatalf("phase changed to %v on refresh", s.Phase())
	}
	if s.Profile().Phone != "+1 555" {
		t.Error("profile not refreshed")
	}

	// A refresh fault leaves the old profile in place.
	f.profileErr = errors.New("503")
	s.RefreshUser(context.Background())
	if s.Profile() == nil || s.Profile().Phone != "+1 555" {
		t.Error("refresh fault discarded the held profile")
	}
}
