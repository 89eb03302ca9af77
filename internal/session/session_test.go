// internal/session/session_test.go
//
// Unit-tests for the session cookie codec.
//
// Run: go test ./internal/session -v

package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSet_Attributes(t *testing.T) {
	rr := httptest.NewRecorder()
	Codec{Domain: "aurelle.com"}.Set(rr, "tok-123")

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookie count = %d, want 1", len(cookies))
	}
	c := cookies[0]

	if c.Name != CookieName {
		t.Errorf("name = %q, want %q", c.Name, CookieName)
	}
	if c.Value != "tok-123" {
		t.Errorf("value = %q, want %q", c.Value, "tok-123")
	}
	if c.Path != "/" {
		t.Errorf("path = %q, want /", c.Path)
	}
	if c.Domain != "aurelle.com" {
		t.Errorf("domain = %q, want aurelle.com", c.Domain)
	}
	if !c.Secure {
		t.Error("cookie is not Secure")
	}
	if c.SameSite != http.SameSiteNoneMode {
		t.Errorf("samesite = %v, want None", c.SameSite)
	}
	if want := int(MaxAge.Seconds()); c.MaxAge != want {
		t.Errorf("max-age = %d, want %d", c.MaxAge, want)
	}
}

func TestSet_RenewalRecomputesMaxAge(t *testing.T) {
	// Two Sets in a row both carry the full window; renewal is just a
	// fresh Set with the same token.
	rr := httptest.NewRecorder()
	codec := Codec{Domain: "aurelle.com"}
	codec.Set(rr, "tok")
	codec.Set(rr, "tok")

	cookies := rr.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("cookie count = %d, want 2", len(cookies))
	}
	for i, c := range cookies {
		if want := int(MaxAge.Seconds()); c.MaxAge != want {
			t.Errorf("cookie %d max-age = %d, want %d", i, c.MaxAge, want)
		}
	}
}

func TestSetThenClear_DeletionWins(t *testing.T) {
	rr := httptest.NewRecorder()
	codec := Codec{Domain: "aurelle.com"}
	codec.Set(rr, "tok-123")
	codec.Clear(rr)

	cookies := rr.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("cookie count = %d, want 2", len(cookies))
	}
	// The last Set-Cookie for the name is what the browser honours.
	last := cookies[len(cookies)-1]
	if last.Name != CookieName {
		t.Fatalf("last cookie name = %q, want %q", last.Name, CookieName)
	}
	if last.Value != "" {
		t.Errorf("last cookie value = %q, want empty", last.Value)
	}
	if last.MaxAge >= 0 {
		t.Errorf("last cookie max-age = %d, want deletion (< 0)", last.MaxAge)
	}
}

func TestRead(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if tok, ok := Read(r); ok || tok != "" {
		t.Fatalf("Read on bare request = %q, %v; want empty, false", tok, ok)
	}

	r.AddCookie(&http.Cookie{Name: CookieName, Value: "tok-9"})
	tok, ok := Read(r)
	if !ok || tok != "tok-9" {
		t.Fatalf("Read = %q, %v; want tok-9, true", tok, ok)
	}

	r2 := httptest.NewRequest(http.MethodGet, "/", nil)
	r2.AddCookie(&http.Cookie{Name: CookieName, Value: ""})
	if _, ok := Read(r2); ok {
		t.Fatal("Read on empty-value cookie reported ok")
	}
}
