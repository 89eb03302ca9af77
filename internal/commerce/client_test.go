// internal/commerce/client_test.go
//
// Client tests against httptest stand-ins for the two platform surfaces.
//
// Run: go test ./internal/commerce -v

package commerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/aurelle/storefront/internal/config"
)

func newTestClient() *Client {
	return New(config.Commerce{
		StoreDomain:     "aurelle.example",
		APIVersion:      "2024-07",
		StorefrontToken: "sf-token",
		AdminToken:      "admin-token",
	}, zap.NewNop().Sugar())
}

// gqlRequest captures what the client sent.
type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// storefrontStub serves one canned GraphQL response and records the
// request for assertions.
func storefrontStub(t *testing.T, response string) (*Client, *gqlRequest) {
	t.Helper()
	var got gqlRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := r.Header.Get("X-Shopify-Storefront-Access-Token"); tok != "sf-token" {
			t.Errorf("storefront token header = %q", tok)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, response)
	}))
	t.Cleanup(srv.Close)

	c := newTestClient()
	c.StorefrontURL = srv.URL
	return c, &got
}

func TestCustomerByToken_Found(t *testing.T) {
	c, got := storefrontStub(t, `{"data":{"customer":{
		"id":"gid://shopify/Customer/1",
		"firstName":"Ada","lastName":"Laurent",
		"email":"ada@x.com","phone":"+33611111111"}}}`)

	cust, err := c.CustomerByToken(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("CustomerByToken() error = %v", err)
	}
	if cust == nil || cust.Email != "ada@x.com" || cust.FirstName != "Ada" {
		t.Fatalf("customer = %+v", cust)
	}
	if got.Variables["token"] != "tok-1" {
		t.Errorf("token variable = %v", got.Variables["token"])
	}
}

func TestCustomerByToken_Unrecognised(t *testing.T) {
	c, _ := storefrontStub(t, `{"data":{"customer":null}}`)

	cust, err := c.CustomerByToken(context.Background(), "stale")
	if err != nil {
		t.Fatalf("unrecognised token must not be an error, got %v", err)
	}
	if cust != nil {
		t.Fatalf("customer = %+v, want nil", cust)
	}
}

func TestCustomerByToken_GraphQLError(t *testing.T) {
	c, _ := storefrontStub(t, `{"errors":[{"message":"throttled"}]}`)

	if _, err := c.CustomerByToken(context.Background(), "tok"); err == nil {
		t.Fatal("top-level GraphQL error must surface as a Go error")
	}
}

func TestSignIn_UserError(t *testing.T) {
	c, _ := storefrontStub(t, `{"data":{"customerAccessTokenCreate":{
		"customerAccessToken":null,
		"customerUserErrors":[{"code":"UNIDENTIFIED_CUSTOMER","field":["input","password"],"message":"Unidentified customer"}]}}}`)

	tok, userErrs, err := c.SignIn(context.Background(), "ada@x.com", "wrong")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if tok != nil {
		t.Errorf("token = %+v, want nil", tok)
	}
	if len(userErrs) != 1 || userErrs[0].Message != "Unidentified customer" {
		t.Fatalf("userErrs = %+v", userErrs)
	}
	if userErrs[0].Field != "input.password" {
		t.Errorf("field = %q, want joined path", userErrs[0].Field)
	}
}

func TestSignIn_Success(t *testing.T) {
	c, _ := storefrontStub(t, `{"data":{"customerAccessTokenCreate":{
		"customerAccessToken":{"accessToken":"tok-xyz","expiresAt":"2026-09-30T00:00:00Z"},
		"customerUserErrors":[]}}}`)

	tok, userErrs, err := c.SignIn(context.Background(), "ada@x.com", "hunter22")
	if err != nil || len(userErrs) != 0 {
		t.Fatalf("SignIn() = %v, %v", userErrs, err)
	}
	if tok.Token != "tok-xyz" {
		t.Errorf("token = %q", tok.Token)
	}
	if tok.ExpiresAt.Before(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expiresAt = %v", tok.ExpiresAt)
	}
}

func TestCustomerProfile_MetafieldsAndAddresses(t *testing.T) {
	c, _ := storefrontStub(t, `{"data":{"customer":{
		"id":"gid://shopify/Customer/1","firstName":"Ada","lastName":"Laurent",
		"email":"ada@x.com","phone":"",
		"acceptsMarketing":true,
		"createdAt":"2025-01-02T00:00:00Z","updatedAt":"2025-06-01T00:00:00Z",
		"website":{"value":"https://atelier.example"},
		"instagram":null,
		"addresses":{"edges":[
			{"node":{"id":"a1","firstName":"Ada","lastName":"Laurent","company":"Atelier","address1":"1 Rue","address2":"","city":"Paris","province":"","zip":"75001","country":"France","phone":"+33611111111"}},
			{"node":{"id":"a2","firstName":"Ada","lastName":"Laurent","company":"Atelier","address1":"2 Rue","address2":"","city":"Lyon","province":"","zip":"69001","country":"France","phone":"+33611111111"}}
		]}}}}`)

	p, err := c.CustomerProfile(context.Background(), "tok")
	if err != nil {
		t.Fatalf("CustomerProfile() error = %v", err)
	}
	if p.Website != "https://atelier.example" {
		t.Errorf("website = %q", p.Website)
	}
	if p.Instagram != "" {
		t.Errorf("instagram = %q, want empty for null metafield", p.Instagram)
	}
	if len(p.Addresses) != 2 || p.Addresses[1].City != "Lyon" {
		t.Fatalf("addresses = %+v", p.Addresses)
	}
}

/*──────────────────────────── admin search ─────────────────────────────*/

func TestCustomerTags_LowercasesQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := r.Header.Get("X-Shopify-Access-Token"); tok != "admin-token" {
			t.Errorf("admin token header = %q", tok)
		}
		if r.URL.Path != "/customers/search.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("query")
		fmt.Fprint(w, `{"customers":[{"id":1,"email":"ada@x.com","tags":"wholesale, Approved ,vip"}]}`)
	}))
	defer srv.Close()

	c := newTestClient()
	c.AdminURL = srv.URL

	tags, err := c.CustomerTags(context.Background(), "Ada@X.com")
	if err != nil {
		t.Fatalf("CustomerTags() error = %v", err)
	}
	if gotQuery != "email:ada@x.com" {
		t.Errorf("query = %q, want lowercased email", gotQuery)
	}
	want := []string{"wholesale", "Approved", "vip"}
	if !reflect.DeepEqual(tags, want) {
		t.Errorf("tags = %v, want %v", tags, want)
	}
}

func TestCustomerTags_NoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"customers":[]}`)
	}))
	defer srv.Close()

	c := newTestClient()
	c.AdminURL = srv.URL

	tags, err := c.CustomerTags(context.Background(), "nobody@x.com")
	if err != nil {
		t.Fatalf("no match must not be an error, got %v", err)
	}
	if tags != nil {
		t.Errorf("tags = %v, want nil", tags)
	}
}

func TestCustomerTags_AdminFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient()
	c.AdminURL = srv.URL

	if _, err := c.CustomerTags(context.Background(), "ada@x.com"); err == nil {
		t.Fatal("want error on admin 502")
	}
}

func TestNew_DerivesEndpoints(t *testing.T) {
	c := newTestClient()
	if c.StorefrontURL != "https://aurelle.example/api/2024-07/graphql.json" {
		t.Errorf("StorefrontURL = %q", c.StorefrontURL)
	}
	if c.AdminURL != "https://aurelle.example/admin/api/2024-07" {
		t.Errorf("AdminURL = %q", c.AdminURL)
	}
}

func TestSplitTags(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"wholesale", []string{"wholesale"}},
		{"a, b ,c", []string{"a", "b", "c"}},
		{" , ,", nil},
		{"Approved", []string{"Approved"}},
	}
	for _, tc := range cases {
		if got := SplitTags(tc.raw); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("SplitTags(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

// Guard against the email leaking unescaped into the query string.
func TestCustomerTags_EncodesEmail(t *testing.T) {
	var raw string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw = r.URL.RawQuery
		fmt.Fprint(w, `{"customers":[]}`)
	}))
	defer srv.Close()

	c := newTestClient()
	c.AdminURL = srv.URL

	if _, err := c.CustomerTags(context.Background(), "a+b@x.com"); err != nil {
		t.Fatalf("CustomerTags() error = %v", err)
	}
	if strings.Contains(raw, "+b@") {
		t.Errorf("raw query %q not URL-encoded", raw)
	}
	if v, _ := url.ParseQuery(raw); v.Get("query") != "email:a+b@x.com" {
		t.Errorf("decoded query = %q", v.Get("query"))
	}
}
