// internal/commerce/client.go
//
// Commerce-platform client.
//
// Context
// -------
//   Two upstream surfaces, one client:
//
//     • Storefront GraphQL API – customer-facing reads and mutations,
//       authorized by the public storefront token.
//     • Admin REST API – customer search by email, authorized by the
//       private admin token.  The customer-facing API does not expose
//       tags, so wholesale approval has to come from here.
//
//   Every method is one awaited round trip; there is no retry logic
//   anywhere (a failed call is the caller's problem to collapse, see
//   internal/auth's fail-open contract).  Platform-reported user errors
//   (wrong password, expired reset URL) come back as []UserError, never
//   as Go errors; Go errors mean transport or decoding faults.
//
// Notes
// -----
//   • StorefrontURL and AdminURL are exported so tests can point the
//     client at httptest servers.
//   • Oxford commas, two spaces after periods.
//
//------------------------------------------------------------------------------

package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aurelle/storefront/internal/config"
)

// Header names the platform expects on each surface.
const (
	storefrontTokenHeader = "X-Shopify-Storefront-Access-Token"
	adminTokenHeader      = "X-Shopify-Access-Token"
)

// Client talks to both platform surfaces.  Safe for concurrent use.
type Client struct {
	// StorefrontURL is the full GraphQL endpoint; AdminURL is the admin
	// API base (no trailing slash).  New derives both from config.
	StorefrontURL string
	AdminURL      string

	storefrontToken string
	adminToken      string
	http            *http.Client
	log             *zap.SugaredLogger
}

// New builds a Client from the commerce config section.
func New(cfg config.Commerce, log *zap.SugaredLogger) *Client {
	if log == nil {
		log = zap.S()
	}
	return &Client{
		StorefrontURL:   fmt.Sprintf("https://%s/api/%s/graphql.json", cfg.StoreDomain, cfg.APIVersion),
		AdminURL:        fmt.Sprintf("https://%s/admin/api/%s", cfg.StoreDomain, cfg.APIVersion),
		storefrontToken: cfg.StorefrontToken,
		adminToken:      cfg.AdminToken,
		http:            &http.Client{Timeout: 10 * time.Second},
		log:             log,
	}
}

/*──────────────────────────── GraphQL plumbing ─────────────────────────────*/

// gqlError is one entry of the top-level GraphQL "errors" array.
type gqlError struct {
	Message string `json:"message"`
}

// gql posts one query and unmarshals the "data" object into out.
// Top-level GraphQL errors become Go errors; user errors inside mutation
// payloads are the caller's to inspect.
func (c *Client) gql(ctx context.Context, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": vars,
	})
	if err != nil {
		return fmt.Errorf("commerce: encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.StorefrontURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("commerce: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(storefrontTokenHeader, c.storefrontToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("commerce: storefront call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("commerce: storefront status %d", resp.StatusCode)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []gqlError      `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("commerce: decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("commerce: graphql: %s", envelope.Errors[0].Message)
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("commerce: decode data: %w", err)
		}
	}
	return nil
}

// wireUserError matches the platform's customerUserErrors shape, where
// "field" is a path array.
type wireUserError struct {
	Code    string   `json:"code"`
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

func convertUserErrors(in []wireUserError) []UserError {
	if len(in) == 0 {
		return nil
	}
	out := make([]UserError, 0, len(in))
	for _, e := range in {
		out = append(out, UserError{
			Field:   strings.Join(e.Field, "."),
			Message: e.Message,
		})
	}
	return out
}

/*──────────────────────────── customer queries ─────────────────────────────*/

const customerByTokenQuery = `
query customerByToken($token: String!) {
  customer(customerAccessToken: $token) {
    id
    firstName
    lastName
    email
    phone
  }
}`

// CustomerByToken resolves a session token to its customer.  A nil
// Customer with a nil error means the platform does not recognise the
// token; that is the normal unauthenticated outcome, not a fault.
func (c *Client) CustomerByToken(ctx context.Context, token string) (*Customer, error) {
	var data struct {
		Customer *Customer `json:"customer"`
	}
	if err := c.gql(ctx, customerByTokenQuery, map[string]any{"token": token}, &data); err != nil {
		return nil, err
	}
	return data.Customer, nil
}

const customerProfileQuery = `
query customerProfile($token: String!) {
  customer(customerAccessToken: $token) {
    id
    firstName
    lastName
    email
    phone
    acceptsMarketing
    createdAt
    updatedAt
    website: metafield(namespace: "wholesale", key: "website") { value }
    instagram: metafield(namespace: "wholesale", key: "instagram") { value }
    addresses(first: 10) {
      edges {
        node {
          id
          firstName
          lastName
          company
          address1
          address2
          city
          province
          zip
          country
          phone
        }
      }
    }
  }
}`

// CustomerProfile fetches the full profile, including the address book
// and the wholesale metafields, for account pages and the completeness
// check.  Nil profile, nil error means the token is not recognised.
func (c *Client) CustomerProfile(ctx context.Context, token string) (*Profile, error) {
	var data struct {
		Customer *struct {
			Customer
			AcceptsMarketing bool      `json:"acceptsMarketing"`
			CreatedAt        time.Time `json:"createdAt"`
			UpdatedAt        time.Time `json:"updatedAt"`
			Website          *struct {
				Value string `json:"value"`
			} `json:"website"`
			Instagram *struct {
				Value string `json:"value"`
			} `json:"instagram"`
			Addresses struct {
				Edges []struct {
					Node Address `json:"node"`
				} `json:"edges"`
			} `json:"addresses"`
		} `json:"customer"`
	}
	if err := c.gql(ctx, customerProfileQuery, map[string]any{"token": token}, &data); err != nil {
		return nil, err
	}
	if data.Customer == nil {
		return nil, nil
	}

	p := &Profile{
		Customer:         data.Customer.Customer,
		AcceptsMarketing: data.Customer.AcceptsMarketing,
		CreatedAt:        data.Customer.CreatedAt,
		UpdatedAt:        data.Customer.UpdatedAt,
	}
	if data.Customer.Website != nil {
		p.Website = data.Customer.Website.Value
	}
	if data.Customer.Instagram != nil {
		p.Instagram = data.Customer.Instagram.Value
	}
	for _, e := range data.Customer.Addresses.Edges {
		p.Addresses = append(p.Addresses, e.Node)
	}
	return p, nil
}

/*──────────────────────────── token mutations ──────────────────────────────*/

const signInMutation = `
mutation signIn($input: CustomerAccessTokenCreateInput!) {
  customerAccessTokenCreate(input: $input) {
    customerAccessToken {
      accessToken
      expiresAt
    }
    customerUserErrors {
      code
      field
      message
    }
  }
}`

// SignIn exchanges credentials for a fresh access token.  Wrong
// credentials come back as user errors with a nil token; only transport
// faults produce a Go error.
func (c *Client) SignIn(ctx context.Context, email, password string) (*AccessToken, []UserError, error) {
	var data struct {
		Payload struct {
			CustomerAccessToken *AccessToken    `json:"customerAccessToken"`
			CustomerUserErrors  []wireUserError `json:"customerUserErrors"`
		} `json:"customerAccessTokenCreate"`
	}
	vars := map[string]any{
		"input": map[string]any{"email": email, "password": password},
	}
	if err := c.gql(ctx, signInMutation, vars, &data); err != nil {
		return nil, nil, err
	}
	return data.Payload.CustomerAccessToken, convertUserErrors(data.Payload.CustomerUserErrors), nil
}

const signOutMutation = `
mutation signOut($token: String!) {
  customerAccessTokenDelete(customerAccessToken: $token) {
    deletedAccessToken
  }
}`

// SignOut revokes the token on the platform.  Best-effort: the cookie is
// cleared regardless, so callers may ignore the error after logging it.
func (c *Client) SignOut(ctx context.Context, token string) error {
	return c.gql(ctx, signOutMutation, map[string]any{"token": token}, nil)
}

const recoverMutation = `
mutation recover($email: String!) {
  customerRecover(email: $email) {
    customerUserErrors {
      code
      field
      message
    }
  }
}`

// Recover asks the platform to email a password-reset link.
func (c *Client) Recover(ctx context.Context, email string) ([]UserError, error) {
	var data struct {
		Payload struct {
			CustomerUserErrors []wireUserError `json:"customerUserErrors"`
		} `json:"customerRecover"`
	}
	if err := c.gql(ctx, recoverMutation, map[string]any{"email": email}, &data); err != nil {
		return nil, err
	}
	return convertUserErrors(data.Payload.CustomerUserErrors), nil
}

const resetByURLMutation = `
mutation resetByUrl($resetUrl: URL!, $password: String!) {
  customerResetByUrl(resetUrl: $resetUrl, password: $password) {
    customerAccessToken {
      accessToken
      expiresAt
    }
    customerUserErrors {
      code
      field
      message
    }
  }
}`

// ResetByURL completes a password reset and returns a fresh token so the
// customer lands signed in.
func (c *Client) ResetByURL(ctx context.Context, resetURL, password string) (*AccessToken, []UserError, error) {
	var data struct {
		Payload struct {
			CustomerAccessToken *AccessToken    `json:"customerAccessToken"`
			CustomerUserErrors  []wireUserError `json:"customerUserErrors"`
		} `json:"customerResetByUrl"`
	}
	vars := map[string]any{"resetUrl": resetURL, "password": password}
	if err := c.gql(ctx, resetByURLMutation, vars, &data); err != nil {
		return nil, nil, err
	}
	return data.Payload.CustomerAccessToken, convertUserErrors(data.Payload.CustomerUserErrors), nil
}

const activateMutation = `
mutation activate($activationUrl: URL!, $password: String!) {
  customerActivateByUrl(activationUrl: $activationUrl, password: $password) {
    customerAccessToken {
      accessToken
      expiresAt
    }
    customerUserErrors {
      code
      field
      message
    }
  }
}`

// Activate completes wholesale account activation and returns a fresh
// token, mirroring ResetByURL.
func (c *Client) Activate(ctx context.Context, activationURL, password string) (*AccessToken, []UserError, error) {
	var data struct {
		Payload struct {
			CustomerAccessToken *AccessToken    `json:"customerAccessToken"`
			CustomerUserErrors  []wireUserError `json:"customerUserErrors"`
		} `json:"customerActivateByUrl"`
	}
	vars := map[string]any{"activationUrl": activationURL, "password": password}
	if err := c.gql(ctx, activateMutation, vars, &data); err != nil {
		return nil, nil, err
	}
	return data.Payload.CustomerAccessToken, convertUserErrors(data.Payload.CustomerUserErrors), nil
}

/*──────────────────────────── admin tag search ─────────────────────────────*/

// CustomerTags looks up a customer's free-text tags by email via the
// admin search endpoint.  The email is lowercased before URL-encoding so
// the search matches regardless of how the customer typed it at sign-in.
//
// The admin search can return several customers for a shared email; the
// storefront takes the first match and logs the count so duplicates are
// visible in the logs without changing behaviour.
func (c *Client) CustomerTags(ctx context.Context, email string) ([]string, error) {
	q := url.Values{}
	q.Set("query", "email:"+strings.ToLower(email))
	endpoint := c.AdminURL + "/customers/search.json?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("commerce: build admin request: %w", err)
	}
	req.Header.Set(adminTokenHeader, c.adminToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("commerce: admin search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("commerce: admin search status %d", resp.StatusCode)
	}

	var out struct {
		Customers []struct {
			ID    int64  `json:"id"`
			Email string `json:"email"`
			Tags  string `json:"tags"`
		} `json:"customers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("commerce: decode admin search: %w", err)
	}
	if len(out.Customers) == 0 {
		return nil, nil
	}
	if len(out.Customers) > 1 {
		c.log.Warnw("admin search matched multiple customers, taking first",
			"email", strings.ToLower(email), "matches", len(out.Customers))
	}
	return SplitTags(out.Customers[0].Tags), nil
}

// SplitTags turns the admin API's comma-joined tag string into a clean
// slice: split on commas, trim whitespace, drop empties.  Casing is
// preserved; approval checks are case-insensitive downstream.
func SplitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}
