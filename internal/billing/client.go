// internal/billing/client.go
//
// Payment-platform client for wholesale subscriptions.
//
// Context
// -------
//   Two calls, both form-encoded REST against the payment platform:
//   resolve-or-create the payment customer for a verified email, and
//   mint a subscription checkout session the frontend redirects to.
//   There is no SDK dependency; the surface is small enough that a thin
//   client over net/http keeps the dependency tree flat.
//
//   Identity binding: the handler verifies the session cookie through
//   the shared token verifier BEFORE any call lands here, so the email
//   this client receives is always a platform-verified one, never a
//   caller-supplied value.
//
// Notes
// -----
//   • BaseURL is exported so tests can point at an httptest server.
//   • No retries; a failed call surfaces as a 500 to the frontend.
//
//------------------------------------------------------------------------------

package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aurelle/storefront/internal/config"
)

// Client talks to the payment platform.  Safe for concurrent use.
type Client struct {
	BaseURL string // e.g. https://api.stripe.com; tests override

	secretKey  string
	priceID    string
	successURL string
	cancelURL  string
	http       *http.Client
	log        *zap.SugaredLogger
}

// New builds a Client from the billing config section.  Returns nil when
// no secret key is configured; callers treat a nil client as "billing
// disabled".
func New(cfg config.Billing, log *zap.SugaredLogger) *Client {
	if cfg.SecretKey == "" {
		return nil
	}
	if log == nil {
		log = zap.S()
	}
	return &Client{
		BaseURL:    "https://api.stripe.com",
		secretKey:  cfg.SecretKey,
		priceID:    cfg.PriceID,
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
		http:       &http.Client{Timeout: 15 * time.Second},
		log:        log,
	}
}

// do sends one form-encoded request and decodes the JSON response.
func (c *Client) do(ctx context.Context, method, path string, form url.Values, out any) error {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("billing: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("billing: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("billing: %s %s: status %d: %s",
			method, path, resp.StatusCode, apiErr.Error.Message)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("billing: decode %s: %w", path, err)
		}
	}
	return nil
}

// EnsureCustomer returns the payment-customer ID for email, creating the
// customer when the platform has none.  Lookup is by exact email; the
// email comes from token verification, never from the request body.
func (c *Client) EnsureCustomer(ctx context.Context, email string) (string, error) {
	q := url.Values{}
	q.Set("query", fmt.Sprintf("email:%q", strings.ToLower(email)))

	var found struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/customers/search?"+q.Encode(), nil, &found); err != nil {
		return "", err
	}
	if len(found.Data) > 0 {
		return found.Data[0].ID, nil
	}

	form := url.Values{}
	form.Set("email", strings.ToLower(email))
	var created struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/customers", form, &created); err != nil {
		return "", err
	}
	c.log.Infow("payment customer created", "customer", created.ID)
	return created.ID, nil
}

// CreateCheckoutSession mints a subscription checkout session for the
// given payment customer and returns the hosted URL to redirect to.
func (c *Client) CreateCheckoutSession(ctx context.Context, customerID string) (string, error) {
	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("customer", customerID)
	form.Set("line_items[0][price]", c.priceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", c.successURL)
	form.Set("cancel_url", c.cancelURL)

	var sess struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", form, &sess); err != nil {
		return "", err
	}
	c.log.Infow("checkout session created", "session", sess.ID, "customer", customerID)
	return sess.URL, nil
}
