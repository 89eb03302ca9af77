// internal/api/handler.go
//
// Route surface of the storefront service.
//
/*
Context
--------
The headless frontend talks to these JSON routes; everything else it
needs comes straight from the commerce platform's own APIs.  The routes
relevant to the session core are the sign-in/out, verification, and
recovery/activation flows; billing, studio, and assist are auxiliary
integrations that reuse the same verified identity.

Dependency shape: the handler takes narrow interfaces, satisfied by the
concrete clients in internal/commerce, internal/billing, internal/studio,
and internal/assist.  Billing, Studio, and Assist are optional; leaving
them nil returns 404 for their routes (the frontend feature-detects).

Both the interceptor (internal/middleware) and the billing route resolve
identity through the SAME injected *auth.Verifier; there is deliberately
no second verification code path anywhere.
*/
package api

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/aurelle/storefront/internal/assist"
	"github.com/aurelle/storefront/internal/auth"
	"github.com/aurelle/storefront/internal/commerce"
	"github.com/aurelle/storefront/internal/session"
	"github.com/aurelle/storefront/internal/studio"
)

// CommercePlatform is the slice of the commerce client the routes need.
type CommercePlatform interface {
	SignIn(ctx context.Context, email, password string) (*commerce.AccessToken, []commerce.UserError, error)
	SignOut(ctx context.Context, token string) error
	Recover(ctx context.Context, email string) ([]commerce.UserError, error)
	ResetByURL(ctx context.Context, resetURL, password string) (*commerce.AccessToken, []commerce.UserError, error)
	Activate(ctx context.Context, activationURL, password string) (*commerce.AccessToken, []commerce.UserError, error)
	CustomerProfile(ctx context.Context, token string) (*commerce.Profile, error)
}

// BillingPlatform is the slice of the billing client the routes need.
type BillingPlatform interface {
	EnsureCustomer(ctx context.Context, email string) (string, error)
	CreateCheckoutSession(ctx context.Context, customerID string) (string, error)
}

// StudioStore is the slice of the studio repository the routes need.
type StudioStore interface {
	GetBySlug(ctx context.Context, slug string) (*studio.Record, error)
	ListByProduct(ctx context.Context, handle string) ([]studio.Record, error)
}

// Assistant is the slice of the assist client the routes need.
type Assistant interface {
	Complete(ctx context.Context, conversation []assist.Message) (string, error)
}

// Handler wires the route surface.  All fields except the optional ones
// must be set.
type Handler struct {
	Platform CommercePlatform
	Verifier *auth.Verifier
	Checker  *auth.CompletenessChecker
	Cookies  session.Codec
	Billing  BillingPlatform // optional
	Studio   StudioStore     // optional
	Assist   Assistant       // optional
	Validate *validator.Validate
	Log      *zap.SugaredLogger
}

// Routes returns the chi router for everything under /api.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signin", h.handleSignIn)
		r.Post("/signout", h.handleSignOut)
		r.Get("/session", h.handleSession)
		r.Get("/verify", h.handleVerify)
		r.Post("/recover", h.handleRecover)
		r.Post("/reset", h.handleReset)
		r.Post("/activate", h.handleActivate)
	})

	r.Route("/account", func(r chi.Router) {
		r.Get("/profile", h.handleProfile)
		r.Get("/completeness", h.handleCompleteness)
	})

	if h.Billing != nil {
		r.Post("/billing/checkout-session", h.handleCheckoutSession)
	}
	if h.Studio != nil {
		r.Get("/studio", h.handleStudioList)
		r.Get("/studio/{slug}", h.handleStudioBySlug)
	}
	if h.Assist != nil {
		r.Post("/assist/chat", h.handleChat)
	}

	return r
}
