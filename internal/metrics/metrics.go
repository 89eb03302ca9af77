// Package metrics holds Prometheus instruments that are used across the
// storefront.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	VerifyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_verify_total",
			Help: "Session verifications by outcome (authenticated, guest, fault).",
		},
		[]string{"outcome"},
	)

	SignInTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "signin_total",
			Help: "Cumulative number of sign-in attempts.",
		})

	SignInFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "signin_failures_total",
			Help: "Cumulative number of rejected sign-in attempts.",
		})

	CheckoutSessionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "checkout_sessions_total",
			Help: "Cumulative number of billing checkout sessions created.",
		})
)

// Verification outcomes recorded by the token verifier.
const (
	OutcomeAuthenticated = "authenticated"
	OutcomeGuest         = "guest"
	OutcomeFault         = "fault"
)

func init() {
	prometheus.MustRegister(
		VerifyTotal,
		SignInTotal,
		SignInFailuresTotal,
		CheckoutSessionsTotal,
	)
}
