// cmd/web/main.go
//
// Aurelle storefront – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load env vars (server-wide file → .env fallback).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Load and validate config (YAML + env overlays, Vault references).
//
//  4. Build the commerce client and the single token verifier shared by
//     the interceptor and the billing routes.
//
//  5. Open the optional studio database, billing client, assist client,
//     and GeoLite2 reader; each one absent just disables its routes.
//
//  6. Assemble the middleware chain:
//
//     requestinfo.Enrich → ForceHTTPS → Security → Authenticate → routes
//
//  7. Serve /api, /metrics, and /healthz with hardened timeouts.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aurelle/storefront/internal/api"
	"github.com/aurelle/storefront/internal/assist"
	"github.com/aurelle/storefront/internal/auth"
	"github.com/aurelle/storefront/internal/billing"
	"github.com/aurelle/storefront/internal/commerce"
	"github.com/aurelle/storefront/internal/config"
	"github.com/aurelle/storefront/internal/database"
	"github.com/aurelle/storefront/internal/logger"
	"github.com/aurelle/storefront/internal/middleware"
	"github.com/aurelle/storefront/internal/requestinfo"
	"github.com/aurelle/storefront/internal/server"
	"github.com/aurelle/storefront/internal/session"
	"github.com/aurelle/storefront/internal/studio"
)

const serverEnvPath = "/usr/local/etc/aurelle-storefront/global.env"

// loadEnv prefers the server-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	//
	// ── 1.  Config ──────────────────────────────────────────────────────
	//
	cfg, err := config.Load()
	if err != nil {
		logOut.Fatalf("load config: %v", err)
	}

	//
	// ── 2.  Commerce client and the one shared verifier ────────────────
	//
	platform := commerce.New(cfg.Commerce, logOut)
	verifier := auth.NewVerifier(platform, logOut)
	checker := auth.NewCompletenessChecker(platform, logOut)
	cookies := session.Codec{Domain: cfg.Cookie.Domain}

	//
	// ── 3.  Optional integrations ───────────────────────────────────────
	//
	handler := &api.Handler{
		Platform: platform,
		Verifier: verifier,
		Checker:  checker,
		Cookies:  cookies,
		Validate: config.Validator(),
		Log:      logOut,
	}

	if dsn := cfg.Database.StudioDSN; dsn != "" {
		studioDB, err := database.Open(dsn)
		if err != nil {
			logOut.Fatalf("connect studio DB: %v", err)
		}
		defer studioDB.Close()
		handler.Studio = studio.NewRepository(studioDB)
		logOut.Infow("studio store online")
	}

	if b := billing.New(cfg.Billing, logOut); b != nil {
		handler.Billing = b
		logOut.Infow("billing online")
	}

	if a := assist.New(cfg.Assist, logOut); a != nil {
		handler.Assist = a
		logOut.Infow("assist online")
	}

	if path := cfg.Geo.DBPath; path != "" {
		if err := requestinfo.InitGeo(path); err != nil {
			logOut.Warnw("geo disabled", "path", path, "err", err)
		}
	}

	//
	// ── 4.  Router and middleware chain ────────────────────────────────
	//
	r := chi.NewRouter()
	r.Use(requestinfo.Enrich)
	r.Use(func(h http.Handler) http.Handler { return middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS, h) })
	r.Use(middleware.Security)
	r.Use(middleware.Authenticate(verifier))

	r.Mount("/api", handler.Routes())
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	//
	// ── 5.  Serve ───────────────────────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, r)
	logOut.Infow("storefront online", "addr", cfg.HTTP.ListenAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logOut.Fatalf("http server: %v", err)
	}
}
