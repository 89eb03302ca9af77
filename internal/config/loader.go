// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `.env` file at `<root>/conf/.env`.
  2. `conf/storefront.yaml`.
  3. Environment variables prefixed `STOREFRONT_`, where `__` maps to “.”
     (e.g., `STOREFRONT_COMMERCE__ADMIN_TOKEN → commerce.admin_token`).

After merging, any string value beginning with `vault:` is swapped for
the secret it points at (see resolveVaultRefs), the tree is unmarshalled
into strongly-typed structs, defaulted, validated, enriched with the
runtime root path, and cached in an `atomic.Pointer` for lock-free
reads.  `Reload()` simply calls `Load()` again and swaps the pointer.

Instrumentation
---------------
  • DEBUG spans — root discovery, YAML read, env overlay, vault refs.
  • ERROR spans — YAML parse, env overlay, unmarshal, validation failures.
  • INFO  span  — final “config loaded” with key highlights (never the
    token values themselves).
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed (bootstrap console).

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/storefront.yaml`;
    this lets `go run ./cmd/web` work from any sub-directory.
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

var current atomic.Pointer[Config]

// Defaults applied after unmarshal when the corresponding key is unset.
const (
	defaultCookieDomain = "aurelle.com"
	defaultAPIVersion   = "2024-07"
	defaultAssistModel  = "gpt-4o-mini"
)

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves STOREFRONT_ROOT or climbs directories until
// conf/storefront.yaml is found.  Falls back to executable heuristic for
// production layout.
func rootDir() string {
	if r := os.Getenv("STOREFRONT_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "storefront.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, env overrides, resolves Vault references,
// validates, and caches Config.
func Load() (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "storefront.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	// Env overrides: STOREFRONT_COMMERCE__ADMIN_TOKEN → commerce.admin_token
	if err := k.Load(env.Provider("STOREFRONT_", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, "STOREFRONT_"), "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	// Swap `vault:` references for real secrets before unmarshalling.
	if err := resolveVaultRefs(k); err != nil {
		zap.S().Errorw("config vault resolution failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	applyDefaults(&cfg)
	cfg.Paths.Root = root
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"force_https", cfg.HTTP.ForceHTTPS,
		"store_domain", cfg.Commerce.StoreDomain,
		"cookie_domain", cfg.Cookie.Domain,
		"billing", cfg.Billing.SecretKey != "",
		"studio", cfg.Database.StudioDSN != "",
		"assist", cfg.Assist.APIKey != "",
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

// applyDefaults fills optional fields the overlays left empty.
func applyDefaults(cfg *Config) {
	if cfg.Cookie.Domain == "" {
		cfg.Cookie.Domain = defaultCookieDomain
	}
	if cfg.Commerce.APIVersion == "" {
		cfg.Commerce.APIVersion = defaultAPIVersion
	}
	if cfg.Assist.Model == "" {
		cfg.Assist.Model = defaultAssistModel
	}
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config  { return current.Load() }
func Reload() error { _, err := Load(); return err }
