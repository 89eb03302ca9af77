// internal/config/model.go
//
// Typed configuration model for the storefront service.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                              – dotenv values,
//   • `conf/storefront.yaml`                       – primary static file,
//   • `STOREFRONT_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *before* unmarshalling, so the model never
// stores Vault URIs—only plain strings.  That is how the commerce admin
// token and the billing secret key stay out of flat files.
//
// Validation happens immediately after unmarshal; the app fails fast if
// the platform credentials are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Cookie section
//

// Cookie controls the customer-session cookie attributes.  The name is a
// fixed constant in internal/session; only the domain varies between the
// production apex and staging hosts.
type Cookie struct {
	Domain string `koanf:"domain"`
}

//
// Commerce section
//

// Commerce holds the credentials for the commerce platform.  The
// storefront token authorizes the customer-facing GraphQL API; the admin
// token authorizes the administrative customer search used for tag
// resolution.  Both are secrets and should come from Vault or env, never
// from YAML committed to git.
type Commerce struct {
	StoreDomain     string `koanf:"store_domain"     validate:"required,hostname"`
	APIVersion      string `koanf:"api_version"`
	StorefrontToken string `koanf:"storefront_token" validate:"required"`
	AdminToken      string `koanf:"admin_token"      validate:"required"`
}

//
// Billing section
//

// Billing configures the payment platform used for wholesale
// subscriptions.  Empty SecretKey disables the billing routes.
type Billing struct {
	SecretKey  string `koanf:"secret_key"`
	PriceID    string `koanf:"price_id"`
	SuccessURL string `koanf:"success_url" validate:"omitempty,url"`
	CancelURL  string `koanf:"cancel_url"  validate:"omitempty,url"`
}

//
// Database section
//

// Database holds the DSN for the studio auxiliary-record store.  Empty
// StudioDSN disables the studio routes; the auth path never touches it.
type Database struct {
	StudioDSN string `koanf:"studio_dsn"`
}

//
// Assist section
//

// Assist configures the AI completion API backing chat support.  Empty
// APIKey disables the assist route.
type Assist struct {
	BaseURL string `koanf:"base_url" validate:"omitempty,url"`
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`
}

//
// Geo section
//

// Geo points at an optional GeoLite2-City database used for request
// enrichment.  An empty or missing path disables geo lookups.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or STOREFRONT_ROOT override) so later code
// can build absolute file paths.
type Paths struct {
	Root string // STOREFRONT_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Cookie   Cookie   `koanf:"cookie"`
	Commerce Commerce `koanf:"commerce"`
	Billing  Billing  `koanf:"billing"`
	Database Database `koanf:"database"`
	Assist   Assist   `koanf:"assist"`
	Geo      Geo      `koanf:"geo"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}
