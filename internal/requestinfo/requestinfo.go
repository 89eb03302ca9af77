//
//  internal/requestinfo/requestinfo.go
//
//  Lightweight types and helpers that collect per-request metadata
//  (user-agent fingerprint, IP + geolocation, URL, and timestamp) for
//  access logging.  These structs are inert: no pointers to handles or
//  large buffers, so they are safe to log or JSON-encode.
//
//  Dependencies
//  • github.com/avct/uasurfer         (UA parsing)
//  • github.com/oschwald/geoip2-golang (MaxMind lookup, optional)
//

package requestinfo

import (
	"context"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
)

//
//  -----------------------------
//  Struct definitions
//  -----------------------------
//

// UA holds the parsed user-agent properties the access log wants.
type UA struct {
	Raw         string // Entire User-Agent header
	Browser     string // "Chrome", "Firefox", "Safari", etc.
	Version     string // "124.0.6367"
	OS          string // "macOS", "Windows", "Android", "iOS", etc.
	Device      string // "Desktop", "Phone", "Tablet", "Bot", ...
	IsBot       bool   // True if UA matches a crawler signature
	PrimaryLang string // First tag from Accept-Language ("en", "es", ...)
}

// Geo holds IP-based geolocation hints.  Best-effort: empty when the
// database is absent or has no match.  The storefront uses the country
// code for currency hints in logs, nothing more.
type Geo struct {
	IP         net.IP // Original client address (not X-Forwarded-For chain)
	CountryISO string // "US", "CA", "FR", ...
	City       string // "Chicago", "Paris", ...
}

// Info is attached to the request context by Enrich.
type Info struct {
	UA        UA
	Geo       Geo
	URL       *url.URL // Pointer copy, safe to dereference read-only
	Timestamp time.Time
}

//
//  -----------------------------
//  Package-level state
//  -----------------------------
//

// geoReader is a singleton MaxMind handle.  Safe for concurrent reads,
// which is all we ever perform.  Nil when geo is disabled.
var geoReader *geoip2.Reader

// InitGeo opens the GeoLite2-City database.  The storefront runs fine
// without it, so a missing or unreadable file returns an error for main
// to log and geo lookups stay disabled.
func InitGeo(dbPath string) error {
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return err
	}
	geoReader = r
	return nil
}

//
//  -----------------------------
//  Public helper: FromContext
//  -----------------------------
//

type ctxKey struct{} // unexported, collision-proof

// FromContext returns the pointer previously stored by Enrich.
// It returns nil if the middleware has not run.
func FromContext(ctx context.Context) *Info {
	v, _ := ctx.Value(ctxKey{}).(*Info)
	return v
}

//
//  -----------------------------
//  Internal helpers
//  -----------------------------
//

// parseUA converts a raw header into our UA struct using uasurfer.
func parseUA(uaHeader, acceptLang string) UA {
	u := uasurfer.Parse(uaHeader)

	osName := strings.TrimPrefix(u.OS.Name.String(), "OS")
	if osName == "MacOSX" {
		osName = "macOS"
	}

	return UA{
		Raw:         uaHeader,
		Browser:     strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		Version:     versionString(u.Browser.Version),
		OS:          osName,
		Device:      deviceTypeToString(u.DeviceType),
		IsBot:       u.IsBot(),
		PrimaryLang: primaryLang(acceptLang),
	}
}

// versionString builds "major.minor.patch" and removes trailing ".0"
// segments.
func versionString(v uasurfer.Version) string {
	out := strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor) + "." + strconv.Itoa(v.Patch)
	out = strings.TrimSuffix(strings.TrimSuffix(out, ".0"), ".0")
	if out == "" {
		return "0"
	}
	return out
}

// deviceTypeToString maps uasurfer.DeviceType to a log-friendly string.
func deviceTypeToString(dt uasurfer.DeviceType) string {
	switch dt {
	case uasurfer.DeviceComputer:
		return "Desktop"
	case uasurfer.DevicePhone:
		return "Phone"
	case uasurfer.DeviceTablet:
		return "Tablet"
	case uasurfer.DeviceTV:
		return "TV"
	default:
		return "Unknown"
	}
}

// primaryLang extracts the first language subtag before any ";q=" rule.
func primaryLang(al string) string {
	if al == "" {
		return ""
	}
	parts := strings.Split(al, ",")
	tag := strings.TrimSpace(parts[0])
	if i := strings.Index(tag, ";"); i != -1 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}

// lookupGeo returns best-effort Geo data using the global reader.
func lookupGeo(ip net.IP) Geo {
	if geoReader == nil || ip == nil {
		return Geo{IP: ip}
	}
	rec, err := geoReader.City(ip)
	if err != nil {
		return Geo{IP: ip}
	}
	return Geo{
		IP:         ip,
		CountryISO: rec.Country.IsoCode,
		City:       rec.City.Names["en"],
	}
}
