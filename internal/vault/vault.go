// internal/vault/vault.go
//
// Vault client wrapper for the storefront service.
//
// Context
// -------
//   - Wraps the HashiCorp Vault Go SDK behind the two calls this service
//     needs: fetch one KV-v2 value, and resolve a `vault:` config reference.
//   - The commerce admin token and the billing secret key live in Vault in
//     production; staging and dev supply them via env instead, so every
//     entry point treats Vault as optional.
//   - Starts a background token-renewal loop tied to the boot context.
//
// Public workflow
// ---------------
//  1. cli, err := vault.New(ctx, zap.S())            // during boot.
//  2. val, err := cli.GetKV(ctx, path, key)          // anywhere in the app.
//  3. val, err := cli.Resolve(ctx, "vault:secret/storefront#admin_token")
//
// Build tags: none.
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

// RefPrefix marks config values that must be swapped for a Vault secret.
const RefPrefix = "vault:"

// cacheTTL bounds how long a fetched secret is reused.  Secrets in this
// service rotate rarely; five minutes keeps boot-time re-reads cheap
// without holding stale credentials for long.
const cacheTTL = 5 * time.Minute

// Client is safe for concurrent use.  Create once at startup and inject
// it where needed.  Zero value is invalid.
type Client struct {
	api *vault.Client
	log *zap.SugaredLogger

	cacheMu sync.RWMutex
	cache   map[string]cached // canonical path#key → value + expiry.
}

type cached struct {
	val string
	exp time.Time
}

// Available reports whether the environment points at a Vault server.
// Callers use it to decide between Vault resolution and env fallback.
func Available() bool { return os.Getenv("VAULT_ADDR") != "" }

// New constructs a Vault client and starts a background token-renewal
// loop bound to ctx.
//
// Environment expectations
// ------------------------
// • VAULT_ADDR   – scheme and host of the Vault server.
// • VAULT_TOKEN  – initial token (falls back to ~/.vault-token).
func New(ctx context.Context, log *zap.SugaredLogger) (*Client, error) {
	if log == nil {
		log = zap.S()
	}

	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		apiCli.SetToken(tok)
	}

	c := &Client{
		api:   apiCli,
		log:   log,
		cache: make(map[string]cached),
	}
	go c.renewLoop(ctx)
	return c, nil
}

// GetKV fetches a single key from a KV-v2 secret, caching the result for
// cacheTTL.
func (c *Client) GetKV(ctx context.Context, secretPath, key string) (string, error) {
	if secretPath == "" || key == "" {
		return "", errors.New("secret path and key must be non-empty")
	}

	canonical := secretPath + "#" + key

	c.cacheMu.RLock()
	if cv, ok := c.cache[canonical]; ok && time.Now().Before(cv.exp) {
		c.cacheMu.RUnlock()
		return cv.val, nil
	}
	c.cacheMu.RUnlock()

	mount, rel := splitMount(secretPath)
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}

	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %q", key, secretPath)
	}
	sval, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s#%s is not a string", secretPath, key)
	}

	c.cacheMu.Lock()
	c.cache[canonical] = cached{val: sval, exp: time.Now().Add(cacheTTL)}
	c.cacheMu.Unlock()
	return sval, nil
}

// Resolve expands a `vault:mount/path#key` reference into the secret it
// names.  Inputs without the prefix are returned unchanged.
func (c *Client) Resolve(ctx context.Context, ref string) (string, error) {
	if !strings.HasPrefix(ref, RefPrefix) {
		return ref, nil
	}
	body := strings.TrimPrefix(ref, RefPrefix)
	path, key, ok := strings.Cut(body, "#")
	if !ok || path == "" || key == "" {
		return "", fmt.Errorf("malformed vault reference %q (want vault:path#key)", ref)
	}
	return c.GetKV(ctx, path, key)
}

//
// Background token renewal
//

func (c *Client) renewLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		sec, err := c.api.Auth().Token().RenewSelf(0)
		if err != nil {
			c.log.Warnw("vault token renew self failed", "err", err)
			backoff(ctx, 30*time.Second)
			continue
		}
		if sec == nil || !sec.Auth.Renewable {
			c.log.Infow("vault token not renewable, sleeping", "sleep", "1h")
			backoff(ctx, time.Hour)
			continue
		}

		renewer, err := c.api.NewRenewer(&vault.RenewerInput{
			Secret: sec,
			Grace:  15 * time.Second,
		})
		if err != nil {
			c.log.Warnw("vault renewer init error", "err", err)
			backoff(ctx, 30*time.Second)
			continue
		}
		go renewer.Renew()

		stopped := false
		for !stopped {
			select {
			case <-ctx.Done():
				renewer.Stop()
				return
			case err := <-renewer.DoneCh():
				renewer.Stop()
				if err != nil {
					c.log.Warnw("vault token renewal stopped", "err", err)
				}
				backoff(ctx, 15*time.Second)
				stopped = true
			case ev := <-renewer.RenewCh():
				if ev != nil && ev.Secret != nil && ev.Secret.Auth != nil {
					c.log.Debugw("vault token renewed", "ttl_s", ev.Secret.Auth.LeaseDuration)
				}
			}
		}
	}
}

//
// Helpers
//

func splitMount(p string) (mount, rel string) {
	mount, rel, _ = strings.Cut(p, "/")
	return
}

func backoff(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
