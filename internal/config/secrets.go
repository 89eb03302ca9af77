// internal/config/secrets.go
//
// Vault reference resolution for the merged config tree.
//
// Context
// -------
// Operators keep the commerce admin token and the billing secret key in
// Vault and reference them from YAML as `vault:secret/storefront#key`.
// After the koanf layers are merged, resolveVaultRefs walks every string
// leaf, and any value carrying the `vault:` prefix is swapped for the
// secret it names.  When no reference is present the Vault client is
// never constructed, so dev setups without VAULT_ADDR work untouched.

package config

import (
	"context"
	"fmt"
	"time"

	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/aurelle/storefront/internal/vault"
)

// resolveVaultRefs swaps `vault:` string values in k for real secrets.
// A reference in the tree with no Vault server configured is a hard
// error; silently running with the literal reference string as a
// credential would only fail later and more confusingly.
func resolveVaultRefs(k *koanf.Koanf) error {
	var refs []string
	for key, val := range k.All() {
		if s, ok := val.(string); ok && len(s) > len(vault.RefPrefix) &&
			s[:len(vault.RefPrefix)] == vault.RefPrefix {
			refs = append(refs, key)
		}
	}
	if len(refs) == 0 {
		return nil
	}
	if !vault.Available() {
		return fmt.Errorf("config holds %d vault reference(s) but VAULT_ADDR is not set", len(refs))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	cli, err := vault.New(ctx, zap.S())
	if err != nil {
		return err
	}
	for _, key := range refs {
		val, err := cli.Resolve(ctx, k.String(key))
		if err != nil {
			return fmt.Errorf("resolve %s: %w", key, err)
		}
		if err := k.Set(key, val); err != nil {
			return err
		}
		zap.S().Debugw("vault reference resolved", "key", key)
	}
	return nil
}
