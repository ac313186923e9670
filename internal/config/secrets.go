// internal/config/secrets.go
//
// Vault reference resolution.
//
// Context
// -------
// Operators keep credentials (MySQL passwords, Redis auth) out of flat
// files by writing configuration values of the form
//
//	vault:<kv2-path>#<key>
//
// e.g.  `dsn: "vault:secret/beacon/mysql#dsn"`.  After the Koanf layers
// are merged, resolveSecrets walks every string leaf and replaces each
// reference with the value read from Vault, so the typed model only
// ever sees plain strings.  The Vault client is created lazily—a config
// tree without references never touches Vault, and deployments without
// a Vault server pay nothing.
//
// Notes
// -----
//   • A malformed reference (missing `#`) or a failed read aborts Load;
//     booting with a half-resolved config is worse than not booting.
//   • Resolved values are cached inside the Vault client per key TTL.
//   • Oxford commas, two spaces after periods.

package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/yanizio/beacon/internal/vault"
)

// vaultPrefix marks a config value as a Vault KV-v2 reference.
const vaultPrefix = "vault:"

// secretTTL caches resolved values inside the Vault client so Reload()
// does not hammer the server.
const secretTTL = 5 * time.Minute

// resolveSecrets replaces every `vault:` string leaf in k with the value
// fetched from Vault.  It is a no-op when no reference exists.
func resolveSecrets(k *koanf.Koanf) error {
	var refs []string
	for key, val := range k.All() {
		if s, ok := val.(string); ok && strings.HasPrefix(s, vaultPrefix) {
			refs = append(refs, key)
		}
	}
	if len(refs) == 0 {
		return nil
	}

	ctx := context.Background()
	cli, err := vault.New(ctx, zap.S().Infof)
	if err != nil {
		return fmt.Errorf("vault client: %w", err)
	}

	for _, key := range refs {
		ref := strings.TrimPrefix(k.String(key), vaultPrefix)
		path, field, ok := strings.Cut(ref, "#")
		if !ok || path == "" || field == "" {
			return fmt.Errorf("malformed vault reference at %s: %q", key, ref)
		}

		val, err := cli.GetKV(ctx, path, field, secretTTL)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", key, err)
		}
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
		zap.S().Debugw("vault reference resolved", "key", key, "path", path)
	}
	return nil
}
