// internal/secret/secret.go
//
// Vault-backed secret reference resolution.
//
// Context
// -------
//   - A build argument whose value starts with `vault:` is a reference of
//     the form `vault:<mount/path>#<key>`, resolved through the HashiCorp
//     Vault Go SDK exactly once, at validation time.
//   - This is one-shot reference resolution for a one-shot procedure: no
//     token renewal loop, no lease management.  The process either reads
//     the secret now or the build aborts.
//
// Public workflow
// ---------------
//  1. cli, err := secret.New(log.Printf)            // during the gate.
//  2. val, err := cli.Resolve(ctx, "vault:kv/app#secret_key")
//
// Environment expectations
// ------------------------
// • VAULT_ADDR   – scheme and host of the Vault server.
// • VAULT_TOKEN  – token (falls back to ~/.vault-token).
package secret

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	vault "github.com/hashicorp/vault/api"
)

// RefPrefix marks a build-argument value as a Vault reference.
const RefPrefix = "vault:"

// IsRef reports whether v is a Vault reference rather than a literal.
func IsRef(v string) bool { return strings.HasPrefix(v, RefPrefix) }

// parseRef splits `vault:<mount/path>#<key>` into its path and key parts.
func parseRef(v string) (secretPath, key string, err error) {
	body := strings.TrimPrefix(v, RefPrefix)
	i := strings.LastIndexByte(body, '#')
	if i <= 0 || i == len(body)-1 {
		return "", "", fmt.Errorf("malformed vault reference %q: want vault:<path>#<key>", v)
	}
	return body[:i], body[i+1:], nil
}

//
// SECTION 1.  Public façade
//

// Client is safe for concurrent use, although the bootstrap procedure only
// ever calls it from its single linear path.  Zero value is invalid.
type Client struct {
	api   *vault.Client
	logFn func(string, ...any)

	cacheMu sync.RWMutex
	cache   map[string]string // canonical path#key → resolved value
}

// New constructs a Vault client from the standard VAULT_* environment.
func New(logFn func(string, ...any)) (*Client, error) {
	if logFn == nil {
		logFn = func(string, ...any) {}
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

	return &Client{
		api:   apiCli,
		logFn: logFn,
		cache: make(map[string]string),
	}, nil
}

// Resolve fetches the value behind a `vault:<path>#<key>` reference from a
// KV-v2 secret.  Repeated references to the same path#key within one
// process hit the cache.
func (c *Client) Resolve(ctx context.Context, ref string) (string, error) {
	secretPath, key, err := parseRef(ref)
	if err != nil {
		return "", err
	}
	if secretPath == "" || key == "" {
		return "", errors.New("secret path and key must be non-empty")
	}

	canonical := secretPath + "#" + key

	c.cacheMu.RLock()
	if cv, ok := c.cache[canonical]; ok {
		c.cacheMu.RUnlock()
		return cv, nil
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
	c.cache[canonical] = sval
	c.cacheMu.Unlock()

	c.logFn("vault: resolved %s", canonical)
	return sval, nil
}

//
// SECTION 2.  Helpers
//

func splitMount(p string) (mount, rel string) {
	if p == "" {
		return "", ""
	}
	parts := strings.SplitN(p, "/", 2)
	mount = parts[0]
	if len(parts) == 2 {
		rel = parts[1]
	}
	return
}
