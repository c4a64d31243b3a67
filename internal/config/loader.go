// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` from three layers (highest precedence
last):

  1. Optional `.env` file at `<root>/conf/.env`.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `CARDFORGE_`, where `__` maps to "."
     (e.g., `CARDFORGE_HTTP__LISTEN_ADDR → http.listen_addr`).

Values of the form `vault:<path>#<key>` are then swapped for the secret they
name.  The merged tree is unmarshalled, defaulted, validated, and cached in
an `atomic.Pointer` for lock-free reads.

Instrumentation
---------------
  • DEBUG: root discovery, YAML read, each resolved secret key.
  • ERROR: YAML parse, env overlay, secret resolution, validation.
  • INFO:  final "config loaded" with key highlights.
  • Logs use the global sugared logger so boot problems surface before the
    file logger is installed.
*/
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/yanizio/cardforge/internal/captcha"
	"github.com/yanizio/cardforge/internal/domaincache"
	"github.com/yanizio/cardforge/internal/vault"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CARDFORGE_"

var current atomic.Pointer[Config]

// SecretResolver turns a `vault:` reference into its value.  *vault.Client
// satisfies it.
type SecretResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// Options tunes Load.  The zero value discovers the root and refuses
// `vault:` references.
type Options struct {
	Root    string
	Secrets SecretResolver
}

/*──────────────────────────── root discovery ───────────────────────────────*/

// RootDir resolves CARDFORGE_ROOT or climbs directories until
// conf/global.yaml is found.  Falls back to the bin/ layout used in
// production.
func RootDir() string {
	if r := os.Getenv(EnvPrefix + "ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	for dir := wd; ; {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
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

// Load reads .env, YAML, env overrides, resolves secrets, validates, and
// caches the result.
func Load(ctx context.Context, opts Options) (*Config, error) {
	root := opts.Root
	if root == "" {
		root = RootDir()
	}
	zap.S().Debugw("config root resolved", "root", root)

	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, fmt.Errorf("config: load %s: %w", yamlPath, err)
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, fmt.Errorf("config: env overlay: %w", err)
	}

	if err := resolveSecrets(ctx, k, opts.Secrets); err != nil {
		zap.S().Errorw("config secret resolution failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.Paths.Root = root
	applyDefaults(&cfg)
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"force_https", cfg.HTTP.ForceHTTPS,
		"cache_ttl", cfg.Cache.TTL,
		"cache_capacity", cfg.Cache.Capacity,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

// envKey maps CARDFORGE_HTTP__LISTEN_ADDR → http.listen_addr.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ToLower(strings.ReplaceAll(s, "__", "."))
}

// resolveSecrets replaces every `vault:` string in k.
func resolveSecrets(ctx context.Context, k *koanf.Koanf, sr SecretResolver) error {
	for key, val := range k.All() {
		s, ok := val.(string)
		if !ok || !vault.IsRef(s) {
			continue
		}
		if sr == nil {
			return fmt.Errorf("config: %s is a vault reference but Vault is not configured", key)
		}
		plain, err := sr.Resolve(ctx, s)
		if err != nil {
			return fmt.Errorf("config: resolve %s: %w", key, err)
		}
		if err := k.Set(key, plain); err != nil {
			return fmt.Errorf("config: set %s: %w", key, err)
		}
		zap.S().Debugw("config secret resolved", "key", key)
	}
	return nil
}

func applyDefaults(c *Config) {
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 10 * time.Second
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 30 * time.Second
	}
	if c.HTTP.IdleTimeout == 0 {
		c.HTTP.IdleTimeout = 120 * time.Second
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = domaincache.DefaultTTL
	}
	if c.Cache.Capacity == 0 {
		c.Cache.Capacity = domaincache.DefaultCapacity
	}
	if c.Captcha.Secret == "" {
		c.Captcha.Secret = captcha.TestSecret
	}
	if c.Captcha.SiteKey == "" {
		c.Captcha.SiteKey = captcha.TestSiteKey
	}
	if c.Captcha.VerifyURL == "" {
		c.Captcha.VerifyURL = captcha.DefaultVerifyURL
	}
	if c.Auth.SessionTTL == 0 {
		c.Auth.SessionTTL = 7 * 24 * time.Hour
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Storage.Root != "" && !filepath.IsAbs(c.Storage.Root) {
		c.Storage.Root = filepath.Join(c.Paths.Root, c.Storage.Root)
	}
	if c.Log.File != "" && !filepath.IsAbs(c.Log.File) {
		c.Log.File = filepath.Join(c.Paths.Root, c.Log.File)
	}
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// DSNWithPassword returns the DSN with the password spliced in.
func (d Database) DSNWithPassword() string {
	if strings.Contains(d.DSN, "%s") {
		return fmt.Sprintf(d.DSN, d.Password)
	}
	return d.DSN
}

// UsingTestCaptcha reports whether the always-pass CAPTCHA key is active.
func (c *Config) UsingTestCaptcha() bool { return captcha.IsTestSecret(c.Captcha.Secret) }

// Get returns the most recently loaded Config, or nil before Load.
func Get() *Config { return current.Load() }
