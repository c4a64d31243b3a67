// internal/config/model.go
//
// Typed configuration model for CardForge.
//
// Context
// -------
// These structs define the configuration tree that loader.go builds from
// three overlay layers:
//
//   - optional `.env`                             dotenv values,
//   - `conf/global.yaml`                          primary static file,
//   - `CARDFORGE_`-prefixed environment overrides highest precedence.
//
// Any string that begins with `vault:` is resolved through Vault before
// unmarshalling, so the model only ever holds plain values.
//
// Notes
// -----
//   - Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   - The `Paths` block is filled at runtime; YAML must not set it.
//   - Durations are Go duration strings ("5m", "15s").
package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr     string        `koanf:"listen_addr"     validate:"required,hostname_port"`
	ForceHTTPS     bool          `koanf:"force_https"`
	PrimaryHosts   []string      `koanf:"primary_hosts"`
	LocalhostAlias string        `koanf:"localhost_alias"`
	ReadTimeout    time.Duration `koanf:"read_timeout"    validate:"gte=0"`
	WriteTimeout   time.Duration `koanf:"write_timeout"   validate:"gte=0"`
	IdleTimeout    time.Duration `koanf:"idle_timeout"    validate:"gte=0"`
}

//
// Database section
//

// Database holds the DSN and its secret.
//
// `DSN` may contain one `%s` verb where the password goes; the password
// itself normally arrives as a `vault:` reference.
type Database struct {
	DSN      string `koanf:"dsn"      validate:"required"`
	Password string `koanf:"password"`
}

//
// Domain cache section
//

// Cache sizes the custom-domain cache.
type Cache struct {
	TTL      time.Duration `koanf:"ttl"      validate:"gte=0"`
	Capacity int           `koanf:"capacity" validate:"gte=0"`
}

//
// CAPTCHA, storage, notification, auth
//

// Captcha configures the siteverify client.  An empty secret falls back to
// the provider's always-pass test key, which boot logs as a warning.
type Captcha struct {
	Secret    string `koanf:"secret"`
	SiteKey   string `koanf:"site_key"`
	VerifyURL string `koanf:"verify_url" validate:"omitempty,url"`
}

// Storage is where uploads land and the URL prefix they are served under.
type Storage struct {
	Root     string `koanf:"root"      validate:"required"`
	BaseURL  string `koanf:"base_url"  validate:"required"`
	MaxBytes int64  `koanf:"max_bytes" validate:"gte=0"`
}

// Notify points at the admin notification function.  Empty URL logs only.
type Notify struct {
	URL    string `koanf:"url"     validate:"omitempty,url"`
	APIKey string `koanf:"api_key"`
}

// Auth verifies session tokens and guards admin endpoints.
type Auth struct {
	JWTSecret  string        `koanf:"jwt_secret"  validate:"required,min=16"`
	Audience   string        `koanf:"audience"`
	AdminToken string        `koanf:"admin_token"`
	SessionTTL time.Duration `koanf:"session_ttl" validate:"gte=0"`
}

// RequestInfo locates the GeoIP database.  Empty disables geo lookup.
type RequestInfo struct {
	GeoIPPath string `koanf:"geoip_path"`
}

//
// Logging section
//

// Log selects level and optional rotating file.
type Log struct {
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
	File  string `koanf:"file"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime.
type Paths struct {
	Root string // CARDFORGE_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load.
type Config struct {
	HTTP        HTTP        `koanf:"http"`
	Database    Database    `koanf:"database"`
	Cache       Cache       `koanf:"cache"`
	Captcha     Captcha     `koanf:"captcha"`
	Storage     Storage     `koanf:"storage"`
	Notify      Notify      `koanf:"notify"`
	Auth        Auth        `koanf:"auth"`
	RequestInfo RequestInfo `koanf:"requestinfo"`
	Log         Log         `koanf:"log"`
	Paths       Paths       `koanf:"-"`
}
