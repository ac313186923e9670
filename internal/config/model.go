// internal/config/model.go
//
// Typed configuration model for Beacon.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                          – dotenv values,
//   • `conf/global.yaml`                       – primary static file,
//   • `BEACON_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *before* unmarshalling, so the model never
// stores Vault URIs—only plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • Durations are plain integer seconds/minutes so the YAML stays
//     tool-friendly; no custom decode hooks.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr         string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS         bool   `koanf:"force_https"`
	RateLimitPerMinute int    `koanf:"rate_limit_per_minute" validate:"gte=0"` // 0 disables
}

//
// Storage section
//

// Storage selects and parameterizes the visit store backend.
//
// The `file` driver keeps the whole collection in one JSON file under
// `visits_path`; the `mysql` driver appends rows through the pool opened
// from `dsn`.  The DSN's secret portion normally lives in Vault and is
// injected at load time (`vault:` prefix).
type Storage struct {
	Driver     string `koanf:"driver"      validate:"required,oneof=file mysql"`
	VisitsPath string `koanf:"visits_path" validate:"required_if=Driver file"`
	DSN        string `koanf:"dsn"         validate:"required_if=Driver mysql"`
}

//
// Geo section
//

// GeoCache tunes lookup-result caching.  Backend `memory` is an
// in-process LRU; `redis` shares entries across a fleet; `off` disables
// caching entirely.
type GeoCache struct {
	Backend    string `koanf:"backend" validate:"omitempty,oneof=memory redis off"`
	Capacity   int    `koanf:"capacity"    validate:"gte=0"`
	TTLMinutes int    `koanf:"ttl_minutes" validate:"gte=0"`
}

// Geo selects the lookup provider.  `ipapi` queries an ip-api-style
// HTTP endpoint, `mmdb` reads a local MaxMind City database, and `off`
// records visits with null geography.
type Geo struct {
	Provider       string   `koanf:"provider" validate:"required,oneof=ipapi mmdb off"`
	Endpoint       string   `koanf:"endpoint"  validate:"required_if=Provider ipapi"`
	MMDBPath       string   `koanf:"mmdb_path" validate:"required_if=Provider mmdb"`
	TimeoutSeconds int      `koanf:"timeout_seconds" validate:"gte=0"`
	Cache          GeoCache `koanf:"cache"`
}

//
// Tracking section
//

// Tracking holds the fallback response targets.  `default_target_url`
// answers /t/{token} when the `next` parameter is missing or rejected;
// `placeholder_image_url` plays the same role for /img/{token}'s `src`.
type Tracking struct {
	DefaultTargetURL    string `koanf:"default_target_url"    validate:"required,url"`
	PlaceholderImageURL string `koanf:"placeholder_image_url" validate:"required,url"`
}

//
// Redis section
//

// Redis is only consulted when geo.cache.backend is `redis`.
type Redis struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"` // typically a vault: reference
	DB       int    `koanf:"db" validate:"gte=0"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or BEACON_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string // BEACON_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Storage  Storage  `koanf:"storage"`
	Geo      Geo      `koanf:"geo"`
	Tracking Tracking `koanf:"tracking"`
	Redis    Redis    `koanf:"redis"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}
