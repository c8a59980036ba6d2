// internal/config/model.go
//
// Typed configuration model.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                          – dotenv values,
//   • `conf/global.yaml`                       – primary static file,
//   • `SQLTAG_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client after unmarshalling, so the rest of the app only
// ever sees plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.

package config

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
}

//
// Database section
//

// Database holds the DSN.  The DSN may embed a `vault:` password reference;
// the loader resolves it before anything dials the database.
type Database struct {
	DSN string `koanf:"dsn" validate:"required"`
}

//
// QueryTags section
//

// QueryTags configures the comment engine: which components render, in what
// order, and how the composed comment behaves.
type QueryTags struct {
	Enabled     bool     `koanf:"enabled"`
	Application string   `koanf:"application" validate:"required_with=Enabled"`
	Components  []string `koanf:"components"`
	Prepend     bool     `koanf:"prepend"`
	Cache       bool     `koanf:"cache"`
	TagActions  bool     `koanf:"tag_actions"` // record controller + action per request
	TagJobs     bool     `koanf:"tag_jobs"`    // record job class per run
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or SQLTAG_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string // SQLTAG_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP      HTTP      `koanf:"http"`
	Database  Database  `koanf:"database"`
	QueryTags QueryTags `koanf:"query_tags"`
	Paths     Paths     `koanf:"-"` // not loaded from config files
}
