// Package cache stores validation results, layouts and rendered artifacts
// so repeated requests for the same document skip recomputation.
//
// # Backends
//
//   - [NullCache]: stores nothing (caching disabled)
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [RedisCache]: shared cache for multi-instance servers
//   - [MongoCache]: shared cache with server-side TTL expiry
//
// Use [Open] to build the backend named in a [Config].
//
// # Keys
//
// Keys are derived by a [Keyer] from the SHA-256 of the document source and
// the options that affect the cached value, so a change to either misses.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the cached value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Entry lifetimes.
const (
	ValidationTTL = 24 * time.Hour
	LayoutTTL     = 7 * 24 * time.Hour
	ArtifactTTL   = 7 * 24 * time.Hour
)

// Backend names a cache implementation.
type Backend string

const (
	BackendNone  Backend = "none"
	BackendFile  Backend = "file"
	BackendRedis Backend = "redis"
	BackendMongo Backend = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Backend Backend     `toml:"backend" json:"backend"`
	Dir     string      `toml:"dir" json:"dir,omitempty"`
	Scope   string      `toml:"scope" json:"scope,omitempty"` // key namespace, see [Config.Keyer]
	Redis   RedisConfig `toml:"redis" json:"redis"`
	Mongo   MongoConfig `toml:"mongo" json:"mongo"`
}

// Open creates the backend named by cfg.Backend. An empty backend is
// treated as [BackendNone]. Network backends are pinged with retries before
// Open returns.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Backend {
	case "", BackendNone:
		return NewNullCache(), nil
	case BackendFile:
		if cfg.Dir == "" {
			return nil, fmt.Errorf("file cache: directory not set")
		}
		return NewFileCache(cfg.Dir)
	case BackendRedis:
		return NewRedisCache(ctx, cfg.Redis)
	case BackendMongo:
		return NewMongoCache(ctx, cfg.Mongo)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Keyer returns the keyer for cfg, scoped when cfg.Scope is set.
func (cfg Config) Keyer() Keyer {
	if cfg.Scope == "" {
		return NewDefaultKeyer()
	}
	return NewScopedKeyer(NewDefaultKeyer(), cfg.Scope+":")
}

// Keyer derives cache keys.
type Keyer interface {
	// ValidationKey returns the key for the validation result of a document.
	ValidationKey(docHash string) string
	// LayoutKey returns the key for the layout of a document.
	LayoutKey(docHash string, opts LayoutKeyOpts) string
	// ArtifactKey returns the key for a rendered artifact of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the layout options that change the computed diagram.
type LayoutKeyOpts struct {
	Connector   string  `json:"connector"`
	GridPadding float64 `json:"grid_padding"`
	GridSpacing float64 `json:"grid_spacing"`
}

// ArtifactKeyOpts are the render options that change the output bytes.
type ArtifactKeyOpts struct {
	Format    string  `json:"format"`
	Engine    string  `json:"engine,omitempty"`
	Scale     float64 `json:"scale,omitempty"`
	Pinned    bool    `json:"pinned,omitempty"`
	Labels    bool    `json:"labels,omitempty"`
	Timestamp int64   `json:"timestamp,omitempty"`
}

// DefaultKeyer produces unscoped keys of the form "kind:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) ValidationKey(docHash string) string {
	return "validation:" + docHash
}

func (DefaultKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", docHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
