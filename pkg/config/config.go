// Package config loads ocifkit settings from a TOML file.
//
// A config file is optional. Lookup order is an explicit path (the --config
// flag), then $OCIFKIT_CONFIG, then ocifkit/config.toml under the user
// config directory. Missing keys keep their defaults; unknown keys are
// rejected so typos do not go unnoticed.
//
//	[layout]
//	connector = "curved"
//	grid_spacing = 80
//
//	[render]
//	formats = ["svg", "tldraw"]
//	png_scale = 3
//
//	[cache]
//	backend = "redis"
//	scope = "staging"
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
//	max_body_bytes = 1048576
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ocifkit/ocifkit/pkg/cache"
	"github.com/ocifkit/ocifkit/pkg/diagram"
	ocerrors "github.com/ocifkit/ocifkit/pkg/errors"
	ocio "github.com/ocifkit/ocifkit/pkg/io"
	"github.com/ocifkit/ocifkit/pkg/pipeline"
)

const (
	appName = "ocifkit"

	// EnvConfig names the environment variable holding a config path.
	EnvConfig = "OCIFKIT_CONFIG"

	// DefaultAddr is the HTTP listen address.
	DefaultAddr = ":8080"

	// DefaultShutdownTimeout bounds graceful server shutdown.
	DefaultShutdownTimeout = 10 * time.Second
)

// Config is the full configuration.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Render RenderConfig `toml:"render"`
	Cache  cache.Config `toml:"cache"`
	Server ServerConfig `toml:"server"`

	// Path is the file the config was loaded from, empty for defaults.
	Path string `toml:"-"`
}

// LayoutConfig holds diagram layout settings.
type LayoutConfig struct {
	GridPadding float64 `toml:"grid_padding"`
	GridSpacing float64 `toml:"grid_spacing"`
	Connector   string  `toml:"connector"`
}

// RenderConfig holds export settings.
type RenderConfig struct {
	Formats  []string `toml:"formats"`
	PNGScale float64  `toml:"png_scale"`
	Engine   string   `toml:"engine"`
	Pinned   bool     `toml:"pinned"`
	Labels   bool     `toml:"labels"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr            string        `toml:"addr"`
	MaxBodyBytes    int64         `toml:"max_body_bytes"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	dir, err := CacheDir()
	backend := cache.BackendFile
	if err != nil {
		backend = cache.BackendNone
	}
	return &Config{
		Layout: LayoutConfig{
			GridPadding: diagram.DefaultGridPadding,
			GridSpacing: diagram.DefaultGridSpacing,
			Connector:   string(diagram.ConnectorStraight),
		},
		Render: RenderConfig{
			Formats:  []string{pipeline.FormatSVG},
			PNGScale: pipeline.DefaultPNGScale,
			Engine:   string(pipeline.DefaultEngine),
		},
		Cache: cache.Config{
			Backend: backend,
			Dir:     dir,
		},
		Server: ServerConfig{
			Addr:            DefaultAddr,
			MaxBodyBytes:    ocio.MaxDocumentSize,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
	}
}

// Load reads the config file found by [Find] for explicit, falling back to
// [Default] when there is none. The result is validated.
func Load(explicit string) (*Config, error) {
	path, ok, err := Find(explicit)
	if err != nil {
		return nil, err
	}
	if !ok {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	return LoadFile(path)
}

// LoadFile reads and validates the config at path on top of the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ocerrors.Wrap(ocerrors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, ocerrors.Wrap(ocerrors.ErrCodeInvalidConfig, err, "%s: failed to parse TOML", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, ocerrors.New(ocerrors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Find resolves the config path. An explicit path must exist; the
// environment variable and the user config file are optional.
func Find(explicit string) (string, bool, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", false, ocerrors.Wrap(ocerrors.ErrCodeFileNotFound, err, "config %s", explicit)
		}
		return explicit, true, nil
	}
	if env := os.Getenv(EnvConfig); env != "" {
		if _, err := os.Stat(env); err != nil {
			return "", false, ocerrors.Wrap(ocerrors.ErrCodeFileNotFound, err, "config %s (from $%s)", env, EnvConfig)
		}
		return env, true, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", false, nil
	}
	candidate := filepath.Join(dir, appName, "config.toml")
	if _, err := os.Stat(candidate); err == nil {
		return candidate, true, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
	}
	return "", false, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return ocerrors.New(ocerrors.ErrCodeInvalidConfig, format, args...)
	}

	if c.Layout.GridPadding < 0 || c.Layout.GridSpacing < 0 {
		return invalid("layout: grid_padding and grid_spacing must not be negative")
	}
	if _, err := diagram.ParseConnector(c.Layout.Connector); err != nil {
		return invalid("layout: %v", err)
	}

	if err := pipeline.ValidateFormats(c.Render.Formats); err != nil {
		return invalid("render: %s", ocerrors.UserMessage(err))
	}
	if c.Render.PNGScale < 0 {
		return invalid("render: png_scale must not be negative")
	}
	if c.Render.Engine != "" {
		if err := pipeline.ValidateEngine(c.Render.Engine); err != nil {
			return invalid("render: %s", ocerrors.UserMessage(err))
		}
	}

	switch c.Cache.Backend {
	case "", cache.BackendNone:
	case cache.BackendFile:
		if c.Cache.Dir == "" {
			return invalid("cache: dir is required for the file backend")
		}
	case cache.BackendRedis:
		if c.Cache.Redis.Addr == "" {
			return invalid("cache: redis.addr is required for the redis backend")
		}
	case cache.BackendMongo:
		if c.Cache.Mongo.URI == "" {
			return invalid("cache: mongo.uri is required for the mongo backend")
		}
	default:
		return invalid("cache: unknown backend %q (must be one of: none, file, redis, mongo)", c.Cache.Backend)
	}

	if c.Server.Addr == "" {
		return invalid("server: addr is required")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return invalid("server: max_body_bytes must be positive")
	}
	if c.Server.ShutdownTimeout < 0 {
		return invalid("server: shutdown_timeout must not be negative")
	}
	return nil
}

// PipelineOptions converts the layout and render sections into pipeline
// options.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Connector:   c.Layout.Connector,
		GridPadding: c.Layout.GridPadding,
		GridSpacing: c.Layout.GridSpacing,
		Formats:     append([]string(nil), c.Render.Formats...),
		Engine:      c.Render.Engine,
		Pinned:      c.Render.Pinned,
		Labels:      c.Render.Labels,
		PNGScale:    c.Render.PNGScale,
	}
}

// CacheDir returns the cache directory using XDG standard (~/.cache/ocifkit/).
func CacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
