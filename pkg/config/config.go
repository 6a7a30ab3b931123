// Package config loads the grapes TOML configuration.
//
// A configuration file looks like:
//
//	[server]
//	addr = ":8074"
//
//	[database]
//	driver = "mongo"
//	uri = "mongodb://localhost:27017"
//	name = "grapes"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//
//	[maven]
//	repository = "https://repo1.maven.org/maven2"
//
//	[community]
//	issue_tracker = "https://github.com/matzehuels/grapes/issues"
//	online_help = "https://github.com/matzehuels/grapes#readme"
//
// Missing keys keep their [Default] values. The file is looked up at the
// path in GRAPES_CONFIG, then at $XDG_CONFIG_HOME/grapes/grapes.toml.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/grapes/pkg/cache"
	grapeserrors "github.com/matzehuels/grapes/pkg/errors"
	"github.com/matzehuels/grapes/pkg/integrations/maven"
)

// EnvPath names the environment variable overriding the config location.
const EnvPath = "GRAPES_CONFIG"

// Database drivers.
const (
	DriverMemory = "memory"
	DriverMongo  = "mongo"
)

// Config is the complete grapes configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Cache     CacheConfig     `toml:"cache"`
	Maven     MavenConfig     `toml:"maven"`
	Community CommunityConfig `toml:"community"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DatabaseConfig selects the catalog store. The memory driver loads
// Snapshot at startup (when set) and writes it back on shutdown.
type DatabaseConfig struct {
	Driver   string `toml:"driver"`
	URI      string `toml:"uri"`
	Name     string `toml:"name"`
	Snapshot string `toml:"snapshot"`
}

// CacheConfig configures the cache for remote repository lookups.
type CacheConfig struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	TTL       Duration `toml:"ttl"`
}

// MavenConfig points at the Maven repository used for imports and remote
// version lookups.
type MavenConfig struct {
	Repository string `toml:"repository"`
}

// CommunityConfig holds the links served by the about endpoint.
type CommunityConfig struct {
	IssueTracker string `toml:"issue_tracker" json:"issueTracker,omitempty"`
	OnlineHelp   string `toml:"online_help" json:"onlineHelp,omitempty"`
}

// Duration is a time.Duration written as a string ("24h") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Addr: ":8074"},
		Database: DatabaseConfig{Driver: DriverMemory, Name: "grapes"},
		Cache: CacheConfig{
			Backend: cache.BackendFile,
			TTL:     Duration{24 * time.Hour},
		},
		Maven: MavenConfig{Repository: maven.DefaultRepository},
	}
}

// Path returns the configuration file location: GRAPES_CONFIG when set,
// else grapes.toml under the user config directory.
func Path() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "grapes", "grapes.toml"), nil
}

// Load reads the configuration at path. An empty path means [Path]; a
// missing file at the default location yields [Default]. The result is
// validated.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return Default(), nil
		}
		path = p
		explicit = os.Getenv(EnvPath) != ""
	}

	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return nil, grapeserrors.Wrap(grapeserrors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, grapeserrors.New(grapeserrors.ErrCodeInvalidConfig,
			"unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a configuration from TOML source on top of [Default].
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, grapeserrors.Wrap(grapeserrors.ErrCodeInvalidConfig, err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for contradictions.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return invalid("server.addr must not be empty")
	}

	switch c.Database.Driver {
	case DriverMemory:
	case DriverMongo:
		if c.Database.URI == "" {
			return invalid("database.uri is required for the mongo driver")
		}
		if c.Database.Name == "" {
			return invalid("database.name is required for the mongo driver")
		}
	default:
		return invalid("database.driver must be %q or %q, got %q", DriverMemory, DriverMongo, c.Database.Driver)
	}

	switch c.Cache.Backend {
	case "", cache.BackendNone, cache.BackendFile, cache.BackendRedis:
	default:
		return invalid("cache.backend must be file, redis or none, got %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return invalid("cache.ttl must not be negative")
	}

	if err := grapeserrors.ValidateURL(c.Maven.Repository); err != nil {
		return grapeserrors.Wrap(grapeserrors.ErrCodeInvalidConfig, err, "maven.repository")
	}
	return nil
}

// CacheOptions converts the cache section for [cache.New].
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{Backend: c.Cache.Backend, Dir: c.Cache.Dir, RedisAddr: c.Cache.RedisAddr}
}

// Encode writes the configuration as TOML.
func (c *Config) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return grapeserrors.New(grapeserrors.ErrCodeInvalidConfig, format, args...)
}
