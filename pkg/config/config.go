// Package config loads selecttree settings from a TOML file.
//
// The file is optional. Without one every setting has a usable default, and
// command-line flags override whatever the file says.
//
//	max_depth = 8
//	indent = "-- "
//
//	[i18n]
//	language = "de"
//	catalog = "~/.config/selecttree/messages.toml"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "24h"
//
//	[sql]
//	path = "shop.db"
//	table = "category"
//	where = ["active = 1"]
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/selecttree/pkg/errors"
	"github.com/matzehuels/selecttree/pkg/i18n"
	"github.com/matzehuels/selecttree/pkg/query"
	"github.com/matzehuels/selecttree/pkg/tree"
)

// AppName names the config and cache directories.
const AppName = "selecttree"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// DefaultAddr is the HTTP listen address used when none is configured.
const DefaultAddr = ":8080"

// Config is the decoded configuration file.
type Config struct {
	MaxDepth int    `toml:"max_depth"`
	Indent   string `toml:"indent"`

	I18n   I18nConfig   `toml:"i18n"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
	SQL    SQLConfig    `toml:"sql"`
	Mongo  MongoConfig  `toml:"mongo"`
}

// I18nConfig configures the translation normalizer. It is disabled while
// Catalog is empty.
type I18nConfig struct {
	Marker   string `toml:"marker"`
	Language string `toml:"language"`
	Catalog  string `toml:"catalog"`
}

// Enabled reports whether a catalog is configured.
func (c I18nConfig) Enabled() bool { return c.Catalog != "" }

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend  string        `toml:"backend"`
	Dir      string        `toml:"dir"`
	RedisURL string        `toml:"redis_url"`
	Prefix   string        `toml:"prefix"`
	TTL      time.Duration `toml:"ttl"`
}

// ServerConfig configures `selecttree serve`.
type ServerConfig struct {
	Addr         string        `toml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
	MaxBodyBytes int64         `toml:"max_body_bytes"`
}

// SQLConfig holds defaults for the sql command and the SQL query endpoint.
type SQLConfig struct {
	Path         string   `toml:"path"`
	Table        string   `toml:"table"`
	IDColumn     string   `toml:"id_column"`
	NameColumn   string   `toml:"name_column"`
	ParentColumn string   `toml:"parent_column"`
	Where        []string `toml:"where"`
	OrderBy      string   `toml:"order_by"`
}

// QueryOptions returns the column settings as query options.
func (c SQLConfig) QueryOptions() query.Options {
	return query.Options{
		IDColumn:     c.IDColumn,
		NameColumn:   c.NameColumn,
		ParentColumn: c.ParentColumn,
		Wheres:       c.Where,
		OrderBy:      c.OrderBy,
	}
}

// MongoConfig holds defaults for the mongo command.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Default returns a configuration with every default applied.
func Default() Config {
	var c Config
	c.SetDefaults()
	return c
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.MaxDepth == 0 {
		c.MaxDepth = tree.DefaultMaxDepth
	}
	if c.Indent == "" {
		c.Indent = tree.DefaultIndent
	}
	if c.I18n.Marker == "" {
		c.I18n.Marker = i18n.DefaultMarker
	}
	if c.I18n.Language == "" {
		c.I18n.Language = "en"
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = BackendFile
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 24 * time.Hour
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = 8 << 20
	}
}

// Validate reports the first invalid setting as INVALID_CONFIG.
func (c *Config) Validate() error {
	if err := errs.ValidateMaxDepth(c.MaxDepth); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "max_depth")
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if err := errs.ValidateURL(c.Cache.RedisURL, "redis", "rediss", "unix"); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "cache.redis_url")
		}
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "cache.backend must be one of %s, %s, %s; got %q",
			BackendFile, BackendRedis, BackendNone, c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "cache.ttl cannot be negative")
	}
	if c.Server.MaxBodyBytes < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "server.max_body_bytes cannot be negative")
	}
	if c.SQL.Table != "" {
		if err := errs.ValidateIdentifier(c.SQL.Table); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "sql.table")
		}
	}
	if c.Mongo.URI != "" {
		if err := errs.ValidateURL(c.Mongo.URI, "mongodb", "mongodb+srv"); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "mongo.uri")
		}
	}
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/selecttree/config.toml, falling back
// to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// DefaultCacheDir returns $XDG_CACHE_HOME/selecttree, falling back to
// ~/.cache/selecttree.
func DefaultCacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// Load reads the config file at path. An empty path means [DefaultPath],
// which may be absent; an explicitly named file must exist.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			return Default(), nil
		}
	}

	f, err := os.Open(expandHome(path))
	if errors.Is(err, os.ErrNotExist) {
		if explicit {
			return Config{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes, defaults and validates a TOML config. Unknown keys are
// rejected so typos do not pass silently.
func Parse(r io.Reader) (Config, error) {
	var c Config
	md, err := toml.NewDecoder(r).Decode(&c)
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errs.New(errs.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	c.SetDefaults()
	c.I18n.Catalog = expandHome(c.I18n.Catalog)
	c.Cache.Dir = expandHome(c.Cache.Dir)
	c.SQL.Path = expandHome(c.SQL.Path)
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}
