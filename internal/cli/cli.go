// Package cli implements the selecttree command-line interface.
//
// The CLI turns flat id/name/parent records into indented selectbox
// options. Records come from files, a SQL table or a MongoDB collection,
// and the result is printed as text, JSON, DOT or SVG.
//
// # Commands
//
//   - render: build a selectbox from a JSON, YAML or TOML file
//   - sql: build a selectbox from a SQLite table
//   - mongo: build a selectbox from a MongoDB collection
//   - pick: choose an option interactively and print its id
//   - serve: run the HTTP API
//   - config: show the effective configuration
//   - cache: manage the result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context. Status lines go to stderr so that stdout
// carries only the rendered output.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/selecttree/pkg/cache"
	"github.com/matzehuels/selecttree/pkg/config"
	errs "github.com/matzehuels/selecttree/pkg/errors"
	"github.com/matzehuels/selecttree/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is bound to --config; cfg is loaded from it before any
	// command runs.
	configPath string
	cfg        config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Config returns the loaded configuration.
func (c *CLI) Config() config.Config {
	return c.cfg
}

// loadConfig reads --config, or the default location when the flag is empty.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

// newRunner creates a pipeline runner backed by the configured cache.
// noCache forces the null cache regardless of configuration.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if c.cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.cfg.Cache.Prefix)
	}
	runner := pipeline.NewRunner(store, keyer, c.Logger)
	runner.ResultTTL = c.cfg.Cache.TTL
	return runner, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			URL:       c.cfg.Cache.RedisURL,
			KeyPrefix: c.cfg.Cache.Prefix,
		})
	case config.BackendFile, "":
		dir, err := c.cacheDir()
		if err != nil {
			c.Logger.Warn("cache disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	default:
		return nil, errs.New(errs.ErrCodeInvalidConfig, "unknown cache backend %q", c.cfg.Cache.Backend)
	}
}

// cacheDir returns the configured cache directory or the XDG default
// (~/.cache/selecttree/).
func (c *CLI) cacheDir() (string, error) {
	if c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir, nil
	}
	return config.DefaultCacheDir()
}
