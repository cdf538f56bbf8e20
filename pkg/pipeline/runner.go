package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/selecttree/pkg/cache"
	"github.com/matzehuels/selecttree/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// ResultTTL overrides cache.TTLResult when positive.
	ResultTTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs load → process → render with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	loadStart := time.Now()
	rows, rowsHit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	loadTime := time.Since(loadStart)

	rowsHash, err := cache.HashValue(rows)
	if err != nil {
		return nil, fmt.Errorf("hash rows: %w", err)
	}

	r.Logger.Debug("loaded rows",
		"rows", len(rows),
		"cached", rowsHit,
		"duration", loadTime)

	var resultKey string
	if opts.Cacheable() {
		resultKey = r.Keyer.ResultKey(rowsHash, opts.ResultKeyOpts())
		if !opts.Refresh {
			if res, ok := r.cachedResult(ctx, resultKey); ok {
				res.Stats.Rows = len(rows)
				res.Stats.LoadTime = loadTime
				res.CacheInfo = CacheInfo{RowsHit: rowsHit, ResultHit: true}
				r.Logger.Info("served from cache", "lines", len(res.Lines), "format", opts.Format)
				return res, nil
			}
		}
	}

	result := &Result{RowsHash: rowsHash}
	result.Stats.Rows = len(rows)
	result.Stats.LoadTime = loadTime
	result.CacheInfo.RowsHit = rowsHit

	processStart := time.Now()
	processed, err := r.Process(ctx, rows, opts)
	if err != nil {
		return nil, fmt.Errorf("process: %w", err)
	}
	result.Lines = processed.Lines
	result.Entries = processed.Entries
	result.Truncated = processed.Truncated
	result.Stats.Lines = len(processed.Lines)
	result.Stats.ProcessTime = time.Since(processStart)

	r.Logger.Info("built selectbox",
		"rows", len(rows),
		"lines", len(processed.Lines),
		"truncated", processed.Truncated,
		"duration", result.Stats.ProcessTime)

	renderStart := time.Now()
	output, err := r.Render(ctx, processed, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Output = output
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Debug("rendered output",
		"format", opts.Format,
		"bytes", len(output),
		"duration", result.Stats.RenderTime)

	if resultKey != "" {
		r.storeResult(ctx, resultKey, result)
	}
	return result, nil
}

func (r *Runner) cachedResult(ctx context.Context, key string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, cache.KindResult)
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		observability.Cache().OnCacheMiss(ctx, cache.KindResult)
		return nil, false
	}
	res.Stats.Lines = len(res.Lines)
	observability.Cache().OnCacheHit(ctx, cache.KindResult)
	return &res, true
}

func (r *Runner) storeResult(ctx context.Context, key string, res *Result) {
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	ttl := cache.TTLResult
	if r.ResultTTL > 0 {
		ttl = r.ResultTTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cache.KindResult, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
