package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/selecttree/pkg/cache"
	"github.com/matzehuels/selecttree/pkg/observability"
	"github.com/matzehuels/selecttree/pkg/source"
)

// inlineSource names inline items in hooks and logs.
const inlineSource = "inline"

// LoadWithCacheInfo returns the rows for opts and whether they came from
// the cache. Inline items are returned as-is. Source rows are cached under
// the source name plus its version when the source is [source.Versioned].
// Transient load failures are retried with backoff.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) ([]any, bool, error) {
	hooks := observability.Pipeline()
	if opts.Items != nil {
		hooks.OnLoadStart(ctx, inlineSource)
		hooks.OnLoadComplete(ctx, inlineSource, len(opts.Items), 0, nil)
		return opts.Items, false, nil
	}

	src := opts.Source
	key, err := r.rowsKey(ctx, src)
	if err != nil {
		return nil, false, err
	}

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if rows, err := decodeRows(data); err == nil {
				observability.Cache().OnCacheHit(ctx, cache.KindRows)
				return rows, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, cache.KindRows)
	}

	hooks.OnLoadStart(ctx, src.Name())
	start := time.Now()
	var rows []any
	retry := cache.DefaultRetry
	retry.OnRetry = func(attempt int, err error) {
		r.Logger.Warn("load failed, retrying", "source", src.Name(), "attempt", attempt, "err", err)
	}
	err = retry.Do(ctx, func() error {
		var loadErr error
		rows, loadErr = src.Load(ctx)
		return loadErr
	})
	hooks.OnLoadComplete(ctx, src.Name(), len(rows), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(rows); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLRows); err == nil {
			observability.Cache().OnCacheSet(ctx, cache.KindRows, len(data))
		}
	}
	return rows, false, nil
}

// Load is a convenience wrapper that discards the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) ([]any, error) {
	rows, _, err := r.LoadWithCacheInfo(ctx, opts)
	return rows, err
}

func (r *Runner) rowsKey(ctx context.Context, src source.Source) (string, error) {
	name := src.Name()
	if v, ok := src.(source.Versioned); ok {
		version, err := v.Version(ctx)
		if err != nil {
			return "", err
		}
		name += "@" + version
	}
	return r.Keyer.RowsKey(name), nil
}

// decodeRows reverses json.Marshal of loaded rows. Numbers stay json.Number
// so integer ids keep their kind.
func decodeRows(data []byte) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var rows []any
	if err := dec.Decode(&rows); err != nil {
		return nil, err
	}
	return rows, nil
}
