package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/selecttree/pkg/observability"
	"github.com/matzehuels/selecttree/pkg/tree"
)

// Process normalizes, linearizes and indents rows with the tree configured
// by opts. It never touches the cache.
func (r *Runner) Process(ctx context.Context, rows []any, opts Options) (*tree.Result, error) {
	if err := opts.SetDefaults(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnProcessStart(ctx, len(rows))
	start := time.Now()

	res, err := opts.Tree().ProcessResult(rows)

	lines, truncated := 0, false
	if res != nil {
		lines, truncated = len(res.Lines), res.Truncated
	}
	hooks.OnProcessComplete(ctx, lines, truncated, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if truncated {
		r.Logger.Warn("depth bound dropped records", "max_depth", opts.MaxDepth)
	}
	return res, nil
}
