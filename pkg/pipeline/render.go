package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/selecttree/pkg/observability"
	"github.com/matzehuels/selecttree/pkg/render"
	"github.com/matzehuels/selecttree/pkg/render/dot"
	"github.com/matzehuels/selecttree/pkg/tree"
)

// Render encodes a processed result in opts.Format.
func (r *Runner) Render(ctx context.Context, res *tree.Result, opts Options) ([]byte, error) {
	if err := opts.SetDefaults(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Format)
	start := time.Now()

	out, err := renderFormat(ctx, res, opts)

	hooks.OnRenderComplete(ctx, opts.Format, len(out), time.Since(start), err)
	return out, err
}

func renderFormat(ctx context.Context, res *tree.Result, opts Options) ([]byte, error) {
	if !render.IsDiagram(opts.Format) {
		return render.Lines(res.Lines, opts.Format)
	}
	src := dot.ToDOT(res.Entries, dot.Options{Detailed: opts.Detailed})
	if opts.Format == render.FormatDOT {
		return []byte(src), nil
	}
	return dot.RenderSVG(ctx, src)
}
