package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/selecttree/pkg/errors"
	"github.com/matzehuels/selecttree/pkg/pipeline"
	"github.com/matzehuels/selecttree/pkg/render"
	"github.com/matzehuels/selecttree/pkg/source"
)

// outputOpts holds the flags shared by every command that builds a selectbox.
type outputOpts struct {
	output    string // output file; stdout when empty
	format    string // text, json, dot or svg; inferred from output when empty
	maxDepth  int    // depth bound; config value when zero
	indent    string // indent unit; config value when empty
	detailed  bool   // label DOT/SVG nodes with their ids
	noCache   bool   // bypass the cache entirely
	refresh   bool   // recompute and overwrite cached results
	translate bool   // resolve marker-prefixed names through the i18n catalog
}

// register binds the shared flags to cmd.
func (o *outputOpts) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", "", "output file (default stdout)")
	f.StringVarP(&o.format, "format", "f", "", "output format: text (default), json, dot, svg")
	f.IntVarP(&o.maxDepth, "max-depth", "d", 0, "deepest level to emit (1-1000, default from config or 32)")
	f.StringVar(&o.indent, "indent", "", "indent unit repeated once per level")
	f.BoolVar(&o.detailed, "detailed", false, "show ids in dot/svg output")
	f.BoolVar(&o.noCache, "no-cache", false, "disable caching")
	f.BoolVar(&o.refresh, "refresh", false, "ignore cached results")
	f.BoolVarP(&o.translate, "translate", "t", false, "translate marker-prefixed names using the configured catalog")
}

// resolveFormat returns the explicit format, or one inferred from the output
// file extension, or text.
func (o *outputOpts) resolveFormat() (string, error) {
	format := o.format
	if format == "" {
		format = formatFromPath(o.output)
	}
	if err := render.ValidateFormat(format); err != nil {
		return "", err
	}
	return format, nil
}

// formatFromPath maps .json, .dot, .gv and .svg to their formats and
// everything else to text.
func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return render.FormatJSON
	case ".dot", ".gv":
		return render.FormatDOT
	case ".svg":
		return render.FormatSVG
	default:
		return pipeline.DefaultFormat
	}
}

// pipelineOptions merges flags over the loaded configuration.
func (c *CLI) pipelineOptions(o *outputOpts) (pipeline.Options, error) {
	format, err := o.resolveFormat()
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.Options{
		MaxDepth: c.cfg.MaxDepth,
		Indent:   c.cfg.Indent,
		Format:   format,
		Detailed: o.detailed,
		Refresh:  o.refresh,
		Logger:   c.Logger,
	}
	if o.maxDepth != 0 {
		opts.MaxDepth = o.maxDepth
	}
	if o.indent != "" {
		opts.Indent = o.indent
	}
	if o.translate {
		tr, key, err := c.cfg.I18n.Translator()
		if err != nil {
			return pipeline.Options{}, err
		}
		if tr == nil {
			return pipeline.Options{}, errs.New(errs.ErrCodeInvalidConfig, "--translate needs [i18n] catalog in the config file")
		}
		opts.Normalizer = tr
		opts.NormalizerKey = key
	}
	return opts, nil
}

// build runs the pipeline for src. A spinner is shown while remote sources
// load unless debug logging is on.
func (c *CLI) build(ctx context.Context, src source.Source, o *outputOpts) (*pipeline.Result, error) {
	opts, err := c.pipelineOptions(o)
	if err != nil {
		return nil, err
	}
	opts.Source = src

	runner, err := c.newRunner(ctx, o.noCache)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	var spin *Spinner
	if _, local := src.(*source.File); !local && c.Logger.GetLevel() > LogDebug {
		spin = newSpinner(ctx, "Loading "+src.Name())
		spin.Start()
	}
	res, err := runner.Execute(ctx, opts)
	if spin != nil {
		if err != nil {
			spin.StopWithError("Failed to load " + src.Name())
		} else {
			spin.StopWithSuccess(fmt.Sprintf("Loaded %d rows from %s", res.Stats.Rows, src.Name()))
		}
	}
	return res, err
}

// runSource builds the selectbox for src and writes it to the output.
func (c *CLI) runSource(ctx context.Context, src source.Source, o *outputOpts) error {
	logger := sourceLogger(ctx, src)
	sw := startStopwatch(logger)
	res, err := c.build(ctx, src, o)
	if err != nil {
		return err
	}
	logger.Debug("processed", "rows", res.Stats.Rows, "lines", res.Stats.Lines,
		"rows_cached", res.CacheInfo.RowsHit, "result_cached", res.CacheInfo.ResultHit)
	if err := c.writeResult(res, o.output); err != nil {
		return err
	}
	dest := o.output
	if dest == "" {
		dest = "stdout"
	}
	sw.done("wrote selectbox", "options", len(res.Lines), "to", dest)
	return nil
}

func (c *CLI) writeResult(res *pipeline.Result, path string) error {
	if err := writeOutput(path, res.Output); err != nil {
		return err
	}

	if res.Truncated {
		printWarning("Some records lie below the depth bound and were left out")
	}
	if path != "" {
		printSuccess("Generated selectbox")
		printFile(path)
		printStats(res.Stats.Rows, res.Stats.Lines, res.CacheInfo.ResultHit, res.Truncated)
	}
	return nil
}

// writeOutput writes data to the output path or stdout.
func writeOutput(path string, data []byte) error {
	w, err := openOutput(path)
	if err != nil {
		return err
	}
	return writeAndClose(w, data)
}

// writeAndClose writes data and closes w. A failed Close is reported, since
// for files it is where buffered data gets flushed.
func writeAndClose(w io.WriteCloser, data []byte) error {
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
