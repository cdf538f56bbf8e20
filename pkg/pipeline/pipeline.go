// Package pipeline runs the selectbox pipeline shared by the CLI and the
// HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: fetch raw rows from a [source.Source] or take inline items
//  2. Process: normalize, linearize and indent with a [tree.Tree]
//  3. Render: encode the result as text, JSON, DOT or SVG
//
// Loaded rows and rendered output are cached separately, so a database is
// queried at most once per [cache.TTLRows] and identical rows rendered with
// identical options are served from the cache.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:   source.NewFile("shop.json"),
//	    MaxDepth: 8,
//	    Format:   render.FormatJSON,
//	})
//	os.Stdout.Write(result.Output)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/selecttree/pkg/cache"
	errs "github.com/matzehuels/selecttree/pkg/errors"
	"github.com/matzehuels/selecttree/pkg/render"
	"github.com/matzehuels/selecttree/pkg/source"
	"github.com/matzehuels/selecttree/pkg/tree"
)

// DefaultFormat is used when Options.Format is empty.
const DefaultFormat = render.FormatText

// Options contains all configuration for one pipeline run.
// The serializable fields double as the HTTP request body.
type Options struct {
	// Items are inline rows. They take precedence over Source.
	Items []any `json:"items,omitempty"`

	MaxDepth int `json:"max_depth,omitempty"`
	// Indent defaults to tree.DefaultIndent when empty.
	Indent string `json:"indent,omitempty"`
	Format string `json:"format,omitempty"`
	// Detailed adds ids and levels to diagram labels.
	Detailed bool `json:"detailed,omitempty"`
	Refresh  bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Source     source.Source      `json:"-"`
	Normalizer tree.NameTransform `json:"-"`
	// NormalizerKey identifies Normalizer in cache keys. Results produced
	// with a Normalizer but no key are not cached.
	NormalizerKey string             `json:"-"`
	Formatter     tree.NameTransform `json:"-"`
	Logger        *log.Logger        `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Items == nil && o.Source == nil {
		return errs.New(errs.ErrCodeInvalidInput, "a source or inline items are required")
	}
	if err := o.SetDefaults(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetDefaults applies defaults and validates the process and render
// options. It does not require a source, so stages can run on their own.
func (o *Options) SetDefaults() error {
	if o.MaxDepth == 0 {
		o.MaxDepth = tree.DefaultMaxDepth
	}
	if err := errs.ValidateMaxDepth(o.MaxDepth); err != nil {
		return err
	}
	o.MaxDepth = max(o.MaxDepth, errs.MinMaxDepth)
	if o.Indent == "" {
		o.Indent = tree.DefaultIndent
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if err := render.ValidateFormat(o.Format); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// Cacheable reports whether the rendered result may be stored. Formatters
// are arbitrary code and cannot be keyed.
func (o *Options) Cacheable() bool {
	if o.Formatter != nil {
		return false
	}
	return o.Normalizer == nil || o.NormalizerKey != ""
}

// ResultKeyOpts returns the cache key options for the rendered result.
func (o *Options) ResultKeyOpts() cache.ResultKeyOpts {
	return cache.ResultKeyOpts{
		MaxDepth:   o.MaxDepth,
		Indent:     o.Indent,
		Format:     o.Format,
		Detailed:   o.Detailed,
		Normalizer: o.NormalizerKey,
	}
}

// Tree builds the tree.Tree configured by o.
func (o *Options) Tree() *tree.Tree {
	return tree.New(
		tree.WithMaxDepth(o.MaxDepth),
		tree.WithIndent(o.Indent),
		tree.WithNormalizer(o.Normalizer),
		tree.WithFormatter(o.Formatter),
	)
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Lines are the rendered options in display order.
	Lines tree.Lines `json:"lines"`

	// Entries are the linearized records behind Lines.
	Entries []tree.Entry `json:"entries"`

	// Truncated is set when the depth bound dropped records.
	Truncated bool `json:"truncated"`

	// Output is the document in the requested format.
	Output []byte `json:"output"`

	// RowsHash is the content hash of the loaded rows.
	RowsHash string `json:"rows_hash"`

	Stats     Stats     `json:"-"`
	CacheInfo CacheInfo `json:"-"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Rows        int
	Lines       int
	LoadTime    time.Duration
	ProcessTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	RowsHit   bool // rows came from cache
	ResultHit bool // process and render were skipped
}
