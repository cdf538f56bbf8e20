package tree

import (
	errs "github.com/matzehuels/selecttree/pkg/errors"
)

// Tree converts input items into rendered selectbox lines.
//
// The zero value is not usable; create instances with [New]. A Tree carries
// only configuration, so one instance may serve concurrent Process calls as
// long as it is not reconfigured at the same time.
type Tree struct {
	maxDepth   int
	indent     string
	normalizer NameTransform
	formatter  NameTransform
}

// Option configures a [Tree].
type Option func(*Tree)

// WithMaxDepth sets the depth bound. Values below 1 become 1; values above
// the ceiling are kept and make Process fail with INVALID_INPUT.
func WithMaxDepth(depth int) Option {
	return func(t *Tree) { t.maxDepth = max(depth, errs.MinMaxDepth) }
}

// WithIndent sets the string repeated once per level.
func WithIndent(indent string) Option {
	return func(t *Tree) { t.indent = indent }
}

// WithFormatter sets the hook applied last to every name.
func WithFormatter(f NameTransform) Option {
	return func(t *Tree) { t.formatter = f }
}

// WithNormalizer sets the hook applied to every name before the formatter.
func WithNormalizer(n NameTransform) Option {
	return func(t *Tree) { t.normalizer = n }
}

// New creates a Tree with [DefaultMaxDepth] and [DefaultIndent].
func New(opts ...Option) *Tree {
	t := &Tree{
		maxDepth: DefaultMaxDepth,
		indent:   DefaultIndent,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetMaxDepth changes the depth bound. Values below 1 are clamped to 1,
// values above 1000 are rejected with INVALID_INPUT and leave the Tree unchanged.
func (t *Tree) SetMaxDepth(depth int) error {
	if err := errs.ValidateMaxDepth(depth); err != nil {
		return err
	}
	t.maxDepth = max(depth, errs.MinMaxDepth)
	return nil
}

// MaxDepth returns the configured depth bound.
func (t *Tree) MaxDepth() int { return t.maxDepth }

// Indent returns the configured indent unit.
func (t *Tree) Indent() string { return t.indent }

// Result is the detailed outcome of [Tree.ProcessResult].
type Result struct {
	Lines     Lines
	Entries   []Entry
	Truncated bool
}

// Process normalizes, linearizes and renders items. On error no partial
// result is returned.
func (t *Tree) Process(items []any) (Lines, error) {
	res, err := t.ProcessResult(items)
	if err != nil {
		return nil, err
	}
	return res.Lines, nil
}

// ProcessResult is like [Tree.Process] but also returns the linearized
// entries and whether the depth bound cut anything off.
func (t *Tree) ProcessResult(items []any) (*Result, error) {
	records, err := Normalize(items, NormalizeOptions{
		Normalizer: t.normalizer,
		Formatter:  t.formatter,
	})
	if err != nil {
		return nil, err
	}
	lin, err := LinearizeResult(records, t.maxDepth)
	if err != nil {
		return nil, err
	}
	return &Result{
		Lines:     Render(lin.Entries, t.indent),
		Entries:   lin.Entries,
		Truncated: lin.Truncated,
	}, nil
}
