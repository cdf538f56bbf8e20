package cache

// ScopedKeyer prefixes every key of an inner Keyer, so that several
// deployments can share one Redis without seeing each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "selecttree:prod:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// A nil inner keyer falls back to [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// RowsKey returns the prefixed rows key.
func (k *ScopedKeyer) RowsKey(source string) string {
	return k.prefix + k.inner.RowsKey(source)
}

// ResultKey returns the prefixed result key.
func (k *ScopedKeyer) ResultKey(rowsHash string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(rowsHash, opts)
}
