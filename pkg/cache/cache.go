// Package cache stores rendered selectbox output between runs.
//
// Three backends implement [Cache]:
//
//   - [FileCache] for the CLI, one JSON file per entry under a directory
//   - [RedisCache] for the HTTP server, shared between instances
//   - [NullCache] when caching is disabled
//
// Keys are produced by a [Keyer] so that callers never build key strings by
// hand. A key covers everything that changes the output: the input rows,
// depth bound, indent, output format and translation settings.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and true, or nil and false on a miss.
	// Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by backends that can drop every entry they hold.
type Clearer interface {
	// Clear removes all entries and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}

// Key kinds. Every key a [DefaultKeyer] produces starts with one of these,
// followed by a colon.
const (
	KindRows   = "rows"
	KindResult = "result"
)

// Keyer derives cache keys.
type Keyer interface {
	// RowsKey names the raw rows loaded from a source.
	RowsKey(source string) string

	// ResultKey names the rendered output for rows with the given hash.
	ResultKey(rowsHash string, opts ResultKeyOpts) string
}

// ResultKeyOpts holds the options that change rendered output.
type ResultKeyOpts struct {
	MaxDepth int    `json:"max_depth"`
	Indent   string `json:"indent"`
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
	// Normalizer identifies the name hook, e.g. "T:de:<catalog hash>".
	Normalizer string `json:"normalizer,omitempty"`
}

// Default entry lifetimes.
const (
	// TTLRows bounds how stale rows from a database may get.
	TTLRows = 10 * time.Minute
	// TTLResult applies to rendered output, which depends only on its key.
	TTLResult = 7 * 24 * time.Hour
)

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// RowsKey returns "rows:<hash of source>".
func (DefaultKeyer) RowsKey(source string) string {
	return hashKey(KindRows, source)
}

// ResultKey returns "result:<hash of rowsHash and opts>".
func (DefaultKeyer) ResultKey(rowsHash string, opts ResultKeyOpts) string {
	return hashKey(KindResult, rowsHash, opts)
}
