// Package query builds the SELECT statement that fetches selectbox rows from
// an adjacency-list table.
//
// Identifiers are inserted verbatim between backticks and WHERE clauses are
// inserted as-is. Escaping is the caller's responsibility; see
// [errors.ValidateIdentifier] for entry points that accept untrusted names.
package query

import (
	"strings"

	errs "github.com/matzehuels/selecttree/pkg/errors"
)

// Default column names.
const (
	DefaultIDColumn     = "id"
	DefaultNameColumn   = "name"
	DefaultParentColumn = "parent_id"
)

// Options configures [Build]. Zero values fall back to the defaults.
type Options struct {
	IDColumn     string
	NameColumn   string
	ParentColumn string
	// Wheres are ANDed together, each wrapped in parentheses.
	Wheres []string
	// OrderBy defaults to NameColumn. Sorting is always ascending.
	OrderBy string
}

// SetDefaults fills empty column names.
func (o *Options) SetDefaults() {
	if o.IDColumn == "" {
		o.IDColumn = DefaultIDColumn
	}
	if o.NameColumn == "" {
		o.NameColumn = DefaultNameColumn
	}
	if o.ParentColumn == "" {
		o.ParentColumn = DefaultParentColumn
	}
	if o.OrderBy == "" {
		o.OrderBy = o.NameColumn
	}
}

// Validate runs every identifier through [errors.ValidateIdentifier].
// Build itself does not call it.
func (o Options) Validate(table string) error {
	o.SetDefaults()
	for _, name := range []string{table, o.IDColumn, o.NameColumn, o.ParentColumn, o.OrderBy} {
		if err := errs.ValidateIdentifier(name); err != nil {
			return err
		}
	}
	return nil
}

// Build returns
//
//	SELECT `id`, `name`, `parent_id` FROM `table` WHERE (a) AND (b) ORDER BY `name` ASC
//
// with the configured columns. The WHERE part is omitted when opts.Wheres is
// empty. An empty table name fails with INVALID_INPUT.
func Build(table string, opts Options) (string, error) {
	if table == "" {
		return "", errs.New(errs.ErrCodeInvalidInput, "table name cannot be empty")
	}
	opts.SetDefaults()

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(quote(opts.IDColumn))
	b.WriteString(", ")
	b.WriteString(quote(opts.NameColumn))
	b.WriteString(", ")
	b.WriteString(quote(opts.ParentColumn))
	b.WriteString(" FROM ")
	b.WriteString(quote(table))
	b.WriteString(" ")

	wheres := make([]string, 0, len(opts.Wheres))
	for _, w := range opts.Wheres {
		if strings.TrimSpace(w) != "" {
			wheres = append(wheres, w)
		}
	}
	if len(wheres) > 0 {
		b.WriteString("WHERE (")
		b.WriteString(strings.Join(wheres, ") AND ("))
		b.WriteString(") ")
	}

	b.WriteString("ORDER BY ")
	b.WriteString(quote(opts.OrderBy))
	b.WriteString(" ASC")
	return b.String(), nil
}

// quote wraps each dot-separated part of name in backticks.
func quote(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = "`" + p + "`"
	}
	return strings.Join(parts, ".")
}
