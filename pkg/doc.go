// Package pkg provides the core libraries for selecttree, which turns flat
// parent/child rows into the indented option list of an HTML selectbox.
//
// # Overview
//
// Selecttree takes rows of the form {id, name, parent_id}, as they come out
// of a categories table, and produces one display line per reachable row in
// depth-first order, each name prefixed with an indent repeated once per
// level:
//
//	Phones
//	|   iPhone
//	Computers
//	|   Mac
//	|   |   MacBook
//
// The libraries are used by the selecttree CLI and its HTTP server, and can
// be embedded directly.
//
// # Quick Start
//
//	// 1. Load rows
//	rows, _ := source.NewFile("categories.json").Load(ctx)
//
//	// 2. Normalize, linearize and render
//	lines, _ := tree.New(tree.WithMaxDepth(8)).Process(rows)
//
//	// 3. Write them out
//	out, _ := render.Lines(lines, render.FormatJSON)
//
// # Main Packages
//
// ## Core Domain Logic
//
// [tree] - Row normalization, the depth-bounded linearizer and line
// rendering. A record is placed under the first record whose id strictly
// equals its parent id; duplicates, cycles and orphans never loop or panic.
//
// [query] - Builds the SELECT statement that reads a categories table, with
// identifier quoting and optional WHERE and ORDER BY clauses.
//
// [i18n] - Resolves marker-prefixed names ("T:category.phones") through a
// golang.org/x/text message catalog. Plugged in as a tree normalizer.
//
// ## Data Access
//
// [source] - Row loaders for JSON, YAML and TOML files, SQL databases
// (SQLite by default) and MongoDB collections.
//
// [cache] - Caching for loaded rows and rendered results. File, Redis and
// no-op backends share one interface; keys are derived from source names,
// versions and render options.
//
// ## Output
//
// [render] - Text and JSON output of rendered lines.
//
// [render/dot] - Graphviz DOT and SVG diagrams of the linearized tree.
//
// ## Infrastructure
//
// [pipeline] - Complete load, process and render pipeline used by the CLI
// and the HTTP server, so both produce identical results for the same input.
//
// [config] - TOML configuration with defaults and validation.
//
// [observability] - Hooks for pipeline and cache events, with a Prometheus
// implementation in [observability/prom].
//
// [errors] - Coded errors shared by every package. Codes map to CLI exit
// codes and HTTP statuses.
//
// # Common Workflows
//
// Read a SQLite table:
//
//	db, _ := source.OpenSQLite(ctx, "shop.db")
//	src := source.NewSQL(db, "category", query.Options{OrderBy: "id"})
//	rows, _ := src.Load(ctx)
//
// Translate marker names:
//
//	cat, _ := i18n.LoadCatalog("messages.toml")
//	t := tree.New(tree.WithNormalizer(i18n.New(cat, language.German)))
//
// Run the cached pipeline:
//
//	c, _ := cache.NewFileCache(dir)
//	r := pipeline.NewRunner(c, nil, logger)
//	res, _ := r.Execute(ctx, pipeline.Options{Source: src, Format: render.FormatText})
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...         # All tests
//	go test ./pkg/tree/...    # Specific package
//
// [tree]: https://pkg.go.dev/github.com/matzehuels/selecttree/pkg/tree
// [query]: https://pkg.go.dev/github.com/matzehuels/selecttree/pkg/query
// [i18n]: https://pkg.go.dev/github.com/matzehuels/selecttree/pkg/i18n
// [source]: https://pkg.go.dev/github.com/matzehuels/selecttree/pkg/source
// [cache]: https://pkg.go.dev/github.com/matzehuels/selecttree/pkg/cache
// [render]: https://pkg.go.dev/github.com/matzehuels/selecttree/pkg/render
// [render/dot]: https://pkg.go.dev/github.com/matzehuels/selecttree/pkg/render/dot
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/selecttree/pkg/pipeline
// [config]: https://pkg.go.dev/github.com/matzehuels/selecttree/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/selecttree/pkg/observability
// [observability/prom]: https://pkg.go.dev/github.com/matzehuels/selecttree/pkg/observability/prom
// [errors]: https://pkg.go.dev/github.com/matzehuels/selecttree/pkg/errors
package pkg
