// Package source loads raw selectbox rows from files and databases.
//
// Every [Source] returns rows in the shape accepted by tree.Normalize:
// map[string]any values carrying "id", "name" and "parent_id". Sources only
// fetch and reshape data; they never build hierarchy or validate it.
//
// # Sources
//
//   - [File]: JSON, YAML or TOML documents, chosen by file extension
//   - [SQL]: any database/sql handle, typically SQLite opened with [OpenSQLite]
//   - [Mongo]: a MongoDB collection
//
// # Usage
//
//	src := source.NewFile("categories.yaml")
//	rows, err := src.Load(ctx)
//	lines, err := tree.New().Process(rows)
package source

import "context"

// Source produces raw rows for the tree normalizer.
type Source interface {
	// Load fetches all rows. Row order is preserved by the tree package, so
	// sources return rows in their natural or configured order.
	Load(ctx context.Context) ([]any, error)

	// Name identifies the source in logs and cache keys.
	Name() string
}

// Versioned is implemented by sources that can tell cheaply whether their
// data changed. The version becomes part of row cache keys.
type Versioned interface {
	Version(ctx context.Context) (string, error)
}
