package source

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	errs "github.com/matzehuels/selecttree/pkg/errors"
	"github.com/matzehuels/selecttree/pkg/query"
)

// SQLiteDriver is the database/sql driver name registered by modernc.org/sqlite.
const SQLiteDriver = "sqlite"

// OpenSQLite opens a SQLite database file and checks the connection.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if err := errs.ValidatePath(path); err != nil {
		return nil, err
	}
	db, err := sql.Open(SQLiteDriver, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "connect sqlite %s", path)
	}
	return db, nil
}

// SQL loads rows with a SELECT built by query.Build.
type SQL struct {
	DB      *sql.DB
	Table   string
	Options query.Options
	// DSN identifies the database in cache keys. It is never used to connect.
	DSN string
}

// NewSQL creates a SQL source reading table from db.
func NewSQL(db *sql.DB, table string, opts query.Options) *SQL {
	return &SQL{DB: db, Table: table, Options: opts}
}

// Name returns the table name.
func (s *SQL) Name() string { return "sql:" + s.Table }

// Version identifies the database and statement, so rows cached for one
// query are never served for another.
func (s *SQL) Version(ctx context.Context) (string, error) {
	q, err := s.Query()
	if err != nil {
		return "", err
	}
	return s.DSN + "|" + q, nil
}

// Query returns the statement Load will run.
func (s *SQL) Query() (string, error) {
	return query.Build(s.Table, s.Options)
}

// Load runs the query and returns one row map per result row. The selected
// columns are mapped back to "id", "name" and "parent_id" whatever their
// real names are.
func (s *SQL) Load(ctx context.Context) ([]any, error) {
	if s.DB == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "sql source has no database")
	}
	q, err := s.Query()
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.Table, err)
	}
	defer rows.Close()

	out := []any{}
	for rows.Next() {
		var id, name, parent any
		if err := rows.Scan(&id, &name, &parent); err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.Table, err)
		}
		out = append(out, map[string]any{
			"id":        textValue(id),
			"name":      textValue(name),
			"parent_id": textValue(parent),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Table, err)
	}
	return out, nil
}

// textValue turns driver byte slices into strings so rows survive JSON
// encoding in the row cache.
func textValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

var (
	_ Source    = (*SQL)(nil)
	_ Versioned = (*SQL)(nil)
)
