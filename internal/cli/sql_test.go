package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/selecttree/pkg/source"
)

func seedDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.db")
	db, err := source.OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range []string{
		`CREATE TABLE category (id INTEGER PRIMARY KEY, title TEXT NOT NULL, parent INTEGER, active INTEGER NOT NULL)`,
		`INSERT INTO category VALUES (1, 'Phone', NULL, 1)`,
		`INSERT INTO category VALUES (2, 'iPhone', 1, 1)`,
		`INSERT INTO category VALUES (3, 'Hidden', NULL, 0)`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return path
}

func TestSQLCommand(t *testing.T) {
	c := newTestCLI(t)
	dbPath := seedDB(t)
	output := filepath.Join(t.TempDir(), "out.txt")

	_, err := execute(t, c, "sql", "--db", dbPath, "--table", "category",
		"--name", "title", "--parent", "parent", "--where", "active = 1",
		"--indent", "-", "-o", output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "Phone\n-iPhone\n", string(data))
}

func TestSQLCommandFromConfig(t *testing.T) {
	c := newTestCLI(t)
	dbPath := seedDB(t)
	cfgPath := writeFile(t, "config.toml", `
indent = "-"

[sql]
path = "`+dbPath+`"
table = "category"
name_column = "title"
parent_column = "parent"
where = ["active = 1"]
`)
	output := filepath.Join(t.TempDir(), "out.txt")

	_, err := execute(t, c, "--config", cfgPath, "sql", "-o", output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "Phone\n-iPhone\n", string(data))
}

func TestSQLCommandPrintQuery(t *testing.T) {
	c := newTestCLI(t)
	output := filepath.Join(t.TempDir(), "query.sql")

	_, err := execute(t, c, "sql", "--table", "category", "--where", "active = 1", "--print-query", "-o", output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "SELECT `id`, `name`, `parent_id` FROM `category` WHERE (active = 1) ORDER BY `name` ASC\n", string(data))
}

func TestSQLCommandErrors(t *testing.T) {
	c := newTestCLI(t)

	_, err := execute(t, c, "sql", "--db", "x.db")
	assert.Error(t, err, "missing table")

	_, err = execute(t, c, "sql", "--table", "category")
	assert.Error(t, err, "missing db")

	_, err = execute(t, c, "sql", "--table", "bad table", "--print-query")
	assert.Error(t, err, "invalid identifier")
}

func TestMongoCommandErrors(t *testing.T) {
	c := newTestCLI(t)

	_, err := execute(t, c, "mongo", "--database", "shop")
	assert.Error(t, err, "missing collection")

	_, err = execute(t, c, "mongo", "--database", "shop", "--collection", "c", "--filter", "{bad")
	assert.Error(t, err, "malformed filter")

	_, err = execute(t, c, "mongo", "--uri", "http://localhost", "--database", "shop", "--collection", "c")
	assert.Error(t, err, "wrong scheme")
}
