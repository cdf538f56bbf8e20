package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/selecttree/pkg/config"
	errs "github.com/matzehuels/selecttree/pkg/errors"
	"github.com/matzehuels/selecttree/pkg/query"
	"github.com/matzehuels/selecttree/pkg/source"
)

// sqlOpts holds the table flags of the sql command. Empty values fall back
// to the [sql] section of the config file.
type sqlOpts struct {
	db         string
	table      string
	idColumn   string
	nameColumn string
	parentCol  string
	where      []string
	orderBy    string
	printQuery bool
}

// sqlCommand creates the sql command for building a selectbox from a
// SQLite table.
func (c *CLI) sqlCommand() *cobra.Command {
	var out outputOpts
	var opts sqlOpts

	cmd := &cobra.Command{
		Use:   "sql",
		Short: "Build a selectbox from a SQLite table",
		Example: `  selecttree sql --db shop.db --table category
  selecttree sql --db shop.db --table category --name title --where "active = 1"
  selecttree sql --table category --print-query`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSQL(cmd.Context(), &opts, &out)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.db, "db", "", "SQLite database file")
	f.StringVar(&opts.table, "table", "", "table holding the records")
	f.StringVar(&opts.idColumn, "id", "", "id column (default id)")
	f.StringVar(&opts.nameColumn, "name", "", "name column (default name)")
	f.StringVar(&opts.parentCol, "parent", "", "parent column (default parent_id)")
	f.StringArrayVar(&opts.where, "where", nil, "WHERE condition, repeatable; conditions are ANDed")
	f.StringVar(&opts.orderBy, "order", "", "sort column (default the name column)")
	f.BoolVar(&opts.printQuery, "print-query", false, "print the SELECT statement and exit")
	out.register(cmd)

	return cmd
}

// merge fills unset flags from the config file.
func (o *sqlOpts) merge(cfg config.SQLConfig) {
	if o.db == "" {
		o.db = cfg.Path
	}
	if o.table == "" {
		o.table = cfg.Table
	}
	if o.idColumn == "" {
		o.idColumn = cfg.IDColumn
	}
	if o.nameColumn == "" {
		o.nameColumn = cfg.NameColumn
	}
	if o.parentCol == "" {
		o.parentCol = cfg.ParentColumn
	}
	if len(o.where) == 0 {
		o.where = cfg.Where
	}
	if o.orderBy == "" {
		o.orderBy = cfg.OrderBy
	}
}

func (o *sqlOpts) queryOptions() query.Options {
	return query.Options{
		IDColumn:     o.idColumn,
		NameColumn:   o.nameColumn,
		ParentColumn: o.parentCol,
		Wheres:       o.where,
		OrderBy:      o.orderBy,
	}
}

func (c *CLI) runSQL(ctx context.Context, opts *sqlOpts, out *outputOpts) error {
	logger := loggerFromContext(ctx)
	opts.merge(c.cfg.SQL)

	if opts.table == "" {
		return errs.New(errs.ErrCodeInvalidInput, "--table is required (or [sql] table in the config file)")
	}
	qopts := opts.queryOptions()
	if err := qopts.Validate(opts.table); err != nil {
		return err
	}

	if opts.printQuery {
		stmt, err := query.Build(opts.table, qopts)
		if err != nil {
			return err
		}
		return writeOutput(out.output, []byte(stmt+"\n"))
	}

	if opts.db == "" {
		return errs.New(errs.ErrCodeInvalidInput, "--db is required (or [sql] path in the config file)")
	}
	db, err := source.OpenSQLite(ctx, opts.db)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Debugf("Querying %s in %s", opts.table, opts.db)
	src := source.NewSQL(db, opts.table, qopts)
	src.DSN = opts.db
	return c.runSource(ctx, src, out)
}
