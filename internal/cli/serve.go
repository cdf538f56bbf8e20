package cli

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/selecttree/internal/server"
	"github.com/matzehuels/selecttree/pkg/observability/prom"
	"github.com/matzehuels/selecttree/pkg/source"
)

// serveCommand creates the serve command, which runs the HTTP API until
// interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noMetrics bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the selectbox HTTP API",
		Long: `Run the selectbox HTTP API.

Routes:
  GET  /healthz         liveness and version
  POST /v1/selectbox    build a selectbox from inline items
  GET  /v1/sql          build a selectbox from the [sql] table in the config file
  GET  /v1/query        show the SELECT statement for a table
  GET  /metrics         Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), !noMetrics)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config or :8080)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, metrics bool) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts := server.Options{
		Runner: runner,
		Logger: logger,
		Config: c.cfg,
	}

	tr, key, err := c.cfg.I18n.Translator()
	if err != nil {
		return err
	}
	if tr != nil {
		opts.Normalizer = tr
		opts.NormalizerKey = key
		logger.Info("translation enabled", "language", tr.Language(), "marker", tr.Marker())
	}

	if sqlCfg := c.cfg.SQL; sqlCfg.Path != "" && sqlCfg.Table != "" {
		db, err := source.OpenSQLite(ctx, sqlCfg.Path)
		if err != nil {
			return err
		}
		defer db.Close()
		src := source.NewSQL(db, sqlCfg.Table, sqlCfg.QueryOptions())
		src.DSN = sqlCfg.Path
		opts.SQL = src
		logger.Info("sql source enabled", "db", sqlCfg.Path, "table", sqlCfg.Table)
	}

	if metrics {
		prom.New(prometheus.DefaultRegisterer).Register()
		opts.Gatherer = prometheus.DefaultGatherer
	}

	return server.New(opts).ListenAndServe(ctx)
}
