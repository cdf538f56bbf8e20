package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/selecttree/pkg/config"
)

// configCommand creates the config command, which prints the effective
// configuration after defaults and the config file are applied.
func (c *CLI) configCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath
			if path == "" {
				if p, err := config.DefaultPath(); err == nil {
					path = p
				}
			}
			cfg := c.cfg

			printSection("General", true)
			printKeyValue("file", path)
			printKeyValue("max_depth", strconv.Itoa(cfg.MaxDepth))
			printKeyValue("indent", strconv.Quote(cfg.Indent))

			catalog := cfg.I18n.Catalog
			if catalog == "" {
				catalog = "(disabled)"
			}
			printSection("Translation", false)
			printKeyValue("language", cfg.I18n.Language)
			printKeyValue("marker", cfg.I18n.Marker)
			printKeyValue("catalog", catalog)

			printSection("Cache", false)
			printKeyValue("backend", cfg.Cache.Backend)
			switch cfg.Cache.Backend {
			case config.BackendFile:
				if dir, err := c.cacheDir(); err == nil {
					printKeyValue("dir", dir)
				}
			case config.BackendRedis:
				printKeyValue("redis", cfg.Cache.RedisURL)
			}
			printKeyValue("result ttl", cfg.Cache.TTL.String())

			printSection("Server", false)
			printKeyValue("listen", cfg.Server.Addr)
			if cfg.SQL.Table != "" {
				printKeyValue("sql", cfg.SQL.Path+" "+cfg.SQL.Table)
			}
			if cfg.Mongo.Collection != "" {
				printKeyValue("mongo", cfg.Mongo.Database+"."+cfg.Mongo.Collection)
			}
			return nil
		},
	}
}
