package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/selecttree/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Before any subcommand runs the configuration is loaded from --config (or
// the default location) and the CLI logger is attached to the command
// context, so commands retrieve it with loggerFromContext.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Selecttree turns parent/child records into indented selectbox options",
		Long: `Selecttree linearizes flat records with an id, a name and a parent id into
a depth-first list of options, each prefixed with one indent per level, ready
to be used in an HTML selectbox.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default $XDG_CONFIG_HOME/selecttree/config.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.sqlCommand())
	root.AddCommand(c.mongoCommand())
	root.AddCommand(c.pickCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
