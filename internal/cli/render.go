package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/selecttree/pkg/source"
)

// renderCommand creates the render command for building a selectbox from a
// record file.
//
// The file holds a list of {id, name, parent_id} records, either at the top
// level or under an "items" key, in JSON, YAML or TOML.
func (c *CLI) renderCommand() *cobra.Command {
	var opts outputOpts
	var inputFormat string

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Build a selectbox from a JSON, YAML or TOML file",
		Example: `  selecttree render categories.json
  selecttree render categories.yaml --indent "-- " --max-depth 3
  selecttree render categories.toml -o tree.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], inputFormat, &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&inputFormat, "input-format", "", "input format: json, yaml, toml (default from extension)")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, path, inputFormat string, opts *outputOpts) error {
	logger := loggerFromContext(ctx)
	logger.Debugf("Rendering %s", path)

	src := source.NewFile(path)
	src.Format = inputFormat
	return c.runSource(ctx, src, opts)
}
