package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/selecttree/pkg/render"
	"github.com/matzehuels/selecttree/pkg/source"
)

// pickCommand creates the pick command, an interactive selectbox in the
// terminal. The chosen option's id is printed to stdout, so the command
// composes with shell scripts:
//
//	category=$(selecttree pick categories.json)
func (c *CLI) pickCommand() *cobra.Command {
	var opts outputOpts

	cmd := &cobra.Command{
		Use:   "pick [file]",
		Short: "Choose an option interactively and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPick(cmd.Context(), args[0], &opts)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.maxDepth, "max-depth", "d", 0, "deepest level to show (1-1000, default from config or 32)")
	f.StringVar(&opts.indent, "indent", "", "indent unit repeated once per level")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	f.BoolVarP(&opts.translate, "translate", "t", false, "translate marker-prefixed names using the configured catalog")

	return cmd
}

func (c *CLI) runPick(ctx context.Context, path string, opts *outputOpts) error {
	opts.format = render.FormatText
	res, err := c.build(ctx, source.NewFile(path), opts)
	if err != nil {
		return err
	}
	if res.Truncated {
		printWarning("Some records lie below the depth bound and were left out")
	}

	model := NewPickerModel("Select "+path, res.Lines)
	final, err := tea.NewProgram(model, tea.WithContext(ctx), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return fmt.Errorf("picker: %w", err)
	}

	picked := final.(PickerModel).Selected
	if picked == nil {
		return context.Canceled
	}
	fmt.Println(picked.ID.String())
	return nil
}
