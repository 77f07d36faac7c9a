package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/figsheet/figsheet/pkg/figure"
	"github.com/figsheet/figsheet/pkg/pipeline"
)

// groupsCommand creates the groups debug command. It runs only the
// grouping stage and emits the resulting clusters as Graphviz DOT (or
// rendered SVG), which makes the cascade's decisions inspectable
// without composing any images.
func (c *CLI) groupsCommand() *cobra.Command {
	var (
		output      string
		markdownDir string
		keepAll     bool
		asSVG       bool
	)

	cmd := &cobra.Command{
		Use:   "groups [manifest]",
		Short: "Emit the figure group graph as DOT or SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			opts := pipeline.Options{
				Manifest:    args[0],
				MarkdownDir: markdownDir,
				KeepAll:     keepAll,
				Logger:      logger,
			}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			runner, err := c.newRunner(true)
			if err != nil {
				return err
			}

			prog := newProgress(logger)
			groups, skipped, err := runner.Group(ctx, opts)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Grouped %d figures, skipped %d", len(groups), len(skipped)))

			dot := figure.ToDOT(groups)

			var data []byte
			if asSVG || strings.HasSuffix(output, ".svg") {
				data, err = figure.RenderDOTSVG(ctx, dot)
				if err != nil {
					return err
				}
			} else {
				data = []byte(dot)
			}

			if output == "" {
				fmt.Print(string(data))
				return nil
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			printSuccess("Wrote %s", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&markdownDir, "markdown-dir", "", "directory with markdown renditions for caption text")
	cmd.Flags().BoolVar(&keepAll, "keep-all", false, "keep decorative and tiny groups instead of skipping them")
	cmd.Flags().BoolVar(&asSVG, "svg", false, "render SVG instead of emitting DOT")

	return cmd
}
