package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sohailsaifi/CodeFlow/pkg/analysis"
	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
	"github.com/Sohailsaifi/CodeFlow/pkg/pipeline"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "layout [analysis.json]",
		Short: "Compute a positioned layout for an analysis result",
		Long: `Compute a positioned layout for an analysis result.

The layout is written as JSON: node boxes, routed edges, ranks and recursive
groups. When the engine fails the nodes are placed on a grid instead and the
failure is reported.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd, layoutBindings)
			if err != nil {
				return err
			}
			opts := pipelineOptions(cfg)
			opts.Refresh = refresh
			runner := c.newRunner(cmd.Context(), cfg, noCache)
			defer runner.Close()
			return c.runLayout(cmd.Context(), runner, args[0], opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when cached")
	addLayoutFlags(cmd)

	return cmd
}

// runLayout normalizes the input, lays it out, and writes the layout.
func (c *CLI) runLayout(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options, output string) error {
	raw, err := analysis.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}
	g, err := runner.Normalize(ctx, raw)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Laying out %d nodes...", g.NodeCount()))
	spinner.Start()

	l, err := runner.Layout(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Laid out %d nodes with %s", g.NodeCount(), l.Engine))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
	}
	if err := graph.WriteLayoutFile(l, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	if l.Positioned {
		printSuccess("Layout complete")
	} else {
		printWarning("Layout failed, nodes placed on a grid: %s", l.Failure)
	}
	printFile(outputPath)
	printStats(g.NodeCount(), g.EdgeCount(), false)
	if len(l.Groups) > 0 {
		printDetail("%d recursive group(s)", len(l.Groups))
	}
	printNewline()
	printNextStep("Render", appName+" render "+input)

	return nil
}
