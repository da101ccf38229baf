package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sohailsaifi/CodeFlow/pkg/analysis"
	"github.com/Sohailsaifi/CodeFlow/pkg/config"
	"github.com/Sohailsaifi/CodeFlow/pkg/pipeline"
	"github.com/Sohailsaifi/CodeFlow/pkg/render"
)

var renderBindings = config.Bindings{
	"legend": "render.legend",
	"popups": "render.popups",
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		scale      float64
		noCache    bool
		refresh    bool
	)

	cmd := &cobra.Command{
		Use:   "render [analysis.json]",
		Short: "Render an analysis result to SVG, PNG, JSON or DOT",
		Long: `Render an analysis result to SVG, PNG, JSON or DOT.

The graph is normalized, laid out and drawn with the visual encoding: fill by
node type or complexity band, a thick red border for code smells, a dashed
border for dead code, and faded builtins. SVG output carries hover popups with
the node's metrics and a legend that can be toggled.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := render.ParseFormats(formatsStr)
			if err != nil {
				return err
			}
			cfg, err := c.loadConfig(cmd, merge(layoutBindings, renderBindings))
			if err != nil {
				return err
			}
			opts := pipelineOptions(cfg)
			opts.Formats = formats
			opts.Scale = scale
			opts.Refresh = refresh
			runner := c.newRunner(cmd.Context(), cfg, noCache)
			defer runner.Close()
			return c.runRender(cmd.Context(), runner, args[0], opts, output)
		},
	}

	cmd.Flags().StringVarP(&formatsStr, "format", "f", render.FormatSVG, "output format(s): svg, png, json, dot (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().Float64Var(&scale, "scale", 0, "PNG pixel density (default 2)")
	cmd.Flags().Bool("legend", true, "draw the legend")
	cmd.Flags().Bool("popups", true, "embed hover popups in SVG output")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when cached")
	addLayoutFlags(cmd)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options, output string) error {
	raw, err := analysis.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
	spinner.Start()

	res, err := runner.Execute(ctx, raw, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if !res.Layout.Positioned {
		printWarning("Layout failed, nodes placed on a grid: %s", res.Layout.Failure)
	}
	return writeArtifacts(artifactWriteParams{
		artifacts: res.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		cacheHit:  res.CacheInfo.RenderHit,
		nodes:     res.Stats.NodeCount,
		edges:     res.Stats.EdgeCount,
	})
}

type artifactWriteParams struct {
	artifacts    map[string][]byte
	formats      []string
	input        string
	output       string
	cacheHit     bool
	nodes, edges int
}

// writeArtifacts writes each artifact next to the input, or to output when
// a single format was requested.
func writeArtifacts(p artifactWriteParams) error {
	paths := make(map[string]string, len(p.formats))
	if len(p.formats) == 1 && p.output != "" {
		paths[p.formats[0]] = p.output
	} else {
		base := basePath(p.output, p.input)
		for _, f := range p.formats {
			paths[f] = base + "." + f
		}
	}

	formats := slices.Clone(p.formats)
	sort.Strings(formats)
	written := make([]string, 0, len(formats))
	for _, f := range formats {
		data, ok := p.artifacts[f]
		if !ok {
			return fmt.Errorf("renderer produced no %s output", f)
		}
		path := paths[f]
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}

	printSuccess("Rendered %s", p.input)
	for _, path := range written {
		printFile(path)
	}
	printStats(p.nodes, p.edges, p.cacheHit)
	return nil
}

// basePath derives the output base from output or, when empty, from the
// input file name. A known format extension on output is stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if slices.Contains(render.Formats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
