package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/Sohailsaifi/CodeFlow/pkg/config"
	"github.com/Sohailsaifi/CodeFlow/pkg/server"
)

var serveBindings = config.Bindings{
	"addr": "server.addr",
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve [analysis.json]",
		Short: "Serve the export endpoints and a browser viewer",
		Long: `Serve the export endpoints and a browser viewer.

The server holds one graph. PUT an analysis result to /api/graph to replace it
(malformed results are rejected and the current graph is kept); GET
/export/{svg,png,json} returns it rendered, and / shows it in the browser.
This is the export service the view and export commands talk to.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd, merge(layoutBindings, renderBindings, serveBindings))
			if err != nil {
				return err
			}
			var input string
			if len(args) == 1 {
				input = args[0]
			}
			return c.runServe(cmd.Context(), cfg, input, noCache)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default "+config.DefaultServerAddr+")")
	cmd.Flags().Bool("legend", true, "draw the legend on exports")
	cmd.Flags().Bool("popups", true, "embed hover popups in the viewer")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addLayoutFlags(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg *config.Config, input string, noCache bool) error {
	sh, err := c.newShell(ctx, cfg, noCache)
	if err != nil {
		return err
	}
	if input != "" {
		m, err := sh.LoadFile(ctx, input)
		if err != nil {
			return err
		}
		printSuccess("Loaded %s", input)
		printStats(m.Graph.NodeCount(), m.Graph.EdgeCount(), false)
	}

	runner := c.newRunner(ctx, cfg, noCache)
	defer runner.Close()

	srv := server.New(server.Config{
		Addr:        cfg.Server.Addr,
		CORSOrigins: cfg.Server.CORSOrigins,
		Render:      pipelineOptions(cfg),
	}, sh, runner, c.Logger)

	printInfo("Listening on http://%s", cfg.Server.Addr)
	printDetail("Press Ctrl+C to stop")
	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
