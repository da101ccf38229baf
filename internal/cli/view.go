package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Sohailsaifi/CodeFlow/pkg/config"
	"github.com/Sohailsaifi/CodeFlow/pkg/observability"
	"github.com/Sohailsaifi/CodeFlow/pkg/watch"
)

var exportBindings = config.Bindings{
	"url": "export.url",
	"dir": "export.dir",
}

// viewCommand creates the view command.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		watchFile bool
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "view [analysis.json]",
		Short: "Browse an analysis result in the terminal",
		Long: `Browse an analysis result in the terminal.

Nodes are listed rank by rank in layout order. Moving the focus onto a node
opens its detail card with the node's metrics; the legend can be toggled and
the graph exported through the export service.

With --watch the file is reloaded whenever it changes on disk.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd, merge(layoutBindings, exportBindings))
			if err != nil {
				return err
			}
			return c.runView(cmd.Context(), cfg, args[0], watchFile, noCache)
		},
	}

	cmd.Flags().BoolVarP(&watchFile, "watch", "w", false, "reload when the file changes")
	cmd.Flags().String("url", "", "export service URL")
	cmd.Flags().String("dir", "", "directory for exported files")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addLayoutFlags(cmd)

	return cmd
}

func (c *CLI) runView(ctx context.Context, cfg *config.Config, input string, watchFile, noCache bool) error {
	sh, err := c.newShell(ctx, cfg, noCache)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Loading %s...", input))
	spinner.Start()
	if _, err := sh.LoadFile(ctx, input); err != nil {
		spinner.StopWithError("Load failed")
		return err
	}
	spinner.Stop()

	var w *watch.Watcher
	if watchFile {
		w, err = watch.New(input, watch.WithLogger(c.Logger))
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()
	}

	// Log lines would tear the alternate screen.
	c.Logger.SetOutput(io.Discard)
	observability.Reset()
	defer c.Logger.SetOutput(c.logOut)

	p := tea.NewProgram(NewViewModel(ctx, sh, input, cfg.Export.Dir, w), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
