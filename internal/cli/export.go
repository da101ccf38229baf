package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sohailsaifi/CodeFlow/pkg/config"
	errs "github.com/Sohailsaifi/CodeFlow/pkg/errors"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [svg|png|json] [analysis.json]",
		Short: "Download an export of the graph from the export service",
		Long: `Download an export of the graph from the export service.

The export service (for example "codeflow serve") renders the graph it holds;
the response is saved as code_analysis.<format> in --dir. The analysis file is
loaded and validated first, and the export is only requested if it is
accepted.`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: errs.ExportFormats,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd, merge(layoutBindings, exportBindings))
			if err != nil {
				return err
			}
			return c.runExport(cmd.Context(), cfg, args[0], args[1])
		},
	}

	cmd.Flags().String("url", "", "export service URL")
	cmd.Flags().String("dir", "", "directory for the exported file")
	addLayoutFlags(cmd)

	return cmd
}

func (c *CLI) runExport(ctx context.Context, cfg *config.Config, format, input string) error {
	if err := errs.ValidateExportFormat(format); err != nil {
		return err
	}

	sh, err := c.newShell(ctx, cfg, false)
	if err != nil {
		return err
	}
	if _, err := sh.LoadFile(ctx, input); err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Exporting %s from %s...", format, cfg.Export.URL))
	spinner.Start()
	path, err := sh.Controller().Export(ctx, format, cfg.Export.Dir)
	if err != nil {
		spinner.StopWithError("Export failed")
		return err
	}
	spinner.Stop()

	printSuccess("Exported %s", format)
	printFile(path)
	return nil
}
