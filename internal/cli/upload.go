package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sohailsaifi/CodeFlow/pkg/config"
	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
	"github.com/Sohailsaifi/CodeFlow/pkg/integrations"
)

var uploadBindings = config.Bindings{
	"url": "upload.url",
}

// uploadCommand creates the upload command.
func (c *CLI) uploadCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "upload [file.py|project.zip]",
		Short: "Analyze a source file or project archive with the analysis backend",
		Long: `Analyze a source file or project archive with the analysis backend.

A .py file is sent to the single-file endpoint, a .zip archive to the project
endpoint. The returned analysis is validated like any other input and written
as JSON, ready for render, view or serve.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd, uploadBindings)
			if err != nil {
				return err
			}
			return c.runUpload(cmd.Context(), cfg, args[0], output)
		},
	}

	cmd.Flags().String("url", "", "analysis backend URL")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.analysis.json)")

	return cmd
}

func (c *CLI) runUpload(ctx context.Context, cfg *config.Config, input, output string) error {
	f, err := os.Open(input)
	if err != nil {
		return err
	}
	defer f.Close()

	sh, err := c.newShell(ctx, cfg, false)
	if err != nil {
		return err
	}

	name := filepath.Base(input)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Analyzing %s...", name))
	spinner.Start()
	m, err := sh.Upload(ctx, name, f)
	if err != nil {
		spinner.StopWithError("Analysis failed")
		return err
	}
	spinner.Stop()

	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".analysis.json"
	}
	if err := graph.WriteGraphFile(m.Graph, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Analyzed %s", name)
	printDetail("endpoint %s", integrations.EndpointFor(name))
	printFile(output)
	printStats(m.Graph.NodeCount(), m.Graph.EdgeCount(), false)
	if notice := sh.Notice(); notice != "" {
		printWarning("%s", notice)
	}
	printNewline()
	printNextStep("Browse", appName+" view "+output)
	return nil
}
