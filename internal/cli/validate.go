package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sohailsaifi/CodeFlow/pkg/analysis"
	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
	"github.com/Sohailsaifi/CodeFlow/pkg/layout"
	"github.com/Sohailsaifi/CodeFlow/pkg/style"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [analysis.json]",
		Short: "Check an analysis result and summarize it",
		Long: `Check an analysis result and summarize it.

Every node id must be unique and every edge must reference known nodes. A
result that breaks either rule is rejected as a whole and the offending ids
are listed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(args[0])
		},
	}
}

func (c *CLI) runValidate(input string) error {
	raw, err := analysis.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}

	g, err := graph.Normalize(raw)
	var mg *graph.MalformedGraphError
	if errors.As(err, &mg) {
		printError("Malformed analysis result")
		printMalformed(mg)
		return fmt.Errorf("%s: %d offending ids", input, len(mg.IDs()))
	}
	if err != nil {
		return err
	}

	printSuccess("Valid analysis result")
	printFile(input)
	printStats(g.NodeCount(), g.EdgeCount(), false)
	printNewline()

	for _, row := range typeCounts(g) {
		printKeyValue(row[0], row[1])
	}
	if bands := bandCounts(g); bands != "" {
		printKeyValue("complexity", bands)
	}
	if groups := layout.RecursiveGroups(g); len(groups) > 0 {
		printNewline()
		printWarning("%d recursive group(s)", len(groups))
		for _, grp := range groups {
			printDetail("%s", strings.Join(grp, " ↔ "))
		}
	}
	return nil
}

func printMalformed(mg *graph.MalformedGraphError) {
	if len(mg.DuplicateIDs) > 0 {
		printDetail("duplicate ids: %s", strings.Join(mg.DuplicateIDs, ", "))
	}
	for _, d := range mg.DanglingEdges {
		printDetail("%s: %s → %s (unknown: %s)", d.EdgeID, d.Source, d.Target, strings.Join(d.Missing, ", "))
	}
	if len(mg.InvalidNodes) > 0 {
		printDetail("invalid ids: %s", strings.Join(mg.InvalidNodes, ", "))
	}
	if len(mg.InvalidEdges) > 0 {
		printDetail("edges without type: %s", strings.Join(mg.InvalidEdges, ", "))
	}
}

// typeCounts returns "type, count" rows in a stable order.
func typeCounts(g *graph.Graph) [][2]string {
	counts := map[string]int{}
	for _, n := range g.Nodes {
		counts[string(n.Type)]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([][2]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, [2]string{k, fmt.Sprint(counts[k])})
	}
	return rows
}

// bandCounts summarizes complexity bands, e.g. "3 simple · 1 complex".
func bandCounts(g *graph.Graph) string {
	counts := map[style.Band]int{}
	for _, n := range g.Nodes {
		if b := style.BandOf(n.Metadata); b != style.BandNone && n.Type.HasMetrics() {
			counts[b]++
		}
	}
	var parts []string
	for _, b := range []style.Band{style.BandSimple, style.BandModerate, style.BandComplex} {
		if counts[b] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[b], b))
		}
	}
	return strings.Join(parts, " · ")
}
