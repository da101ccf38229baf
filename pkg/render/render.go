package render

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
	"github.com/Sohailsaifi/CodeFlow/pkg/style"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// Formats lists every format the renderers produce.
var Formats = []string{FormatSVG, FormatPNG, FormatJSON, FormatDOT}

// ParseFormats splits a comma-separated format list, dropping blanks and
// duplicates. Unknown formats are an error.
func ParseFormats(s string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || slices.Contains(out, f) {
			continue
		}
		if !slices.Contains(Formats, f) {
			return nil, fmt.Errorf("unknown format %q (valid: %s)", f, strings.Join(Formats, ", "))
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no output format given")
	}
	return out, nil
}

// Scene is a positioned graph ready to draw.
type Scene struct {
	Graph  *graph.Graph
	Sheet  *style.Sheet
	Layout graph.Layout
}

// NewScene resolves the style sheet of g and pairs it with l.
func NewScene(g *graph.Graph, l graph.Layout) Scene {
	return Scene{Graph: g, Sheet: style.ResolveAll(g), Layout: l}
}

// Node returns the canonical node of a placed node.
func (s Scene) Node(id string) (*graph.Node, bool) {
	return s.Graph.Node(id)
}
