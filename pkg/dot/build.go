package dot

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
	"github.com/Sohailsaifi/CodeFlow/pkg/style"
)

// PointsPerInch is the Graphviz unit conversion. Layouts work in pixels at
// 72 dpi, so one pixel equals one Graphviz point.
const PointsPerInch = 72.0

// Options controls DOT generation.
type Options struct {
	RankSep float64 // pixels
	NodeSep float64 // pixels

	// Styled adds fill, border and line attributes from the style sheet.
	// The layout engine leaves it off; the node-link renderer turns it on.
	Styled bool
}

// NodeName returns the DOT statement name of the i-th node.
func NodeName(i int) string { return "n" + strconv.Itoa(i) }

// Build converts g into a top-to-bottom DOT digraph. Every node gets a
// fixed size from the sheet so Graphviz reserves exactly the box the
// renderers draw.
func Build(g *graph.Graph, sheet *style.Sheet, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  ordering=out;\n")
	fmt.Fprintf(&buf, "  ranksep=%s;\n", inches(opts.RankSep))
	fmt.Fprintf(&buf, "  nodesep=%s;\n", inches(opts.NodeSep))
	if opts.Styled {
		buf.WriteString("  bgcolor=\"transparent\";\n")
		buf.WriteString("  node [fontname=\"Helvetica\", fontcolor=white];\n")
		buf.WriteString("  edge [arrowsize=0.8];\n")
	}
	buf.WriteString("  node [fixedsize=true];\n\n")

	for i, n := range g.Nodes {
		ns := sheet.Node(n.ID)
		attrs := []string{
			attr("id", n.ID),
			attr("label", strings.Join(ns.Lines, "\n")),
			"width=" + inches(ns.Width),
			"height=" + inches(ns.Height),
			"shape=" + shapeName(ns.Shape),
		}
		if opts.Styled {
			attrs = append(attrs, nodeStyleAttrs(ns)...)
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", NodeName(i), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		src, _ := g.Index(e.Source)
		dst, _ := g.Index(e.Target)
		attrs := []string{attr("id", e.ID)}
		if opts.Styled {
			attrs = append(attrs, edgeStyleAttrs(sheet.Edge(e.ID))...)
		}
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n", NodeName(src), NodeName(dst), strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeStyleAttrs(ns style.NodeStyle) []string {
	styles := []string{"filled"}
	if ns.Shape == style.ShapeRoundRect {
		styles = append(styles, "rounded")
	}
	if ns.BorderLine == style.LineDashed {
		styles = append(styles, "dashed")
	}
	if ns.Bold {
		styles = append(styles, "bold")
	}
	return []string{
		attr("style", strings.Join(styles, ",")),
		attr("fillcolor", withAlpha(ns.Fill, ns.Opacity)),
		attr("color", withAlpha(ns.BorderColor, ns.Opacity)),
		"penwidth=" + num(ns.BorderWidth),
		"fontsize=" + num(ns.FontSize),
	}
}

func edgeStyleAttrs(es style.EdgeStyle) []string {
	attrs := []string{
		attr("color", withAlpha(es.Color, es.Opacity)),
		"penwidth=" + num(es.Width),
	}
	if es.Line == style.LineDashed {
		attrs = append(attrs, "style=dashed")
	}
	return attrs
}

func shapeName(s style.Shape) string {
	if s == style.ShapeEllipse {
		return "ellipse"
	}
	return "box"
}

// withAlpha appends an alpha channel to a #rrggbb color.
func withAlpha(color string, opacity float64) string {
	if opacity >= 1 || len(color) != 7 {
		return color
	}
	return fmt.Sprintf("%s%02x", color, int(opacity*255+0.5))
}

func inches(px float64) string { return num(px / PointsPerInch) }

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func attr(key, value string) string { return key + "=" + Quote(value) }

// Quote returns s as a DOT double-quoted string.
func Quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
