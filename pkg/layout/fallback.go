package layout

import (
	"math"

	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
	"github.com/Sohailsaifi/CodeFlow/pkg/style"
)

// Grid places nodes row-major on a square-ish grid in input order, with
// straight edges between centers. It is the best-effort placement used
// when an engine fails, so it marks the result as not positioned and
// records cause.
func Grid(g *graph.Graph, sheet *style.Sheet, p Params, engine string, cause error) graph.Layout {
	out := graph.Layout{
		Engine: engine,
		Params: p.toGraph(),
		Width:  2 * p.Padding,
		Height: 2 * p.Padding,
		Nodes:  make([]graph.PlacedNode, len(g.Nodes)),
		Edges:  make([]graph.RoutedEdge, len(g.Edges)),
	}
	if cause != nil {
		out.Failure = cause.Error()
	}
	if len(g.Nodes) == 0 {
		return out
	}

	cols := int(math.Ceil(math.Sqrt(float64(len(g.Nodes)))))
	var cellW, cellH float64
	for _, n := range g.Nodes {
		ns := sheet.Node(n.ID)
		cellW = math.Max(cellW, ns.Width)
		cellH = math.Max(cellH, ns.Height)
	}
	stepX, stepY := cellW+p.NodeSep, cellH+p.RankSep

	for i, n := range g.Nodes {
		ns := sheet.Node(n.ID)
		row, col := i/cols, i%cols
		out.Nodes[i] = graph.PlacedNode{
			ID:     n.ID,
			X:      p.Padding + float64(col)*stepX + cellW/2,
			Y:      p.Padding + float64(row)*stepY + cellH/2,
			Width:  ns.Width,
			Height: ns.Height,
			Rank:   row,
			Order:  col,
		}
	}
	rows := (len(g.Nodes) + cols - 1) / cols
	out.Width = 2*p.Padding + float64(cols)*cellW + float64(cols-1)*p.NodeSep
	out.Height = 2*p.Padding + float64(rows)*cellH + float64(rows-1)*p.RankSep

	for i, e := range g.Edges {
		si, _ := g.Index(e.Source)
		ti, _ := g.Index(e.Target)
		src, dst := out.Nodes[si], out.Nodes[ti]
		out.Edges[i] = graph.RoutedEdge{
			ID: e.ID, Source: e.Source, Target: e.Target,
			Points: []graph.Point{{X: src.X, Y: src.Y}, {X: dst.X, Y: dst.Y}},
		}
	}
	return out
}
