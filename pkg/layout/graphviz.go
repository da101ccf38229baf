package layout

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/goccy/go-graphviz"

	"github.com/Sohailsaifi/CodeFlow/pkg/dot"
	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
	"github.com/Sohailsaifi/CodeFlow/pkg/style"
)

// Graphviz lays out with the Graphviz dot engine, run in-process.
type Graphviz struct{}

// Name returns "graphviz".
func (Graphviz) Name() string { return EngineGraphviz }

// Layout runs dot on g and converts its output to pixel coordinates with
// the y axis pointing down. The generated DOT is kept on the result.
func (Graphviz) Layout(ctx context.Context, g *graph.Graph, sheet *style.Sheet, p Params) (graph.Layout, error) {
	src := dot.Build(g, sheet, dot.Options{RankSep: p.RankSep, NodeSep: p.NodeSep})
	out, err := dot.Run(ctx, src, graphviz.XDOT)
	if err != nil {
		return graph.Layout{}, err
	}
	doc, err := dot.Parse(out)
	if err != nil {
		return graph.Layout{}, fmt.Errorf("read graphviz output: %w", err)
	}

	ll, ur, err := dot.ParseBox(doc.Graph["bb"])
	if err != nil {
		return graph.Layout{}, fmt.Errorf("read graphviz output: %w", err)
	}
	toPx := func(pt dot.Point) graph.Point {
		return graph.Point{X: pt.X - ll.X + p.Padding, Y: ur.Y - pt.Y + p.Padding}
	}

	res := graph.Layout{
		Engine:     EngineGraphviz,
		Positioned: true,
		Params:     p.toGraph(),
		Width:      ur.X - ll.X + 2*p.Padding,
		Height:     ur.Y - ll.Y + 2*p.Padding,
		Nodes:      make([]graph.PlacedNode, len(g.Nodes)),
		Edges:      make([]graph.RoutedEdge, 0, len(g.Edges)),
		DOT:        src,
	}

	for i, n := range g.Nodes {
		dn, ok := doc.Node(dot.NodeName(i))
		if !ok {
			return graph.Layout{}, fmt.Errorf("graphviz dropped node %s", n.ID)
		}
		pos, err := dot.ParsePoint(dn.Attrs["pos"])
		if err != nil {
			return graph.Layout{}, fmt.Errorf("node %s: %w", n.ID, err)
		}
		c := toPx(pos)
		ns := sheet.Node(n.ID)
		res.Nodes[i] = graph.PlacedNode{ID: n.ID, X: c.X, Y: c.Y, Width: ns.Width, Height: ns.Height}
	}
	res.Ranks = ranksByY(res.Nodes)

	splines := make(map[string]string, len(doc.Edges))
	for _, e := range doc.Edges {
		splines[e.Attrs["id"]] = e.Attrs["pos"]
	}
	for _, e := range g.Edges {
		re := graph.RoutedEdge{ID: e.ID, Source: e.Source, Target: e.Target}
		if pts, err := dot.ParseSpline(splines[e.ID]); err == nil {
			for _, pt := range pts {
				re.Points = append(re.Points, toPx(pt))
			}
		} else {
			src, _ := res.Node(e.Source)
			dst, _ := res.Node(e.Target)
			re.Points = []graph.Point{{X: src.X, Y: src.Y}, {X: dst.X, Y: dst.Y}}
		}
		res.Edges = append(res.Edges, re)
	}
	return res, nil
}

// ranksByY groups nodes sharing a center line into ranks and fills in Rank
// and Order. Graphviz centers every node of a rank on the same y.
func ranksByY(nodes []graph.PlacedNode) [][]string {
	idx := make([]int, len(nodes))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		na, nb := nodes[a], nodes[b]
		if d := math.Round(na.Y) - math.Round(nb.Y); d != 0 {
			return int(math.Copysign(1, d))
		}
		if na.X != nb.X {
			return int(math.Copysign(1, na.X-nb.X))
		}
		return 0
	})

	var ranks [][]string
	lastY := math.Inf(-1)
	for _, i := range idx {
		y := math.Round(nodes[i].Y)
		if y != lastY {
			ranks = append(ranks, nil)
			lastY = y
		}
		r := len(ranks) - 1
		nodes[i].Rank = r
		nodes[i].Order = len(ranks[r])
		ranks[r] = append(ranks[r], nodes[i].ID)
	}
	return ranks
}

var _ Engine = Graphviz{}
