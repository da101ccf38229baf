package layout

import (
	"context"
	"fmt"
	"math"

	"github.com/Sohailsaifi/CodeFlow/pkg/dag"
	"github.com/Sohailsaifi/CodeFlow/pkg/dag/transform"
	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
	"github.com/Sohailsaifi/CodeFlow/pkg/style"
)

// Layered is the native layered engine.
type Layered struct {
	// Sweeps bounds the ordering passes; zero uses the default.
	Sweeps int
}

// Name returns "layered".
func (Layered) Name() string { return EngineLayered }

// Layout positions g in ranks, top to bottom.
func (l Layered) Layout(ctx context.Context, g *graph.Graph, sheet *style.Sheet, p Params) (graph.Layout, error) {
	d, err := graph.ToDAG(g)
	if err != nil {
		return graph.Layout{}, err
	}
	transform.BreakCycles(d)
	transform.AssignLayers(d)
	transform.Subdivide(d)
	if err := d.Validate(); err != nil {
		return graph.Layout{}, fmt.Errorf("layering: %w", err)
	}

	sweeps := l.Sweeps
	if sweeps <= 0 {
		sweeps = defaultSweeps
	}
	orders, err := orderRows(ctx, d, sweeps)
	if err != nil {
		return graph.Layout{}, err
	}

	pl := place(d, orders, sheet, p)
	out := graph.Layout{
		Engine:     EngineLayered,
		Positioned: true,
		Params:     p.toGraph(),
		Width:      pl.width,
		Height:     pl.height,
		Nodes:      make([]graph.PlacedNode, 0, len(g.Nodes)),
		Edges:      make([]graph.RoutedEdge, 0, len(g.Edges)),
	}

	order := make(map[string]int, len(g.Nodes))
	for _, r := range d.RowIDs() {
		var rank []string
		for _, id := range orders[r] {
			if n, _ := d.Node(id); !n.IsVirtual() {
				order[id] = len(rank)
				rank = append(rank, id)
			}
		}
		if len(rank) > 0 {
			out.Ranks = append(out.Ranks, rank)
		}
	}

	for _, n := range g.Nodes {
		dn, _ := d.Node(n.ID)
		b := pl.boxes[n.ID]
		out.Nodes = append(out.Nodes, graph.PlacedNode{
			ID: n.ID, X: b.x, Y: b.y, Width: b.w, Height: b.h,
			Rank: dn.Row, Order: order[n.ID],
		})
	}

	routes := chains(d)
	for _, e := range g.Edges {
		out.Edges = append(out.Edges, route(e, routes[e.ID], pl.boxes))
	}
	return out, nil
}

// =============================================================================
// Placement
// =============================================================================

type box struct{ x, y, w, h float64 }

type placement struct {
	boxes         map[string]box
	width, height float64
}

// place assigns box centers. Ranks are stacked with RankSep between the
// tallest boxes of neighboring ranks. Within a rank, nodes are pulled
// toward the mean x of their neighbors in alternating passes, keeping
// their order and at least NodeSep between boxes.
func place(d *dag.DAG, orders map[int][]string, sheet *style.Sheet, p Params) placement {
	boxes := make(map[string]box, d.NodeCount())
	for _, n := range d.Nodes() {
		if n.IsVirtual() {
			boxes[n.ID] = box{}
			continue
		}
		ns := sheet.Node(n.ID)
		boxes[n.ID] = box{w: ns.Width, h: ns.Height}
	}

	rows := d.RowIDs()
	if len(rows) == 0 {
		return placement{boxes: boxes, width: 2 * p.Padding, height: 2 * p.Padding}
	}
	maxRow := d.MaxRow()

	gap := func(a, b string) float64 {
		sep := p.NodeSep
		if na, _ := d.Node(a); na.IsVirtual() {
			sep /= 2
		} else if nb, _ := d.Node(b); nb.IsVirtual() {
			sep /= 2
		}
		return (boxes[a].w+boxes[b].w)/2 + sep
	}

	xs := make(map[string]float64, len(boxes))
	for _, r := range rows {
		x := 0.0
		for i, id := range orders[r] {
			if i > 0 {
				x += gap(orders[r][i-1], id)
			}
			xs[id] = x
		}
	}

	// Center rows on the widest one before refining.
	var widest float64
	spans := make(map[int]float64, len(rows))
	for _, r := range rows {
		row := orders[r]
		if len(row) == 0 {
			continue
		}
		spans[r] = xs[row[len(row)-1]] - xs[row[0]]
		widest = math.Max(widest, spans[r])
	}
	for _, r := range rows {
		shift := (widest - spans[r]) / 2
		for _, id := range orders[r] {
			xs[id] += shift
		}
	}

	mean := func(ids []string) (float64, bool) {
		if len(ids) == 0 {
			return 0, false
		}
		sum := 0.0
		for _, id := range ids {
			sum += xs[id]
		}
		return sum / float64(len(ids)), true
	}
	for pass := 0; pass < 4; pass++ {
		for r := 1; r <= maxRow; r++ {
			align(orders[r], xs, gap, func(id string) (float64, bool) { return mean(d.ParentsInRow(id, r-1)) })
		}
		for r := maxRow - 1; r >= 0; r-- {
			align(orders[r], xs, gap, func(id string) (float64, bool) { return mean(d.ChildrenInRow(id, r+1)) })
		}
	}

	minLeft, maxRight := math.Inf(1), math.Inf(-1)
	for id, b := range boxes {
		minLeft = math.Min(minLeft, xs[id]-b.w/2)
		maxRight = math.Max(maxRight, xs[id]+b.w/2)
	}

	rankHeight := make(map[int]float64, len(rows))
	for _, r := range rows {
		for _, id := range orders[r] {
			rankHeight[r] = math.Max(rankHeight[r], boxes[id].h)
		}
	}
	top := make(map[int]float64, len(rows))
	y := p.Padding
	for r := 0; r <= maxRow; r++ {
		top[r] = y
		y += rankHeight[r] + p.RankSep
	}
	height := top[maxRow] + rankHeight[maxRow] + p.Padding

	for _, r := range rows {
		for _, id := range orders[r] {
			b := boxes[id]
			b.x = xs[id] - minLeft + p.Padding
			b.y = top[r] + rankHeight[r]/2
			boxes[id] = b
		}
	}
	return placement{boxes: boxes, width: maxRight - minLeft + 2*p.Padding, height: height}
}

// align moves each node of row toward its target x. A left-to-right pass
// and a right-to-left pass each enforce the minimum gaps; their average
// keeps the gaps too and does not drift in either direction.
func align(row []string, xs map[string]float64, gap func(a, b string) float64, target func(string) (float64, bool)) {
	n := len(row)
	if n == 0 {
		return
	}
	want := make([]float64, n)
	for i, id := range row {
		if t, ok := target(id); ok {
			want[i] = t
		} else {
			want[i] = xs[id]
		}
	}

	left := make([]float64, n)
	for i := range row {
		left[i] = want[i]
		if i > 0 {
			left[i] = math.Max(want[i], left[i-1]+gap(row[i-1], row[i]))
		}
	}
	right := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		right[i] = want[i]
		if i < n-1 {
			right[i] = math.Min(want[i], right[i+1]-gap(row[i], row[i+1]))
		}
	}
	for i, id := range row {
		xs[id] = (left[i] + right[i]) / 2
	}
}

// =============================================================================
// Routing
// =============================================================================

type chain struct {
	top, bottom string
	via         []string
	reversed    bool
}

// chains indexes the layered edges by original edge id.
func chains(d *dag.DAG) map[string]chain {
	out := make(map[string]chain, d.EdgeCount())
	for _, e := range d.Edges() {
		if to, _ := d.Node(e.To); to.IsVirtual() {
			continue
		}
		id, _ := e.Meta["id"].(string)
		if id == "" {
			continue
		}
		c := chain{top: e.From, bottom: e.To}
		if from, _ := d.Node(e.From); from.IsVirtual() {
			c.top = ""
		}
		c.via, _ = e.Meta[transform.MetaChain].([]string)
		c.reversed, _ = e.Meta[transform.MetaReversed].(bool)
		if len(c.via) > 0 {
			first, _ := d.Node(c.via[0])
			c.top = sourceOf(d, first)
		}
		out[id] = c
	}
	return out
}

// sourceOf walks up from a virtual node to the regular node its chain
// starts at.
func sourceOf(d *dag.DAG, n *dag.Node) string {
	for n != nil && n.IsVirtual() {
		parents := d.Parents(n.ID)
		if len(parents) == 0 {
			return ""
		}
		n, _ = d.Node(parents[0])
	}
	if n == nil {
		return ""
	}
	return n.ID
}

const loopSize = 24.0

func route(e graph.Edge, c chain, boxes map[string]box) graph.RoutedEdge {
	re := graph.RoutedEdge{ID: e.ID, Source: e.Source, Target: e.Target}

	if e.Source == e.Target {
		b := boxes[e.Source]
		right := b.x + b.w/2
		re.Points = []graph.Point{
			{X: right, Y: b.y - b.h/4},
			{X: right + loopSize, Y: b.y - b.h/4},
			{X: right + loopSize, Y: b.y + b.h/4},
			{X: right, Y: b.y + b.h/4},
		}
		return re
	}

	if c.top == "" || c.bottom == "" {
		src, dst := boxes[e.Source], boxes[e.Target]
		re.Points = []graph.Point{{X: src.x, Y: src.y}, {X: dst.x, Y: dst.y}}
		return re
	}

	top, bottom := boxes[c.top], boxes[c.bottom]
	pts := make([]graph.Point, 0, len(c.via)+2)
	pts = append(pts, graph.Point{X: top.x, Y: top.y + top.h/2})
	for _, id := range c.via {
		v := boxes[id]
		pts = append(pts, graph.Point{X: v.x, Y: v.y})
	}
	pts = append(pts, graph.Point{X: bottom.x, Y: bottom.y - bottom.h/2})

	if c.reversed {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
		re.Reversed = true
	}
	re.Points = pts
	return re
}

var _ Engine = Layered{}
