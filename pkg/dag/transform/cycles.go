package transform

import "github.com/Sohailsaifi/CodeFlow/pkg/dag"

// MetaReversed marks an edge that BreakCycles flipped. Renderers use it to
// draw the arrow in its original direction.
const MetaReversed = "reversed"

// BreakCycles makes g acyclic by reversing back edges found during a
// depth-first search. Self-loops are removed outright since they cannot be
// reversed. The search starts from sources, then from any node not yet
// visited, both in insertion order, so the same graph always breaks the same
// edges.
//
// It returns the edges as they were before reversal.
func BreakCycles(g *dag.DAG) []dag.Edge {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int)
	back := make(map[[2]string]bool)

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		for _, child := range g.Children(node) {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				back[[2]string{node, child}] = true
			}
		}
		color[node] = black
	}

	for _, n := range g.Sources() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}
	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	if len(back) == 0 {
		return nil
	}

	var flipped []dag.Edge
	for _, e := range g.Edges() {
		if back[[2]string{e.From, e.To}] {
			flipped = append(flipped, e)
		}
	}
	for pair := range back {
		g.RemoveEdge(pair[0], pair[1])
	}
	for _, e := range flipped {
		if e.From == e.To {
			continue
		}
		meta := dag.Metadata{}
		for k, v := range e.Meta {
			meta[k] = v
		}
		meta[MetaReversed] = true
		if err := g.AddEdge(dag.Edge{From: e.To, To: e.From, Meta: meta}); err != nil {
			panic(err)
		}
	}
	return flipped
}
