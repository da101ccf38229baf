package layout

import (
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
)

// RecursiveGroups returns the strongly connected components of g with more
// than one node: mutually recursive functions and circular imports. Members
// are listed in input order and groups by their first member.
func RecursiveGroups(g *graph.Graph) [][]string {
	if g.NodeCount() == 0 {
		return nil
	}
	dg := simple.NewDirectedGraph()
	for i := range g.Nodes {
		dg.AddNode(simple.Node(int64(i)))
	}
	for _, e := range g.Edges {
		si, _ := g.Index(e.Source)
		ti, _ := g.Index(e.Target)
		if si == ti || dg.HasEdgeFromTo(int64(si), int64(ti)) {
			continue
		}
		dg.SetEdge(dg.NewEdge(simple.Node(int64(si)), simple.Node(int64(ti))))
	}

	var comps [][]int
	for _, scc := range topo.TarjanSCC(dg) {
		if len(scc) < 2 {
			continue
		}
		members := make([]int, len(scc))
		for i, n := range scc {
			members[i] = int(n.ID())
		}
		slices.Sort(members)
		comps = append(comps, members)
	}
	slices.SortFunc(comps, func(a, b []int) int { return a[0] - b[0] })

	groups := make([][]string, len(comps))
	for i, members := range comps {
		for _, m := range members {
			groups[i] = append(groups[i], g.Nodes[m].ID)
		}
	}
	return groups
}
