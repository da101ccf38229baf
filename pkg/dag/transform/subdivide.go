package transform

import (
	"fmt"

	"github.com/Sohailsaifi/CodeFlow/pkg/dag"
)

// MetaChain lists, on the final edge of a subdivided chain, the virtual node
// IDs from top to bottom.
const MetaChain = "chain"

// Subdivide replaces every edge spanning more than one row with a chain of
// [dag.NodeKindVirtual] nodes, one per intermediate row:
//
//	Before: a.py (row 0) → helper (row 3)
//	After:  a.py → e4~1 → e4~2 → helper
//
// Virtual node IDs derive from the edge's "id" metadata (or its endpoints
// when absent) and are guaranteed unique. Each virtual node's MasterID is
// that edge id, and the final edge of the chain carries the original edge
// metadata plus [MetaChain], so routes can be reassembled after ordering.
func Subdivide(g *dag.DAG) {
	gen := newIDGen(g.Nodes())

	type long struct {
		e        dag.Edge
		src, dst *dag.Node
	}
	var spans []long
	for _, e := range g.Edges() {
		src, srcOK := g.Node(e.From)
		dst, dstOK := g.Node(e.To)
		if !srcOK || !dstOK || dst.Row <= src.Row+1 {
			continue
		}
		spans = append(spans, long{e, src, dst})
	}

	for _, s := range spans {
		g.RemoveEdge(s.e.From, s.e.To)
	}

	for _, s := range spans {
		master := edgeKey(s.e)
		prevID := s.src.ID
		chain := make([]string, 0, s.dst.Row-s.src.Row-1)
		for row := s.src.Row + 1; row < s.dst.Row; row++ {
			id := gen.next(master, row-s.src.Row)
			if err := g.AddNode(dag.Node{ID: id, Row: row, Kind: dag.NodeKindVirtual, MasterID: master}); err != nil {
				panic(err)
			}
			if err := g.AddEdge(dag.Edge{From: prevID, To: id, Meta: dag.Metadata{"id": master}}); err != nil {
				panic(err)
			}
			chain = append(chain, id)
			prevID = id
		}
		meta := dag.Metadata{}
		for k, v := range s.e.Meta {
			meta[k] = v
		}
		meta[MetaChain] = chain
		if err := g.AddEdge(dag.Edge{From: prevID, To: s.dst.ID, Meta: meta}); err != nil {
			panic(err)
		}
	}
}

func edgeKey(e dag.Edge) string {
	if id, ok := e.Meta["id"].(string); ok && id != "" {
		return id
	}
	return e.From + "->" + e.To
}

type idGen struct {
	used map[string]struct{}
}

func newIDGen(nodes []*dag.Node) *idGen {
	m := make(map[string]struct{}, len(nodes)*2)
	for _, n := range nodes {
		m[n.ID] = struct{}{}
	}
	return &idGen{used: m}
}

func (gen *idGen) next(base string, step int) string {
	prefix := fmt.Sprintf("%s~%d", base, step)
	id := prefix
	for i := 1; ; i++ {
		if _, exists := gen.used[id]; !exists {
			gen.used[id] = struct{}{}
			return id
		}
		id = fmt.Sprintf("%s__%d", prefix, i)
	}
}
