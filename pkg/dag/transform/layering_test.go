package transform

import (
	"testing"

	"github.com/Sohailsaifi/CodeFlow/pkg/dag"
)

func TestAssignLayers(t *testing.T) {
	g := build([]string{"a", "b", "c", "d"}, [][2]string{{"a", "b"}, {"b", "c"}, {"a", "c"}, {"d", "c"}})

	AssignLayers(g)

	want := map[string]int{"a": 0, "b": 1, "c": 2, "d": 0}
	for id, row := range want {
		n, _ := g.Node(id)
		if n.Row != row {
			t.Errorf("row(%s) = %d, want %d", id, n.Row, row)
		}
	}
}

func TestPipelineValidates(t *testing.T) {
	g := build(
		[]string{"f1", "c1", "m1", "m2", "fn1"},
		[][2]string{{"f1", "c1"}, {"c1", "m1"}, {"c1", "m2"}, {"m2", "m1"}, {"m1", "c1"}, {"f1", "fn1"}, {"fn1", "m1"}},
	)

	BreakCycles(g)
	AssignLayers(g)
	Subdivide(g)

	if err := g.Validate(); err != nil {
		t.Errorf("Validate() after transforms = %v", err)
	}
}

func TestSubdivide(t *testing.T) {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "a", Row: 0})
	_ = g.AddNode(dag.Node{ID: "b", Row: 1})
	_ = g.AddNode(dag.Node{ID: "c", Row: 3})
	_ = g.AddEdge(dag.Edge{From: "a", To: "b", Meta: dag.Metadata{"id": "e0"}})
	_ = g.AddEdge(dag.Edge{From: "a", To: "c", Meta: dag.Metadata{"id": "e1"}})

	Subdivide(g)

	if g.NodeCount() != 5 {
		t.Fatalf("NodeCount() = %d, want 5", g.NodeCount())
	}
	v1, ok := g.Node("e1~1")
	if !ok || !v1.IsVirtual() || v1.Row != 1 || v1.MasterID != "e1" {
		t.Errorf("virtual node e1~1 = %+v, %v", v1, ok)
	}
	if _, ok := g.Node("e1~2"); !ok {
		t.Error("virtual node e1~2 missing")
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}

	var chain []string
	for _, e := range g.Edges() {
		if e.To == "c" {
			chain, _ = e.Meta[MetaChain].([]string)
		}
	}
	if len(chain) != 2 || chain[0] != "e1~1" || chain[1] != "e1~2" {
		t.Errorf("chain = %v, want [e1~1 e1~2]", chain)
	}
}

func TestSubdivideUniqueIDs(t *testing.T) {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "a", Row: 0})
	_ = g.AddNode(dag.Node{ID: "e0~1", Row: 1})
	_ = g.AddNode(dag.Node{ID: "c", Row: 2})
	_ = g.AddEdge(dag.Edge{From: "a", To: "c", Meta: dag.Metadata{"id": "e0"}})

	Subdivide(g)

	if _, ok := g.Node("e0~1__1"); !ok {
		t.Errorf("expected suffixed virtual id, nodes = %v", dag.NodeIDs(g.Nodes()))
	}
}
