package dag_test

import (
	"fmt"

	"github.com/Sohailsaifi/CodeFlow/pkg/dag"
)

func ExampleDAG_traversal() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "a.py", Row: 0})
	_ = g.AddNode(dag.Node{ID: "Parser", Row: 1})
	_ = g.AddNode(dag.Node{ID: "main", Row: 1})
	_ = g.AddEdge(dag.Edge{From: "a.py", To: "Parser"})
	_ = g.AddEdge(dag.Edge{From: "a.py", To: "main"})

	fmt.Println("Children of a.py:", g.Children("a.py"))
	fmt.Println("Parents of main:", g.Parents("main"))
	fmt.Println("Rows:", g.RowIDs())
	// Output:
	// Children of a.py: [Parser main]
	// Parents of main: [a.py]
	// Rows: [0 1]
}

func ExampleCountLayerCrossings() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "a", Row: 0})
	_ = g.AddNode(dag.Node{ID: "b", Row: 0})
	_ = g.AddNode(dag.Node{ID: "x", Row: 1})
	_ = g.AddNode(dag.Node{ID: "y", Row: 1})
	_ = g.AddEdge(dag.Edge{From: "a", To: "y"})
	_ = g.AddEdge(dag.Edge{From: "b", To: "x"})

	fmt.Println("Crossings:", dag.CountLayerCrossings(g, []string{"a", "b"}, []string{"x", "y"}))
	fmt.Println("After reorder:", dag.CountLayerCrossings(g, []string{"b", "a"}, []string{"x", "y"}))
	// Output:
	// Crossings: 1
	// After reorder: 0
}
