// Package dag provides a directed graph organized into rows, the working
// structure of CodeFlow's layered layout.
//
// # Overview
//
// A layered drawing places every node on a horizontal row so that edges
// point downward. This package holds the nodes, edges and row index that the
// [transform] passes and the layout engine operate on. Every listing follows
// insertion order, which keeps layouts deterministic for a given input.
//
// # Basic Usage
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "a.py", Row: 0})
//	g.AddNode(dag.Node{ID: "main", Row: 1})
//	g.AddEdge(dag.Edge{From: "a.py", To: "main"})
//
// Query the structure with [DAG.Children], [DAG.Parents], [DAG.NodesInRow]
// and related methods. [DAG.Validate] verifies that every edge spans exactly
// one row and that no cycle remains.
//
// # Node Kinds
//
//   - [NodeKindRegular]: a code element from the canonical graph
//   - [NodeKindVirtual]: a bend point splitting an edge that spans several rows
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] use a Fenwick tree to count
// inversions in O(E log V), cheap enough to evaluate every ordering sweep.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. The layout engine clones
// the graph per run, so concurrent layouts never share a DAG.
//
// [transform]: github.com/Sohailsaifi/CodeFlow/pkg/dag/transform
package dag
