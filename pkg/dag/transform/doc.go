// Package transform prepares a [dag.DAG] for layered drawing.
//
// The layout engine runs three passes in order:
//
//	transform.BreakCycles(g)  // reverse back edges; call graphs recurse
//	transform.AssignLayers(g) // longest-path rows
//	transform.Subdivide(g)    // virtual nodes so every edge spans one row
//
// After the three passes, g.Validate() returns nil.
//
// # Cycle Breaking
//
// Code graphs are rarely acyclic: mutual recursion and circular imports are
// common. [BreakCycles] reverses (rather than removes) back edges so the
// relationship still influences ranking, and marks them with [MetaReversed].
//
// # Subdivision
//
// [Subdivide] inserts one virtual node per intermediate row. The final edge
// of each chain carries [MetaChain], the ordered virtual node IDs, which the
// layout engine uses as bend points when routing.
//
// [dag.DAG]: github.com/Sohailsaifi/CodeFlow/pkg/dag.DAG
package transform
