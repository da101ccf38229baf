// Package layout positions a code graph in layers, top to bottom.
//
// # Engines
//
// Two engines implement [Engine]:
//
//   - "layered" (default): a native Sugiyama pipeline over [dag.DAG]. Back
//     edges are reversed, nodes ranked by longest path, long edges split
//     into virtual nodes, rows ordered by barycenter sweeps, and boxes
//     placed with per-node widths.
//   - "graphviz": the same graph handed to Graphviz dot in-process; node
//     positions and edge splines are read back from the laid-out DOT.
//
// Both are deterministic: the same graph and [Params] give the same
// coordinates.
//
// # Failure
//
// A layout never fails the caller. When an engine errors, times out or
// returns something unusable, [Run] returns a grid placement in input order
// with Positioned set to false and Failure describing what went wrong.
//
// # Adapter
//
// [Adapter] keeps the layout consistent with a changing model. Requests
// carry the model version: the same version is answered from memory, an
// older version is rejected as stale, and requests made before the drawing
// surface is mounted are queued, the latest one running on [Adapter.Mount].
//
// [dag.DAG]: github.com/Sohailsaifi/CodeFlow/pkg/dag.DAG
package layout
