// Package graph provides the canonical presentation model for code-structure
// graphs and the serialization of positioned layouts.
//
// # Normalization
//
// [Normalize] turns a raw [analysis.Result] into a [Graph]. It is the single
// gate between collaborator data and the rest of CodeFlow: a result with
// duplicate node ids or edges whose endpoints do not resolve is rejected
// with a [*MalformedGraphError] naming every offending id, and no partial
// graph is produced.
//
//	g, err := graph.Normalize(res)
//	var bad *graph.MalformedGraphError
//	if errors.As(err, &bad) {
//	    fmt.Println(bad.IDs())
//	}
//
// Node order is input order and edges receive ids e0..e{n-1}. Normalize is
// pure and idempotent:
//
//	graph.Normalize(graph.Denormalize(g)) // equals g
//
// # Serialization
//
// The JSON form of [Graph] is the "json" export payload:
//
//	{
//	  "nodes": [{"id": "f1", "label": "a.py", "type": "file"}],
//	  "edges": [{"id": "e0", "source": "f1", "target": "fn1", "type": "contains"}]
//	}
//
// [UnmarshalGraph] and [ReadGraphFile] re-normalize what they read.
//
// # Layout Serialization
//
// [Layout] carries positioned nodes (box centers and sizes), routed edges,
// rank membership, and recursive groups. See pkg/layout for how layouts are
// computed.
package graph
