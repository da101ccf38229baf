// Package dot writes code graphs as Graphviz DOT, runs Graphviz in-process
// and reads laid-out DOT back.
//
// Two consumers share it: the graphviz layout engine, which needs node
// positions and edge splines from Graphviz, and the node-link renderer,
// which needs Graphviz's own SVG.
//
//	src := dot.Build(g, sheet, dot.Options{RankSep: 100, NodeSep: 50})
//	out, err := dot.Run(ctx, src, graphviz.XDOT)
//	doc, err := dot.Parse(out)
//
// Node statements use positional ids (n0, n1, ...) so arbitrary code
// identifiers never need escaping; the original id travels in the "id"
// attribute.
package dot
