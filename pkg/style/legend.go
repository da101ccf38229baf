package style

import (
	"github.com/Sohailsaifi/CodeFlow/pkg/analysis"
	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
)

// LegendKind tells a renderer how to draw a legend swatch.
type LegendKind string

const (
	LegendNode LegendKind = "node"
	LegendEdge LegendKind = "edge"
)

// LegendEntry is one row of the legend.
type LegendEntry struct {
	Kind  LegendKind `json:"kind"`
	Label string     `json:"label"`
	Node  NodeStyle  `json:"node,omitempty"`
	Edge  EdgeStyle  `json:"edge,omitempty"`
}

// Legend returns the legend entries, derived from the same rules that style
// the graph.
func Legend() []LegendEntry {
	node := func(label string, t analysis.NodeType, md *analysis.Metadata) LegendEntry {
		s := ResolveNode(graph.Node{ID: label, Type: t, Metadata: md})
		return LegendEntry{Kind: LegendNode, Label: label, Node: s}
	}
	edge := func(label string, t analysis.EdgeType) LegendEntry {
		return LegendEntry{Kind: LegendEdge, Label: label, Edge: ResolveEdge(graph.Edge{Type: t}, nil, nil)}
	}

	return []LegendEntry{
		node("File", analysis.NodeFile, nil),
		node("Class", analysis.NodeClass, nil),
		node("Method", analysis.NodeMethod, nil),
		node("Function", analysis.NodeFunction, nil),
		node("Builtin", analysis.NodeBuiltin, nil),
		node("Simple (≤5)", analysis.NodeFunction, &analysis.Metadata{Complexity: analysis.Int(SimpleMax)}),
		node("Moderate (6-10)", analysis.NodeFunction, &analysis.Metadata{Complexity: analysis.Int(ModerateMax)}),
		node("Complex (>10)", analysis.NodeFunction, &analysis.Metadata{Complexity: analysis.Int(ModerateMax + 1)}),
		node("Code smells", analysis.NodeFunction, &analysis.Metadata{CodeSmells: []string{"smell"}}),
		node("Dead code", analysis.NodeFunction, &analysis.Metadata{IsDeadCode: analysis.Bool(true)}),
		edge("Contains", analysis.EdgeContains),
		edge("Calls", analysis.EdgeCalls),
		edge("Imports", analysis.EdgeImport),
	}
}
