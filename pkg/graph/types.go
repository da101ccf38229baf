package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/Sohailsaifi/CodeFlow/pkg/analysis"
	"github.com/Sohailsaifi/CodeFlow/pkg/dag"
)

// =============================================================================
// Graph - Canonical Presentation Model
// =============================================================================

// Graph is the canonical node/edge model built from one analysis result.
// It is immutable once built: every new analysis result produces a new
// Graph, and components receive it read-only.
//
// The JSON form is the payload of the "json" export.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	index map[string]int
}

// Node is a code element with its metrics. Metadata is nil for element
// types that carry none (files, classes, builtins).
type Node struct {
	ID       string             `json:"id"`
	Label    string             `json:"label"`
	Type     analysis.NodeType  `json:"type"`
	Metadata *analysis.Metadata `json:"metadata,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a directed relationship with a synthesized id of the form e<index>.
type Edge struct {
	ID     string            `json:"id"`
	Source string            `json:"source"`
	Target string            `json:"target"`
	Type   analysis.EdgeType `json:"type"`
}

// EdgeID returns the canonical id of the i-th edge of an analysis result.
func EdgeID(i int) string { return fmt.Sprintf("e%d", i) }

// =============================================================================
// Read Access
// =============================================================================

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	i, ok := g.Index(id)
	if !ok {
		return nil, false
	}
	return &g.Nodes[i], true
}

// Index returns the input position of the node with the given id.
func (g *Graph) Index(id string) (int, bool) {
	if g == nil {
		return 0, false
	}
	if g.index == nil {
		for i := range g.Nodes {
			if g.Nodes[i].ID == id {
				return i, true
			}
		}
		return 0, false
	}
	i, ok := g.index[id]
	return i, ok
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	if g == nil {
		return 0
	}
	return len(g.Nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	if g == nil {
		return 0
	}
	return len(g.Edges)
}

// Hash returns a hex SHA-256 digest of the canonical JSON form. Equal
// graphs hash equally, which makes it usable as a cache key.
func (g *Graph) Hash() string {
	data, _ := json.Marshal(g)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// =============================================================================
// Conversions
// =============================================================================

// Denormalize converts a Graph back to the analysis result shape. It is the
// inverse of [Normalize]: normalizing the result yields an equal Graph.
func Denormalize(g *Graph) analysis.Result {
	res := analysis.Result{
		Nodes: make([]analysis.NodeRecord, len(g.Nodes)),
		Edges: make([]analysis.EdgeRecord, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		res.Nodes[i] = analysis.NodeRecord{
			ID:       n.ID,
			Label:    n.Label,
			Type:     n.Type,
			Metadata: n.Metadata.Clone(),
		}
	}
	for i, e := range g.Edges {
		res.Edges[i] = analysis.EdgeRecord{Source: e.Source, Target: e.Target, Type: e.Type}
	}
	return res
}

// ToDAG converts the graph into a [dag.DAG] for layering. Nodes keep their
// input order. Self-loops are dropped since they have no effect on ranks;
// edge ids are kept in the edge metadata under "id".
func ToDAG(g *Graph) (*dag.DAG, error) {
	d := dag.New(nil)
	for _, n := range g.Nodes {
		if err := d.AddNode(dag.Node{ID: n.ID, Meta: dag.Metadata{"label": n.DisplayLabel(), "type": string(n.Type)}}); err != nil {
			return nil, fmt.Errorf("add node %s: %w", n.ID, err)
		}
	}
	for _, e := range g.Edges {
		if e.Source == e.Target {
			continue
		}
		if err := d.AddEdge(dag.Edge{From: e.Source, To: e.Target, Meta: dag.Metadata{"id": e.ID, "type": string(e.Type)}}); err != nil {
			return nil, fmt.Errorf("add edge %s: %w", e.ID, err)
		}
	}
	return d, nil
}
