package graph

import (
	"encoding/json"
	"fmt"
	"os"
)

// =============================================================================
// Layout - Positioned Graph
// =============================================================================

// Layout is the serialization format for a positioned graph: the output of
// a layout engine, ready to be drawn by a renderer.
//
// When Positioned is false the coordinates are a best-effort placement
// produced after a layout failure and Failure holds the reason. Renderers
// still draw it; callers surface Failure to the user.
type Layout struct {
	Engine     string       `json:"engine"`
	Positioned bool         `json:"positioned"`
	Failure    string       `json:"failure,omitempty"`
	Params     LayoutParams `json:"params"`

	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Nodes []PlacedNode `json:"nodes"`
	Edges []RoutedEdge `json:"edges"`
	Ranks [][]string   `json:"ranks,omitempty"`

	// Groups lists strongly connected components of size > 1 (mutual
	// recursion, import cycles), in input order of their first member.
	Groups [][]string `json:"groups,omitempty"`

	// DOT is the Graphviz source when the graphviz engine produced the layout.
	DOT string `json:"dot,omitempty"`
}

// LayoutParams are the spacing parameters a layout was computed with.
type LayoutParams struct {
	RankSep float64 `json:"ranksep"`
	NodeSep float64 `json:"nodesep"`
	Padding float64 `json:"padding"`
}

// PlacedNode is a node with its box. X and Y are the box center.
type PlacedNode struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Rank   int     `json:"rank"`
	Order  int     `json:"order"`
}

// Left returns the x coordinate of the box's left side.
func (n PlacedNode) Left() float64 { return n.X - n.Width/2 }

// Top returns the y coordinate of the box's top side.
func (n PlacedNode) Top() float64 { return n.Y - n.Height/2 }

// Contains reports whether the point lies inside the node's box.
func (n PlacedNode) Contains(x, y float64) bool {
	return x >= n.Left() && x <= n.Left()+n.Width && y >= n.Top() && y <= n.Top()+n.Height
}

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RoutedEdge is an edge with its polyline from source boundary to target
// boundary. Reversed marks edges that were flipped to break a cycle; the
// points still run from Source to Target.
type RoutedEdge struct {
	ID       string  `json:"id"`
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Points   []Point `json:"points"`
	Reversed bool    `json:"reversed,omitempty"`
}

// Node returns the placed node with the given id.
func (l *Layout) Node(id string) (PlacedNode, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return PlacedNode{}, false
}

// NodeAt returns the topmost node whose box contains the point. Later nodes
// are drawn over earlier ones, so the search runs backwards.
func (l *Layout) NodeAt(x, y float64) (PlacedNode, bool) {
	for i := len(l.Nodes) - 1; i >= 0; i-- {
		if l.Nodes[i].Contains(x, y) {
			return l.Nodes[i], true
		}
	}
	return PlacedNode{}, false
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Validates that every node has a non-negative box and every edge resolves.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}

	ids := make(map[string]bool, len(l.Nodes))
	for _, n := range l.Nodes {
		if n.Width < 0 || n.Height < 0 {
			return Layout{}, fmt.Errorf("node %s has negative size", n.ID)
		}
		ids[n.ID] = true
	}
	for _, e := range l.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			return Layout{}, fmt.Errorf("edge %s references unknown node", e.ID)
		}
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
