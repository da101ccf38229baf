// Package style resolves the visual encoding of a code graph: fill, border
// and shape of every node and line style of every edge, derived from node
// type and quality metrics.
//
// Encoding is a pure function of data. The same node always resolves to the
// same style, so renderers and the legend can share one source of truth:
//
//	sheet := style.ResolveAll(g)
//	ns := sheet.Nodes["fn1"] // fill from the complexity band
//
// Three signals compose independently on method and function nodes:
//
//   - complexity band: fill color (simple green, moderate yellow, complex red)
//   - code smells: thick border in the alert color
//   - dead code: dashed border
package style

import "github.com/Sohailsaifi/CodeFlow/pkg/analysis"

// Shape is the outline a node is drawn with.
type Shape string

const (
	ShapeRoundRect Shape = "round-rectangle"
	ShapeRect      Shape = "rectangle"
	ShapeEllipse   Shape = "ellipse"
)

// Line is a stroke pattern for borders and edges.
type Line string

const (
	LineSolid  Line = "solid"
	LineDashed Line = "dashed"
)

// Dash returns the SVG stroke-dasharray for the pattern, or "" when solid.
func (l Line) Dash() string {
	if l == LineDashed {
		return "6,4"
	}
	return ""
}

// NodeStyle is the resolved appearance of one node.
type NodeStyle struct {
	Shape       Shape   `json:"shape"`
	Fill        string  `json:"fill"`
	BorderColor string  `json:"border_color"`
	BorderWidth float64 `json:"border_width"`
	BorderLine  Line    `json:"border_line"`
	Opacity     float64 `json:"opacity"`
	TextColor   string  `json:"text_color"`
	FontSize    float64 `json:"font_size"`
	Bold        bool    `json:"bold,omitempty"`
	Band        Band    `json:"band,omitempty"`

	// Width and Height are the box size; Lines is the wrapped label.
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
	Lines  []string `json:"lines"`
}

// EdgeStyle is the resolved appearance of one edge.
type EdgeStyle struct {
	Color   string  `json:"color"`
	Width   float64 `json:"width"`
	Line    Line    `json:"line"`
	Opacity float64 `json:"opacity"`
}

// Palette. Type colors follow the CodeFlow web viewer.
const (
	ColorClass      = "#2563eb"
	ColorClassEdge  = "#1d4ed8"
	ColorMethod     = "#6366f1"
	ColorMethodEdge = "#4f46e5"
	ColorFunction   = "#8b5cf6"
	ColorFuncEdge   = "#7c3aed"
	ColorFile       = "#3b82f6"
	ColorFileEdge   = "#2563eb"
	ColorBuiltin    = "#9ca3af"
	ColorBuiltinRim = "#6b7280"
	ColorDefault    = "#64748b"
	ColorDefaultRim = "#475569"

	ColorSimple   = "#22c55e"
	ColorModerate = "#eab308"
	ColorComplex  = "#ef4444"
	ColorAlert    = "#dc2626"

	ColorContains = "#94a3b8"
	ColorCalls    = "#6366f1"
	ColorImport   = "#10b981"

	ColorText = "#ffffff"
)

// Border widths and opacities.
const (
	BorderNormal = 2.0
	BorderThick  = 5.0

	OpacityFull    = 1.0
	OpacityBuiltin = 0.45

	EdgeWidthDefault  = 2.0
	EdgeWidthContains = 3.0
)

// IsBuiltin reports whether nodes of type t represent language builtins.
func IsBuiltin(t analysis.NodeType) bool { return t == analysis.NodeBuiltin }
