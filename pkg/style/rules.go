package style

import (
	"github.com/Sohailsaifi/CodeFlow/pkg/analysis"
	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
)

// Band is a complexity bucket.
type Band string

const (
	BandNone     Band = ""
	BandSimple   Band = "simple"
	BandModerate Band = "moderate"
	BandComplex  Band = "complex"
)

// Band thresholds. Each bound belongs to the lower band: 5 is simple, 10 is
// moderate.
const (
	SimpleMax   = 5
	ModerateMax = 10
)

// ComplexityBand buckets a cyclomatic complexity value.
func ComplexityBand(c int) Band {
	switch {
	case c <= SimpleMax:
		return BandSimple
	case c <= ModerateMax:
		return BandModerate
	default:
		return BandComplex
	}
}

// BandOf returns the band of a node's metadata, or BandNone when the
// complexity was not reported.
func BandOf(md *analysis.Metadata) Band {
	if md == nil || md.Complexity == nil {
		return BandNone
	}
	return ComplexityBand(*md.Complexity)
}

// =============================================================================
// Rule Table
// =============================================================================

type typeRule struct {
	shape  Shape
	fill   string
	border string
	bold   bool
	fixed  bool // fixed box size instead of label measurement
	width  float64
	height float64
}

var nodeRules = map[analysis.NodeType]typeRule{
	analysis.NodeFile:     {shape: ShapeRect, fill: ColorFile, border: ColorFileEdge, fixed: true, width: 200, height: 50},
	analysis.NodeClass:    {shape: ShapeRoundRect, fill: ColorClass, border: ColorClassEdge, bold: true, fixed: true, width: 220, height: 50},
	analysis.NodeMethod:   {shape: ShapeRoundRect, fill: ColorMethod, border: ColorMethodEdge},
	analysis.NodeFunction: {shape: ShapeRoundRect, fill: ColorFunction, border: ColorFuncEdge},
	analysis.NodeBuiltin:  {shape: ShapeEllipse, fill: ColorBuiltin, border: ColorBuiltinRim},
}

var defaultRule = typeRule{shape: ShapeRoundRect, fill: ColorDefault, border: ColorDefaultRim}

var bandFills = map[Band]string{
	BandSimple:   ColorSimple,
	BandModerate: ColorModerate,
	BandComplex:  ColorComplex,
}

var edgeRules = map[analysis.EdgeType]EdgeStyle{
	analysis.EdgeContains: {Color: ColorContains, Width: EdgeWidthContains, Line: LineSolid},
	analysis.EdgeCalls:    {Color: ColorCalls, Width: EdgeWidthDefault, Line: LineSolid},
	analysis.EdgeImport:   {Color: ColorImport, Width: EdgeWidthDefault, Line: LineDashed},
}

var defaultEdge = EdgeStyle{Color: ColorContains, Width: EdgeWidthDefault, Line: LineSolid}

func ruleFor(t analysis.NodeType) typeRule {
	if r, ok := nodeRules[t]; ok {
		return r
	}
	return defaultRule
}

// =============================================================================
// Resolution
// =============================================================================

// ResolveNode returns the style of a single node.
func ResolveNode(n graph.Node) NodeStyle {
	r := ruleFor(n.Type)
	s := NodeStyle{
		Shape:       r.shape,
		Fill:        r.fill,
		BorderColor: r.border,
		BorderWidth: BorderNormal,
		BorderLine:  LineSolid,
		Opacity:     OpacityFull,
		TextColor:   ColorText,
		FontSize:    FontSize,
		Bold:        r.bold,
	}
	if r.fixed {
		s.FontSize = FontSizeFixed
	}

	if n.Type.HasMetrics() {
		if band := BandOf(n.Metadata); band != BandNone {
			s.Band = band
			s.Fill = bandFills[band]
		}
		if n.Metadata.HasSmells() {
			s.BorderWidth = BorderThick
			s.BorderColor = ColorAlert
		}
		if n.Metadata.DeadCode() {
			s.BorderLine = LineDashed
		}
	}

	if IsBuiltin(n.Type) {
		s.Opacity = OpacityBuiltin
	}

	if r.fixed {
		s.Width, s.Height = r.width, r.height
		s.Lines = []string{fitLine(n.DisplayLabel(), r.width-2*Padding, s.FontSize)}
	} else {
		s.Width, s.Height, s.Lines = Measure(n.DisplayLabel(), s.FontSize)
	}
	return s
}

// ResolveEdge returns the style of an edge. Edges touching a builtin node
// are faded like the node itself; src and dst may be nil when unknown.
func ResolveEdge(e graph.Edge, src, dst *graph.Node) EdgeStyle {
	s, ok := edgeRules[e.Type]
	if !ok {
		s = defaultEdge
	}
	s.Opacity = OpacityFull
	if (src != nil && IsBuiltin(src.Type)) || (dst != nil && IsBuiltin(dst.Type)) {
		s.Opacity = OpacityBuiltin
	}
	return s
}

// Sheet holds the resolved styles of a whole graph, keyed by node and edge id.
type Sheet struct {
	Nodes map[string]NodeStyle `json:"nodes"`
	Edges map[string]EdgeStyle `json:"edges"`
}

// Node returns the style of a node, resolving a default for unknown ids.
func (s *Sheet) Node(id string) NodeStyle {
	if ns, ok := s.Nodes[id]; ok {
		return ns
	}
	return ResolveNode(graph.Node{ID: id})
}

// Edge returns the style of an edge.
func (s *Sheet) Edge(id string) EdgeStyle {
	if es, ok := s.Edges[id]; ok {
		return es
	}
	return defaultEdge
}

// ResolveAll resolves every node and edge of g.
func ResolveAll(g *graph.Graph) *Sheet {
	sheet := &Sheet{
		Nodes: make(map[string]NodeStyle, g.NodeCount()),
		Edges: make(map[string]EdgeStyle, g.EdgeCount()),
	}
	if g == nil {
		return sheet
	}
	for _, n := range g.Nodes {
		sheet.Nodes[n.ID] = ResolveNode(n)
	}
	for _, e := range g.Edges {
		src, _ := g.Node(e.Source)
		dst, _ := g.Node(e.Target)
		sheet.Edges[e.ID] = ResolveEdge(e, src, dst)
	}
	return sheet
}
