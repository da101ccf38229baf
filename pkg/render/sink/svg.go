package sink

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
	"github.com/Sohailsaifi/CodeFlow/pkg/render"
	"github.com/Sohailsaifi/CodeFlow/pkg/style"
)

const (
	colorBackdrop = "#f9fafb"
	colorPanel    = "#ffffff"
	colorPanelRim = "#e5e7eb"
	colorInk      = "#1f2937"
	colorSubtle   = "#4b5563"
	fontFamily    = "Helvetica,Arial,sans-serif"
)

const nodeInteractionCSS = `
    .node { cursor: pointer; }
    .node .shape { transition: stroke-width 0.2s ease; }
    .node:hover .shape { stroke-width: 6; }
    .edge { pointer-events: none; }
    .popup { pointer-events: none; }
    .legend-toggle { cursor: pointer; }`

const legendToggleJS = `
    const legend = document.getElementById('legend');
    const toggle = document.querySelector('.legend-toggle');
    if (legend && toggle) {
      toggle.addEventListener('click', () => {
        const shown = legend.getAttribute('visibility') !== 'hidden';
        legend.setAttribute('visibility', shown ? 'hidden' : 'visible');
        toggle.querySelector('text').textContent = shown ? 'i' : '✕';
      });
    }`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	legend bool
	popups bool
}

// WithLegend draws the legend panel right of the graph.
func WithLegend() SVGOption { return func(r *svgRenderer) { r.legend = true } }

// WithPopups adds a hidden metrics popup per node, shown on hover, and a
// legend toggle button.
func WithPopups() SVGOption { return func(r *svgRenderer) { r.popups = true } }

// RenderSVG draws the scene as a standalone SVG document.
func RenderSVG(s render.Scene, opts ...SVGOption) []byte {
	var r svgRenderer
	for _, opt := range opts {
		opt(&r)
	}

	l := s.Layout
	w, h := canvasSize(l.Width, l.Height, r.legend)

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Startview(int(w), int(h), 0, 0, int(w), int(h))
	canvas.Rect(0, 0, int(w), int(h), "fill:"+colorBackdrop)

	canvas.Group(`id="edges"`)
	for _, e := range l.Edges {
		drawEdgeSVG(canvas, e, s.Sheet.Edge(e.ID))
	}
	canvas.Gend()

	canvas.Group(`id="nodes"`)
	for _, n := range l.Nodes {
		drawNodeSVG(canvas, s, n)
	}
	canvas.Gend()

	if r.legend {
		drawLegendSVG(canvas, legendPanel(l.Width))
	}

	if r.popups {
		canvas.Style("text/css", nodeInteractionCSS+popupCSS)
		for _, n := range l.Nodes {
			if gn, ok := s.Node(n.ID); ok {
				drawPopupSVG(canvas, gn)
			}
		}
		if r.legend {
			drawLegendToggleSVG(canvas)
		}
		canvas.Script("application/javascript", popupJS+legendToggleJS)
	}

	canvas.End()
	return buf.Bytes()
}

func drawEdgeSVG(canvas *svg.SVG, e graph.RoutedEdge, es style.EdgeStyle) {
	if len(e.Points) < 2 {
		return
	}
	xs, ys := make([]int, len(e.Points)), make([]int, len(e.Points))
	for i, p := range e.Points {
		xs[i], ys[i] = px(p.X), px(p.Y)
	}

	stroke := fmt.Sprintf("fill:none;stroke:%s;stroke-width:%g;opacity:%g", es.Color, es.Width, es.Opacity)
	if dash := es.Line.Dash(); dash != "" {
		stroke += ";stroke-dasharray:" + dash
	}

	canvas.Group(attr("id", "edge-"+e.ID), `class="edge"`, attr("data-source", e.Source), attr("data-target", e.Target))
	canvas.Polyline(xs, ys, stroke)

	a, b := e.Points[len(e.Points)-2], e.Points[len(e.Points)-1]
	ax, ay, bx, by := arrowHead(a.X, a.Y, b.X, b.Y)
	canvas.Polygon(
		[]int{px(b.X), px(ax), px(bx)},
		[]int{px(b.Y), px(ay), px(by)},
		fmt.Sprintf("fill:%s;opacity:%g", es.Color, es.Opacity),
	)
	canvas.Gend()
}

func drawNodeSVG(canvas *svg.SVG, s render.Scene, n graph.PlacedNode) {
	ns := s.Sheet.Node(n.ID)
	typ := ""
	if gn, ok := s.Node(n.ID); ok {
		typ = string(gn.Type)
	}

	attrs := []string{attr("id", "node-"+n.ID), `class="node"`, attr("data-id", n.ID), attr("data-type", typ)}
	if ns.Band != style.BandNone {
		attrs = append(attrs, attr("data-band", string(ns.Band)))
	}
	canvas.Group(attrs...)

	shape := fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%g;opacity:%g", ns.Fill, ns.BorderColor, ns.BorderWidth, ns.Opacity)
	if dash := ns.BorderLine.Dash(); dash != "" {
		shape += ";stroke-dasharray:" + dash
	}
	x, y, w, h := px(n.Left()), px(n.Top()), px(n.Width), px(n.Height)
	switch ns.Shape {
	case style.ShapeEllipse:
		canvas.Ellipse(px(n.X), px(n.Y), w/2, h/2, `class="shape"`, shape)
	case style.ShapeRect:
		canvas.Rect(x, y, w, h, `class="shape"`, shape)
	default:
		canvas.Roundrect(x, y, w, h, int(cornerRadius), int(cornerRadius), `class="shape"`, shape)
	}

	text := fmt.Sprintf("text-anchor:middle;font-family:%s;font-size:%gpx;fill:%s;opacity:%g", fontFamily, ns.FontSize, ns.TextColor, ns.Opacity)
	if ns.Bold {
		text += ";font-weight:bold"
	}
	for i, line := range ns.Lines {
		canvas.Text(px(n.X), px(lineBaseline(n.Y, ns, i)), line, text)
	}
	canvas.Gend()
}

// lineBaseline returns the baseline of the i-th label line, with the block
// of lines centered on cy.
func lineBaseline(cy float64, ns style.NodeStyle, i int) float64 {
	lh := ns.FontSize * style.LineHeight
	top := cy - lh*float64(len(ns.Lines))/2
	return top + lh*float64(i) + lh/2 + ns.FontSize*0.35
}

func drawLegendSVG(canvas *svg.SVG, p panel) {
	canvas.Group(`id="legend"`, `class="legend"`, `visibility="visible"`)
	canvas.Roundrect(px(p.x), px(p.y), px(p.w), px(p.h), int(cornerRadius), int(cornerRadius),
		fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", colorPanel, colorPanelRim))
	canvas.Text(px(p.x+12), px(p.y+22), legendTitle,
		fmt.Sprintf("font-family:%s;font-size:14px;font-weight:bold;fill:%s", fontFamily, colorInk))

	for i, e := range p.entries {
		y := p.rowY(i)
		x := p.x + 12
		switch e.Kind {
		case style.LegendNode:
			st := fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%g;opacity:%g",
				e.Node.Fill, e.Node.BorderColor, math.Min(e.Node.BorderWidth, 3), e.Node.Opacity)
			if dash := e.Node.BorderLine.Dash(); dash != "" {
				st += ";stroke-dasharray:3,2"
			}
			if e.Node.Shape == style.ShapeEllipse {
				canvas.Ellipse(px(x+legendSwatch/2), px(y), px(legendSwatch/2), px(legendSwatch/2-2), st)
			} else {
				canvas.Roundrect(px(x), px(y-legendSwatch/2), px(legendSwatch), px(legendSwatch), 3, 3, st)
			}
		case style.LegendEdge:
			st := fmt.Sprintf("stroke:%s;stroke-width:%g", e.Edge.Color, e.Edge.Width)
			if dash := e.Edge.Line.Dash(); dash != "" {
				st += ";stroke-dasharray:" + dash
			}
			canvas.Line(px(x), px(y), px(x+legendLine), px(y), st)
		}
		canvas.Text(px(x+legendLine+8), px(y+4), e.Label,
			fmt.Sprintf("font-family:%s;font-size:12px;fill:%s", fontFamily, colorSubtle))
	}
	canvas.Gend()
}

func drawLegendToggleSVG(canvas *svg.SVG) {
	canvas.Group(`class="legend-toggle"`)
	canvas.Circle(22, 22, 14, fmt.Sprintf("fill:%s;stroke:%s", colorPanel, colorPanelRim))
	canvas.Text(22, 27, "✕", fmt.Sprintf("text-anchor:middle;font-family:%s;font-size:13px;fill:%s", fontFamily, colorInk))
	canvas.Gend()
}

func px(f float64) int { return int(math.Round(f)) }

// attr formats a raw XML attribute; svgo writes strings containing "="
// verbatim, so values are escaped here.
func attr(key, value string) string {
	return key + `="` + html.EscapeString(strings.ReplaceAll(value, "\n", " ")) + `"`
}
