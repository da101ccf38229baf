package sink

import (
	"bytes"
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"sync"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
	"github.com/Sohailsaifi/CodeFlow/pkg/render"
	"github.com/Sohailsaifi/CodeFlow/pkg/style"
)

// DefaultScale renders PNGs at twice the layout resolution.
const DefaultScale = 2.0

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	legend bool
	scale  float64
}

// WithPNGLegend draws the legend panel right of the graph.
func WithPNGLegend() PNGOption { return func(r *pngRenderer) { r.legend = true } }

// WithScale sets the pixel density (default [DefaultScale]). Values <= 0
// are ignored.
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// RenderPNG rasterizes the scene. The drawing matches [RenderSVG] without
// popups.
func RenderPNG(s render.Scene, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: DefaultScale}
	for _, opt := range opts {
		opt(&r)
	}

	l := s.Layout
	w, h := canvasSize(l.Width, l.Height, r.legend)
	dc := gg.NewContext(max(1, int(w*r.scale)), max(1, int(h*r.scale)))
	dc.Scale(r.scale, r.scale)
	dc.SetColor(mustColor(colorBackdrop, 1))
	dc.Clear()

	for _, e := range l.Edges {
		drawEdgePNG(dc, e, s.Sheet.Edge(e.ID))
	}
	for _, n := range l.Nodes {
		drawNodePNG(dc, n, s.Sheet.Node(n.ID))
	}
	if r.legend {
		drawLegendPNG(dc, legendPanel(l.Width))
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawEdgePNG(dc *gg.Context, e graph.RoutedEdge, es style.EdgeStyle) {
	if len(e.Points) < 2 {
		return
	}
	c := mustColor(es.Color, es.Opacity)
	dc.SetColor(c)
	dc.SetLineWidth(es.Width)
	setDash(dc, es.Line)
	dc.NewSubPath()
	dc.MoveTo(e.Points[0].X, e.Points[0].Y)
	for _, p := range e.Points[1:] {
		dc.LineTo(p.X, p.Y)
	}
	dc.Stroke()
	dc.SetDash()

	a, b := e.Points[len(e.Points)-2], e.Points[len(e.Points)-1]
	ax, ay, bx, by := arrowHead(a.X, a.Y, b.X, b.Y)
	dc.NewSubPath()
	dc.MoveTo(b.X, b.Y)
	dc.LineTo(ax, ay)
	dc.LineTo(bx, by)
	dc.ClosePath()
	dc.Fill()
}

func drawNodePNG(dc *gg.Context, n graph.PlacedNode, ns style.NodeStyle) {
	shape := func() {
		switch ns.Shape {
		case style.ShapeEllipse:
			dc.DrawEllipse(n.X, n.Y, n.Width/2, n.Height/2)
		case style.ShapeRect:
			dc.DrawRectangle(n.Left(), n.Top(), n.Width, n.Height)
		default:
			dc.DrawRoundedRectangle(n.Left(), n.Top(), n.Width, n.Height, cornerRadius)
		}
	}

	dc.SetColor(mustColor(ns.Fill, ns.Opacity))
	shape()
	dc.Fill()

	dc.SetColor(mustColor(ns.BorderColor, ns.Opacity))
	dc.SetLineWidth(ns.BorderWidth)
	setDash(dc, ns.BorderLine)
	shape()
	dc.Stroke()
	dc.SetDash()

	dc.SetFontFace(face(ns.FontSize, ns.Bold))
	dc.SetColor(mustColor(ns.TextColor, ns.Opacity))
	lh := ns.FontSize * style.LineHeight
	top := n.Y - lh*float64(len(ns.Lines))/2
	for i, line := range ns.Lines {
		dc.DrawStringAnchored(line, n.X, top+lh*float64(i)+lh/2, 0.5, 0.35)
	}
}

func drawLegendPNG(dc *gg.Context, p panel) {
	dc.SetColor(mustColor(colorPanel, 1))
	dc.DrawRoundedRectangle(p.x, p.y, p.w, p.h, cornerRadius)
	dc.Fill()
	dc.SetColor(mustColor(colorPanelRim, 1))
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(p.x, p.y, p.w, p.h, cornerRadius)
	dc.Stroke()

	dc.SetFontFace(face(14, true))
	dc.SetColor(mustColor(colorInk, 1))
	dc.DrawStringAnchored(legendTitle, p.x+12, p.y+18, 0, 0.5)

	dc.SetFontFace(face(12, false))
	for i, e := range p.entries {
		y := p.rowY(i)
		x := p.x + 12
		switch e.Kind {
		case style.LegendNode:
			if e.Node.Shape == style.ShapeEllipse {
				dc.DrawEllipse(x+legendSwatch/2, y, legendSwatch/2, legendSwatch/2-2)
			} else {
				dc.DrawRoundedRectangle(x, y-legendSwatch/2, legendSwatch, legendSwatch, 3)
			}
			dc.SetColor(mustColor(e.Node.Fill, e.Node.Opacity))
			dc.FillPreserve()
			dc.SetColor(mustColor(e.Node.BorderColor, e.Node.Opacity))
			dc.SetLineWidth(min(e.Node.BorderWidth, 3))
			if e.Node.BorderLine == style.LineDashed {
				dc.SetDash(3, 2)
			}
			dc.Stroke()
			dc.SetDash()
		case style.LegendEdge:
			dc.SetColor(mustColor(e.Edge.Color, 1))
			dc.SetLineWidth(e.Edge.Width)
			setDash(dc, e.Edge.Line)
			dc.DrawLine(x, y, x+legendLine, y)
			dc.Stroke()
			dc.SetDash()
		}
		dc.SetColor(mustColor(colorSubtle, 1))
		dc.DrawStringAnchored(e.Label, x+legendLine+8, y, 0, 0.35)
	}
}

func setDash(dc *gg.Context, l style.Line) {
	dash := l.Dash()
	if dash == "" {
		dc.SetDash()
		return
	}
	var pattern []float64
	for _, part := range strings.Split(dash, ",") {
		if v, err := strconv.ParseFloat(strings.TrimSpace(part), 64); err == nil {
			pattern = append(pattern, v)
		}
	}
	dc.SetDash(pattern...)
}

// =============================================================================
// Fonts and Colors
// =============================================================================

type faceKey struct {
	size float64
	bold bool
}

var (
	facesMu sync.Mutex
	faces   = map[faceKey]font.Face{}
)

// face returns a Go font face of the given size, falling back to the fixed
// bitmap face if the embedded font cannot be parsed.
func face(size float64, bold bool) font.Face {
	facesMu.Lock()
	defer facesMu.Unlock()

	key := faceKey{size, bold}
	if f, ok := faces[key]; ok {
		return f
	}
	ttf := goregular.TTF
	if bold {
		ttf = gobold.TTF
	}
	var f font.Face = basicfont.Face7x13
	if parsed, err := opentype.Parse(ttf); err == nil {
		if of, err := opentype.NewFace(parsed, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull}); err == nil {
			f = of
		}
	}
	faces[key] = f
	return f
}

// mustColor parses a #rrggbb color and applies the opacity. Unparsable
// colors render black.
func mustColor(hex string, opacity float64) color.NRGBA {
	c, err := parseHex(hex)
	if err != nil {
		c = color.NRGBA{A: 255}
	}
	c.A = uint8(float64(c.A)*clamp01(opacity) + 0.5)
	return c
}

func parseHex(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

func clamp01(f float64) float64 {
	return min(1, max(0, f))
}
