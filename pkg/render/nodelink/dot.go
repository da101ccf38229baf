package nodelink

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/Sohailsaifi/CodeFlow/pkg/dot"
	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
	"github.com/Sohailsaifi/CodeFlow/pkg/layout"
	"github.com/Sohailsaifi/CodeFlow/pkg/style"
)

// Options configures DOT generation. Zero spacings use the layout defaults.
type Options struct {
	RankSep float64
	NodeSep float64
}

// ToDOT converts g to styled Graphviz DOT source.
func ToDOT(g *graph.Graph, opts Options) string {
	p := layout.Params{RankSep: opts.RankSep, NodeSep: opts.NodeSep}.WithDefaults()
	return dot.Build(g, style.ResolveAll(g), dot.Options{
		RankSep: p.RankSep,
		NodeSep: p.NodeSep,
		Styled:  true,
	})
}

// RenderSVG lays out and draws DOT source with Graphviz.
func RenderSVG(ctx context.Context, src string) ([]byte, error) {
	out, err := dot.Run(ctx, src, graphviz.SVG)
	if err != nil {
		return nil, fmt.Errorf("graphviz svg: %w", err)
	}
	return normalizeViewBox(out), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a
// pixel-sized one so the drawing scales like the built-in SVG sink.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
