// Package nodelink renders code graphs with Graphviz instead of the built-in
// drawing code.
//
// [ToDOT] emits styled DOT source (the same fills, borders and edge colors
// the SVG and PNG sinks use), which can be saved for external Graphviz
// tooling or rendered in-process:
//
//	src := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, src)
//
// Rendering uses [github.com/goccy/go-graphviz], which runs Graphviz as
// WebAssembly and needs no system installation.
package nodelink
