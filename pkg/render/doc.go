// Package render turns a positioned code graph into output artifacts.
//
// # Overview
//
// A [Scene] bundles everything a renderer needs: the canonical graph, its
// resolved style sheet and its layout. Renderers never modify any of them.
//
//	scene := render.NewScene(g, l)
//	svg := sink.RenderSVG(scene, sink.WithLegend(), sink.WithPopups())
//	png, err := sink.RenderPNG(scene, sink.WithScale(2))
//
// # Formats
//
//   - svg: native drawing with hover popups and the legend ([sink])
//   - png: raster drawing of the same scene ([sink])
//   - json: the canonical graph, the payload of the json export ([sink])
//   - dot: Graphviz source, and Graphviz's own SVG ([nodelink])
//
// [sink]: github.com/Sohailsaifi/CodeFlow/pkg/render/sink
// [nodelink]: github.com/Sohailsaifi/CodeFlow/pkg/render/nodelink
package render
