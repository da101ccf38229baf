// Package pkg holds the libraries behind CodeFlow, a presentation engine for
// static code-structure analyses.
//
// # Overview
//
// An analysis backend reports the files, classes, methods and functions of a
// code base together with the contains, calls and import relationships
// between them. CodeFlow turns such a result into a layered, styled graph:
//
//	analysis result (JSON)
//	         ↓
//	    [graph] Normalize: validate ids, synthesize edge ids
//	         ↓
//	    [style] resolve fill, border and opacity per node and edge
//	         ↓
//	    [layout] top-to-bottom layered placement (grid on failure)
//	         ↓
//	    [render/sink] SVG, PNG, JSON  ·  [render/nodelink] DOT
//
// [pipeline] runs these stages with caching. [shell] owns the current model
// and replaces it atomically; [interaction] tracks hover inspection, the
// detail overlay, legend visibility and export. [server] exposes the model
// over HTTP and [integrations] talks to the upload and export services.
//
// # Quick Start
//
//	raw, _ := analysis.ReadFile("analysis.json")
//	g, err := graph.Normalize(raw)
//	if err != nil {
//	    var mg *graph.MalformedGraphError
//	    if errors.As(err, &mg) {
//	        log.Fatalf("rejected: %v", mg.IDs())
//	    }
//	}
//	l, _ := layout.Run(ctx, g, layout.Options{})
//	svg := sink.RenderSVG(render.NewScene(g, l), sink.WithLegend())
//
// # Main Packages
//
//   - [analysis]: the backend's result format and metric details
//   - [graph]: canonical graph, normalization, layout types
//   - [style]: visual encoding and legend
//   - [layout]: layout engines, adapter and recursive groups
//   - [dag], [dot]: layering algorithms and the Graphviz bridge
//   - [render]: scenes, formats and output sinks
//   - [pipeline]: cached normalize, layout and render runs
//   - [shell], [interaction]: model ownership and pointer interaction
//   - [integrations], [server]: HTTP collaborators
//   - [cache], [config], [watch], [observability], [errors]: support
package pkg
