// Package interaction drives the affordances of a displayed code graph:
// hover inspection, the legend and export.
//
// A [Controller] is a small state machine over a read-only view of the
// current graph and its layout:
//
//	Idle ──Enter(n)──▶ Inspecting(n) ──Leave(n)──▶ Idle
//	                   Inspecting(a) ──Enter(b)──▶ Inspecting(b)
//
// At most one [Overlay] exists at any time. Entering a second node replaces
// the first overlay; leaving a node that is not the inspected one is
// ignored, so fast pointer movement never strands a popup.
//
// The controller never mutates the graph and never triggers a layout. The
// presentation shell owns the model and calls [Controller.Teardown] and
// [Controller.Attach] when it replaces it.
//
// # Export
//
// [Controller.Export] fetches a rendering through an [Exporter] (normally
// the export collaborator client) and saves it as code_analysis.{format}.
// The file appears atomically or not at all; a failure surfaces as an
// [*ExportError].
package interaction
