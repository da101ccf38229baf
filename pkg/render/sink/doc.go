// Package sink writes a [render.Scene] as SVG, PNG or JSON.
//
// SVG and PNG share geometry: the same node boxes, edge polylines and
// legend panel, so an exported PNG matches the SVG a browser shows. The
// SVG additionally carries hover popups with node metrics when
// [WithPopups] is set.
//
// [render.Scene]: github.com/Sohailsaifi/CodeFlow/pkg/render.Scene
package sink
