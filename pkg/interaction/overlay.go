package interaction

import (
	"github.com/Sohailsaifi/CodeFlow/pkg/analysis"
	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
)

// Overlay geometry.
const (
	overlayGap    = 12.0
	overlayWidth  = 280.0
	overlayHeader = 46.0
	overlayRow    = 18.0
	overlayRows   = 7
)

// OverlaySize is the box an overlay occupies, used to keep it on screen.
type OverlaySize struct {
	Width, Height float64
}

// DefaultOverlaySize fits the seven metric rows of a detail card.
func DefaultOverlaySize() OverlaySize {
	return OverlaySize{Width: overlayWidth, Height: overlayHeader + overlayRows*overlayRow}
}

// Overlay is the detail card of an inspected node. X and Y are the top-left
// corner in layout coordinates.
type Overlay struct {
	NodeID  string            `json:"node_id"`
	Label   string            `json:"label"`
	Type    analysis.NodeType `json:"type"`
	X       float64           `json:"x"`
	Y       float64           `json:"y"`
	Width   float64           `json:"width"`
	Height  float64           `json:"height"`
	Details []analysis.Detail `json:"details"`
}

func (c *Controller) buildOverlayLocked(nodeID string) (Overlay, bool) {
	n, ok := c.graph.Node(nodeID)
	if !ok {
		return Overlay{}, false
	}
	ov := Overlay{
		NodeID:  n.ID,
		Label:   n.DisplayLabel(),
		Type:    n.Type,
		Width:   c.size.Width,
		Height:  c.size.Height,
		Details: analysis.Details(n.Metadata),
	}
	if placed, ok := c.layout.Node(nodeID); ok {
		ov.X, ov.Y = Anchor(placed, c.size, c.layout.Width, c.layout.Height)
	}
	return ov, true
}

// Anchor places an overlay of size s beside node n inside a w×h drawing:
// right of the box, flipped to the left when it would overflow, then
// clamped to the bounds.
func Anchor(n graph.PlacedNode, s OverlaySize, w, h float64) (x, y float64) {
	x = n.Left() + n.Width + overlayGap
	if x+s.Width > w {
		x = n.Left() - overlayGap - s.Width
	}
	y = n.Y - s.Height/2
	return clamp(x, 0, w-s.Width), clamp(y, 0, h-s.Height)
}

// clamp bounds v to [lo, hi], preferring lo when the range is empty.
func clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
