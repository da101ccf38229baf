package sink

import (
	"math"

	"github.com/Sohailsaifi/CodeFlow/pkg/style"
)

// Legend panel metrics.
const (
	legendTitle  = "Graph Legend"
	legendWidth  = 220.0
	legendRow    = 22.0
	legendHeader = 34.0
	legendMargin = 20.0
	legendSwatch = 16.0
	legendLine   = 32.0
	cornerRadius = 8.0
	arrowSize    = 10.0
)

// panel is the legend box, placed to the right of the drawing.
type panel struct {
	x, y, w, h float64
	entries    []style.LegendEntry
}

func legendPanel(drawingW float64) panel {
	entries := style.Legend()
	return panel{
		x:       drawingW,
		y:       legendMargin,
		w:       legendWidth,
		h:       legendHeader + float64(len(entries))*legendRow + legendMargin/2,
		entries: entries,
	}
}

// rowY returns the vertical center of the i-th legend row.
func (p panel) rowY(i int) float64 {
	return p.y + legendHeader + float64(i)*legendRow + legendRow/2
}

// canvasSize returns the full drawing size, widened for the legend.
func canvasSize(w, h float64, legend bool) (float64, float64) {
	if !legend {
		return math.Ceil(w), math.Ceil(h)
	}
	p := legendPanel(w)
	return math.Ceil(w + p.w + legendMargin), math.Ceil(math.Max(h, p.y+p.h+legendMargin))
}

// arrowHead returns the two back corners of an arrow ending at (x2, y2)
// coming from (x1, y1).
func arrowHead(x1, y1, x2, y2 float64) (ax, ay, bx, by float64) {
	angle := math.Atan2(y2-y1, x2-x1)
	const spread = math.Pi / 7
	ax = x2 - arrowSize*math.Cos(angle-spread)
	ay = y2 - arrowSize*math.Sin(angle-spread)
	bx = x2 - arrowSize*math.Cos(angle+spread)
	by = y2 - arrowSize*math.Sin(angle+spread)
	return ax, ay, bx, by
}
