package layout

import (
	"fmt"

	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
)

// Default spacing, in pixels.
const (
	DefaultRankSep = 100.0
	DefaultNodeSep = 50.0
	DefaultPadding = 50.0
)

// Params are the spacing parameters of a layout.
type Params struct {
	RankSep float64 // vertical gap between ranks
	NodeSep float64 // horizontal gap between neighbors in a rank
	Padding float64 // margin around the drawing
}

// DefaultParams returns the default spacing.
func DefaultParams() Params {
	return Params{RankSep: DefaultRankSep, NodeSep: DefaultNodeSep, Padding: DefaultPadding}
}

// WithDefaults fills zero fields with defaults.
func (p Params) WithDefaults() Params {
	d := DefaultParams()
	if p.RankSep == 0 {
		p.RankSep = d.RankSep
	}
	if p.NodeSep == 0 {
		p.NodeSep = d.NodeSep
	}
	if p.Padding == 0 {
		p.Padding = d.Padding
	}
	return p
}

// Validate rejects negative spacing.
func (p Params) Validate() error {
	if p.RankSep < 0 || p.NodeSep < 0 || p.Padding < 0 {
		return fmt.Errorf("layout spacing must not be negative: ranksep=%g nodesep=%g padding=%g", p.RankSep, p.NodeSep, p.Padding)
	}
	return nil
}

func (p Params) toGraph() graph.LayoutParams {
	return graph.LayoutParams{RankSep: p.RankSep, NodeSep: p.NodeSep, Padding: p.Padding}
}
