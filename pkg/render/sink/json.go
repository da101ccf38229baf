package sink

import (
	"encoding/json"
	"fmt"

	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
	"github.com/Sohailsaifi/CodeFlow/pkg/render"
	"github.com/Sohailsaifi/CodeFlow/pkg/style"
)

// RenderJSON returns the canonical graph document, the payload of the json
// export.
func RenderJSON(g *graph.Graph) ([]byte, error) {
	return graph.MarshalGraph(g)
}

type sceneOutput struct {
	Graph  *graph.Graph        `json:"graph"`
	Layout graph.Layout        `json:"layout"`
	Styles *style.Sheet        `json:"styles"`
	Legend []style.LegendEntry `json:"legend"`
}

// RenderSceneJSON returns the graph together with its positions, resolved
// styles and legend, for clients that draw the scene themselves.
func RenderSceneJSON(s render.Scene) ([]byte, error) {
	data, err := json.MarshalIndent(sceneOutput{
		Graph:  s.Graph,
		Layout: s.Layout,
		Styles: s.Sheet,
		Legend: style.Legend(),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal scene: %w", err)
	}
	return data, nil
}
