package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Sohailsaifi/CodeFlow/pkg/analysis"
	"github.com/Sohailsaifi/CodeFlow/pkg/cache"
	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
	"github.com/Sohailsaifi/CodeFlow/pkg/layout"
	"github.com/Sohailsaifi/CodeFlow/pkg/render"
)

func sampleResult() analysis.Result {
	return analysis.Result{
		Nodes: []analysis.NodeRecord{
			{ID: "f1", Label: "a.py", Type: analysis.NodeFile},
			{ID: "fn1", Label: "g", Type: analysis.NodeFunction, Metadata: &analysis.Metadata{Complexity: analysis.Int(7)}},
			{ID: "b1", Label: "len", Type: analysis.NodeBuiltin},
		},
		Edges: []analysis.EdgeRecord{
			{Source: "f1", Target: "fn1", Type: analysis.EdgeContains},
			{Source: "fn1", Target: "b1", Type: analysis.EdgeCalls},
		},
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	if len(o.Formats) != 1 || o.Formats[0] != render.FormatSVG {
		t.Errorf("Formats = %v, want [svg]", o.Formats)
	}
	if o.Params != layout.DefaultParams() {
		t.Errorf("Params = %+v, want defaults", o.Params)
	}
	if o.Scale <= 0 {
		t.Errorf("Scale = %v, want positive", o.Scale)
	}
}

func TestOptionsInvalid(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"format", Options{Formats: []string{"pdf"}}},
		{"engine", Options{Engine: "nope"}},
		{"params", Options{Params: layout.Params{RankSep: -1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); err == nil {
				t.Error("ValidateAndSetDefaults() error = nil, want error")
			}
		})
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	o := Options{Legend: true, Popups: true, Scale: 2}
	if k := o.ArtifactKeyOpts("json"); k.Legend || k.Popups || k.Scale != 0 {
		t.Errorf("json key = %+v, want format only", k)
	}
	if k := o.ArtifactKeyOpts("svg"); !k.Legend || !k.Popups {
		t.Errorf("svg key = %+v, want legend and popups", k)
	}
	if k := o.ArtifactKeyOpts("png"); !k.Legend || k.Popups || k.Scale != 2 {
		t.Errorf("png key = %+v, want legend and scale", k)
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), sampleResult(), Options{
		Formats: []string{"svg", "png", "json", "dot"},
		Legend:  true,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.Stats.NodeCount != 3 || res.Stats.EdgeCount != 2 {
		t.Errorf("Stats = %+v, want 3 nodes 2 edges", res.Stats)
	}
	if !res.Layout.Positioned {
		t.Error("layout not positioned")
	}
	if res.GraphHash != res.Graph.Hash() {
		t.Error("GraphHash does not match graph")
	}
	for _, f := range []string{"svg", "png", "json", "dot"} {
		if len(res.Artifacts[f]) == 0 {
			t.Errorf("artifact %s empty", f)
		}
	}
	if !strings.Contains(string(res.Artifacts["svg"]), "Graph Legend") {
		t.Error("svg missing legend")
	}
	if !strings.HasPrefix(string(res.Artifacts["dot"]), "digraph") {
		t.Error("dot artifact is not a digraph")
	}
	if _, err := graph.UnmarshalGraph(res.Artifacts["json"]); err != nil {
		t.Errorf("json artifact is not a canonical graph: %v", err)
	}
}

func TestExecuteMalformed(t *testing.T) {
	raw := analysis.Result{
		Nodes: []analysis.NodeRecord{{ID: "a", Type: analysis.NodeFunction}},
		Edges: []analysis.EdgeRecord{{Source: "a", Target: "ghost", Type: analysis.EdgeCalls}},
	}
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), raw, Options{})
	var mge *graph.MalformedGraphError
	if !errors.As(err, &mge) {
		t.Errorf("Execute() error = %v, want MalformedGraphError", err)
	}
}

func TestRenderCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	r := NewRunner(fc, nil, nil)
	defer r.Close()

	ctx := context.Background()
	opts := Options{Formats: []string{"svg", "json"}}

	first, err := r.Execute(ctx, sampleResult(), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if first.CacheInfo.RenderHit {
		t.Error("first run hit the render cache")
	}

	second, err := r.Execute(ctx, sampleResult(), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run missed the render cache")
	}
	if string(first.Artifacts["svg"]) != string(second.Artifacts["svg"]) {
		t.Error("cached svg differs")
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, sampleResult(), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if third.CacheInfo.RenderHit {
		t.Error("refresh run hit the render cache")
	}

	opts.Refresh = false
	opts.Popups = true
	fourth, _ := r.Execute(ctx, sampleResult(), opts)
	if fourth.CacheInfo.RenderHit {
		t.Error("popups variant served from plain svg cache entry")
	}
}

func TestRenderFormatUnknown(t *testing.T) {
	g, _ := graph.Normalize(sampleResult())
	if _, err := RenderFormat(context.Background(), render.NewScene(g, graph.Layout{}), "pdf", Options{}); err == nil {
		t.Error("RenderFormat(pdf) error = nil, want error")
	}
}
