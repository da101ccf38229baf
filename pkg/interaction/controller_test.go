package interaction

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Sohailsaifi/CodeFlow/pkg/analysis"
	errs "github.com/Sohailsaifi/CodeFlow/pkg/errors"
	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
)

func sampleGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.Normalize(analysis.Result{
		Nodes: []analysis.NodeRecord{
			{ID: "f1", Label: "a.py", Type: analysis.NodeFile},
			{ID: "fn1", Label: "g", Type: analysis.NodeFunction, Metadata: &analysis.Metadata{
				Complexity: analysis.Int(7),
				Lines:      analysis.Int(12),
			}},
		},
		Edges: []analysis.EdgeRecord{{Source: "f1", Target: "fn1", Type: analysis.EdgeContains}},
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	return g
}

func sampleLayout() graph.Layout {
	return graph.Layout{
		Width:  400,
		Height: 300,
		Nodes: []graph.PlacedNode{
			{ID: "f1", X: 200, Y: 75, Width: 200, Height: 50},
			{ID: "fn1", X: 200, Y: 225, Width: 60, Height: 40},
		},
	}
}

func attached(t *testing.T, exp Exporter) *Controller {
	t.Helper()
	c := New(exp)
	c.Attach(context.Background(), 1, sampleGraph(t), sampleLayout())
	return c
}

func TestControllerEnterLeave(t *testing.T) {
	ctx := context.Background()
	c := attached(t, nil)

	if st, _ := c.State(); st != StateIdle {
		t.Fatalf("initial state = %s, want idle", st)
	}
	if err := c.Enter(ctx, "fn1"); err != nil {
		t.Fatalf("Enter(fn1) error: %v", err)
	}
	st, id := c.State()
	if st != StateInspecting || id != "fn1" {
		t.Errorf("State() = %s %s, want inspecting fn1", st, id)
	}

	ov, ok := c.Overlay()
	if !ok {
		t.Fatal("Overlay() missing after Enter")
	}
	want := map[string]string{
		"complexity":   "7",
		"lines":        "12",
		"parameters":   analysis.NotAvailable,
		"line_number":  analysis.NotAvailable,
		"is_dead_code": analysis.NotAvailable,
		"code_smells":  analysis.NotAvailable,
		"docstring":    analysis.NotAvailable,
	}
	if len(ov.Details) != len(want) {
		t.Fatalf("overlay rows = %d, want %d", len(ov.Details), len(want))
	}
	for _, d := range ov.Details {
		if d.Value != want[d.Key] {
			t.Errorf("overlay %s = %q, want %q", d.Key, d.Value, want[d.Key])
		}
	}

	c.Leave(ctx, "fn1")
	if st, _ := c.State(); st != StateIdle {
		t.Errorf("state after Leave = %s, want idle", st)
	}
	if _, ok := c.Overlay(); ok {
		t.Error("overlay remains after Leave")
	}
}

func TestControllerSingleOverlay(t *testing.T) {
	ctx := context.Background()
	c := attached(t, nil)

	c.Enter(ctx, "f1")
	c.Enter(ctx, "fn1")
	// a late leave for the first node must not close the second overlay
	c.Leave(ctx, "f1")

	st, id := c.State()
	if st != StateInspecting || id != "fn1" {
		t.Errorf("State() = %s %s, want inspecting fn1", st, id)
	}
	ov, ok := c.Overlay()
	if !ok || ov.NodeID != "fn1" {
		t.Errorf("Overlay() = %v %v, want fn1", ov.NodeID, ok)
	}
}

func TestControllerEnterErrors(t *testing.T) {
	ctx := context.Background()

	c := New(nil)
	if err := c.Enter(ctx, "fn1"); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("Enter() without graph error = %v, want NOT_FOUND", err)
	}

	c = attached(t, nil)
	if err := c.Enter(ctx, "ghost"); !errs.Is(err, errs.ErrCodeInvalidNodeID) {
		t.Errorf("Enter(ghost) error = %v, want INVALID_NODE_ID", err)
	}
	if err := c.Enter(ctx, ""); !errs.Is(err, errs.ErrCodeInvalidNodeID) {
		t.Errorf("Enter(\"\") error = %v, want INVALID_NODE_ID", err)
	}
	if st, _ := c.State(); st != StateIdle {
		t.Errorf("state after failed Enter = %s, want idle", st)
	}
}

func TestControllerAttachTearsDown(t *testing.T) {
	ctx := context.Background()
	c := attached(t, nil)
	c.Enter(ctx, "fn1")

	c.Attach(ctx, 2, sampleGraph(t), sampleLayout())
	if st, _ := c.State(); st != StateIdle {
		t.Errorf("state after Attach = %s, want idle", st)
	}
	if c.Version() != 2 {
		t.Errorf("Version() = %d, want 2", c.Version())
	}
	if c.Relayout(1, graph.Layout{}) {
		t.Error("Relayout accepted an old version")
	}
	if !c.Relayout(2, sampleLayout()) {
		t.Error("Relayout rejected the current version")
	}
}

func TestControllerPointerAt(t *testing.T) {
	ctx := context.Background()
	c := attached(t, nil)

	if id, ok := c.PointerAt(ctx, 200, 75); !ok || id != "f1" {
		t.Errorf("PointerAt(f1 center) = %q %v, want f1", id, ok)
	}
	if id, ok := c.PointerAt(ctx, 200, 225); !ok || id != "fn1" {
		t.Errorf("PointerAt(fn1 center) = %q %v, want fn1", id, ok)
	}
	if _, ok := c.PointerAt(ctx, 5, 5); ok {
		t.Error("PointerAt(empty) hit a node")
	}
	if st, _ := c.State(); st != StateIdle {
		t.Errorf("state after leaving all nodes = %s, want idle", st)
	}
}

func TestAnchor(t *testing.T) {
	s := OverlaySize{Width: 100, Height: 60}
	tests := []struct {
		name  string
		node  graph.PlacedNode
		w, h  float64
		wantX float64
		wantY float64
	}{
		{"right of node", graph.PlacedNode{X: 50, Y: 100, Width: 40, Height: 20}, 400, 300, 82, 70},
		{"flips left", graph.PlacedNode{X: 350, Y: 100, Width: 40, Height: 20}, 400, 300, 218, 70},
		{"clamps top", graph.PlacedNode{X: 50, Y: 10, Width: 40, Height: 20}, 400, 300, 82, 0},
		{"clamps bottom", graph.PlacedNode{X: 50, Y: 295, Width: 40, Height: 20}, 400, 300, 82, 240},
		{"clamps left when nothing fits", graph.PlacedNode{X: 50, Y: 100, Width: 40, Height: 20}, 120, 300, 0, 70},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := Anchor(tt.node, s, tt.w, tt.h)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("Anchor() = (%v, %v), want (%v, %v)", x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestControllerLegend(t *testing.T) {
	c := New(nil)
	if !c.LegendVisible() {
		t.Error("legend hidden by default")
	}
	if c.ToggleLegend() {
		t.Error("ToggleLegend() = true, want false")
	}
	if !c.ToggleLegend() {
		t.Error("ToggleLegend() = false, want true")
	}
	if New(nil, WithLegend(false)).LegendVisible() {
		t.Error("WithLegend(false) ignored")
	}
}

// =============================================================================
// Export
// =============================================================================

type fakeExporter struct {
	data   map[string][]byte
	err    error
	before func()
}

func (f *fakeExporter) Fetch(ctx context.Context, format string) ([]byte, error) {
	if f.before != nil {
		f.before()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.data[format], nil
}

func TestExport(t *testing.T) {
	g := sampleGraph(t)
	canonical, _ := graph.MarshalGraph(g)
	exp := &fakeExporter{data: map[string][]byte{
		"svg":  []byte("<svg/>"),
		"png":  {0x89, 'P', 'N', 'G'},
		"json": canonical,
	}}
	c := attached(t, exp)

	for _, format := range []string{"svg", "png", "json"} {
		t.Run(format, func(t *testing.T) {
			dir := t.TempDir()
			path, err := c.Export(context.Background(), format, dir)
			if err != nil {
				t.Fatalf("Export(%s) error: %v", format, err)
			}
			if want := filepath.Join(dir, "code_analysis."+format); path != want {
				t.Errorf("path = %q, want %q", path, want)
			}
			got, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile() error: %v", err)
			}
			if string(got) != string(exp.data[format]) {
				t.Errorf("file content mismatch for %s", format)
			}
			assertOnlyFile(t, dir, "code_analysis."+format)
		})
	}
}

func TestExportFailures(t *testing.T) {
	tests := []struct {
		name   string
		format string
		exp    *fakeExporter
		code   errs.Code
	}{
		{"invalid format", "pdf", &fakeExporter{}, errs.ErrCodeInvalidFormat},
		{"collaborator fails", "svg", &fakeExporter{err: errs.New(errs.ErrCodeExportFailed, "status 500")}, errs.ErrCodeExportFailed},
		{"json not a graph", "json", &fakeExporter{data: map[string][]byte{"json": []byte(`{"nodes":[{"id":"a"}],"edges":[{"source":"a","target":"zz","type":"calls"}]}`)}}, errs.ErrCodeExportFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			c := attached(t, tt.exp)
			_, err := c.Export(context.Background(), tt.format, dir)

			var ee *ExportError
			if !errors.As(err, &ee) {
				t.Fatalf("Export() error = %v, want *ExportError", err)
			}
			if !errs.Is(err, tt.code) {
				t.Errorf("Export() error = %v, want %s", err, tt.code)
			}
			assertOnlyFile(t, dir, "")
		})
	}
}

func TestExportStale(t *testing.T) {
	dir := t.TempDir()
	var c *Controller
	var once sync.Once
	exp := &fakeExporter{
		data: map[string][]byte{"svg": []byte("<svg/>")},
		before: func() {
			once.Do(func() { c.Attach(context.Background(), 2, sampleGraph(t), sampleLayout()) })
		},
	}
	c = attached(t, exp)

	_, err := c.Export(context.Background(), "svg", dir)
	if !errs.Is(err, errs.ErrCodeStaleResult) {
		t.Errorf("Export() error = %v, want STALE_RESULT", err)
	}
	assertOnlyFile(t, dir, "")
}

func TestExportRelativeParentDir(t *testing.T) {
	root := t.TempDir()
	work := filepath.Join(root, "work")
	if err := os.Mkdir(work, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(work)

	c := attached(t, &fakeExporter{data: map[string][]byte{"svg": []byte("<svg/>")}})
	path, err := c.Export(context.Background(), "svg", "../exports")
	if err != nil {
		t.Fatalf("Export(../exports) error: %v", err)
	}
	if want := filepath.Join("..", "exports", "code_analysis.svg"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	assertOnlyFile(t, filepath.Join(root, "exports"), "code_analysis.svg")
}

func TestExportNoGraph(t *testing.T) {
	_, err := New(&fakeExporter{}).Export(context.Background(), "svg", t.TempDir())
	if !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("Export() error = %v, want NOT_FOUND", err)
	}
}

// assertOnlyFile checks that dir holds exactly the named file, or nothing
// when name is empty.
func assertOnlyFile(t *testing.T, dir, name string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if name == "" && len(names) != 0 {
		t.Errorf("dir contains %v, want nothing", names)
	}
	if name != "" && (len(names) != 1 || names[0] != name) {
		t.Errorf("dir contains %v, want [%s]", names, name)
	}
}
