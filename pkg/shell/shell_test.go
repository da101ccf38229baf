package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Sohailsaifi/CodeFlow/pkg/analysis"
	errs "github.com/Sohailsaifi/CodeFlow/pkg/errors"
	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
	"github.com/Sohailsaifi/CodeFlow/pkg/interaction"
	"github.com/Sohailsaifi/CodeFlow/pkg/layout"
)

func fileWithFunction() analysis.Result {
	return analysis.Result{
		Nodes: []analysis.NodeRecord{
			{ID: "f1", Label: "a.py", Type: analysis.NodeFile},
			{ID: "fn1", Label: "g", Type: analysis.NodeFunction, Metadata: &analysis.Metadata{Complexity: analysis.Int(7)}},
		},
		Edges: []analysis.EdgeRecord{{Source: "f1", Target: "fn1", Type: analysis.EdgeContains}},
	}
}

func otherResult() analysis.Result {
	return analysis.Result{
		Nodes: []analysis.NodeRecord{{ID: "c1", Label: "Widget", Type: analysis.NodeClass}},
	}
}

func dangling() analysis.Result {
	return analysis.Result{
		Nodes: []analysis.NodeRecord{{ID: "a", Type: analysis.NodeFunction}},
		Edges: []analysis.EdgeRecord{{Source: "a", Target: "missing", Type: analysis.EdgeCalls}},
	}
}

func TestShellLoad(t *testing.T) {
	ctx := context.Background()
	s := New(Options{})

	if _, ok := s.Model(); ok {
		t.Fatal("new shell has a model")
	}
	m, err := s.Load(ctx, fileWithFunction())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if m.Version != 1 {
		t.Errorf("Version = %d, want 1", m.Version)
	}
	if m.ID.String() == "" || m.ID.Version() != 4 {
		t.Errorf("ID = %v, want random uuid", m.ID)
	}
	if !m.Layout.Positioned || len(m.Layout.Nodes) != 2 {
		t.Fatalf("layout = %+v, want 2 positioned nodes", m.Layout)
	}
	f1, _ := m.Layout.Node("f1")
	fn1, _ := m.Layout.Node("fn1")
	if f1.Y >= fn1.Y {
		t.Errorf("f1.Y = %v, fn1.Y = %v, want file above function", f1.Y, fn1.Y)
	}
	if s.Controller().Version() != 1 {
		t.Errorf("controller version = %d, want 1", s.Controller().Version())
	}

	m2, err := s.Load(ctx, otherResult())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if m2.Version != 2 || m2.ID == m.ID {
		t.Errorf("second model = v%d %v, want v2 with a new id", m2.Version, m2.ID)
	}
}

func TestShellMalformedKeepsModel(t *testing.T) {
	ctx := context.Background()
	s := New(Options{})
	before, _ := s.Load(ctx, fileWithFunction())

	_, err := s.Load(ctx, dangling())
	var mge *graph.MalformedGraphError
	if !errors.As(err, &mge) {
		t.Fatalf("Load(dangling) error = %v, want MalformedGraphError", err)
	}
	after, ok := s.Model()
	if !ok || after.Version != before.Version {
		t.Errorf("model after malformed = v%d, want v%d", after.Version, before.Version)
	}
	if s.Notice() == "" {
		t.Error("Notice() empty after malformed result")
	}

	s.DismissNotice()
	if s.Notice() != "" {
		t.Error("DismissNotice() kept the message")
	}
}

func TestShellReplacementClosesOverlay(t *testing.T) {
	ctx := context.Background()
	s := New(Options{})
	s.Load(ctx, fileWithFunction())

	if err := s.Controller().Enter(ctx, "fn1"); err != nil {
		t.Fatalf("Enter(fn1) error: %v", err)
	}
	s.Load(ctx, otherResult())

	if st, _ := s.Controller().State(); st != interaction.StateIdle {
		t.Errorf("controller state = %s, want idle", st)
	}
	if _, ok := s.Controller().Overlay(); ok {
		t.Error("overlay survived model replacement")
	}
}

func TestShellStaleTicket(t *testing.T) {
	ctx := context.Background()
	s := New(Options{})

	older := s.Begin()
	newer := s.Begin()
	if _, err := s.Apply(ctx, newer, otherResult()); err != nil {
		t.Fatalf("Apply(newer) error: %v", err)
	}
	_, err := s.Apply(ctx, older, fileWithFunction())
	if !errs.Is(err, errs.ErrCodeStaleResult) {
		t.Errorf("Apply(older) error = %v, want STALE_RESULT", err)
	}
	m, _ := s.Model()
	if _, ok := m.Graph.Node("c1"); !ok {
		t.Error("stale result overwrote the newer model")
	}
}

type fakeUploader struct {
	res  analysis.Result
	err  error
	name string
}

func (f *fakeUploader) Upload(ctx context.Context, name string, r io.Reader) (analysis.Result, error) {
	f.name = name
	io.Copy(io.Discard, r)
	return f.res, f.err
}

func TestShellUpload(t *testing.T) {
	ctx := context.Background()

	up := &fakeUploader{res: fileWithFunction()}
	s := New(Options{Uploader: up})
	m, err := s.Upload(ctx, "a.py", strings.NewReader("x = 1"))
	if err != nil {
		t.Fatalf("Upload() error: %v", err)
	}
	if m.Source != "a.py" || up.name != "a.py" {
		t.Errorf("Source = %q, uploaded %q, want a.py", m.Source, up.name)
	}

	up.err = errs.New(errs.ErrCodeUploadFailed, "backend down")
	_, err = s.Upload(ctx, "b.py", strings.NewReader("y = 2"))
	var ue *UploadError
	if !errors.As(err, &ue) || ue.Name != "b.py" {
		t.Fatalf("Upload() error = %v, want UploadError for b.py", err)
	}
	if got := s.Notice(); got != "backend down" {
		t.Errorf("Notice() = %q, want %q", got, "backend down")
	}
	if cur, _ := s.Model(); cur.Version != m.Version {
		t.Errorf("failed upload replaced the model")
	}
}

func TestShellUploadWithoutBackend(t *testing.T) {
	_, err := New(Options{}).Upload(context.Background(), "a.py", strings.NewReader(""))
	if !errs.Is(err, errs.ErrCodeUnsupported) {
		t.Errorf("Upload() error = %v, want UNSUPPORTED", err)
	}
}

func TestShellMountRunsQueuedLayout(t *testing.T) {
	ctx := context.Background()
	s := New(Options{Adapter: layout.NewAdapter(layout.Options{})})

	m, err := s.Load(ctx, fileWithFunction())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(m.Layout.Nodes) != 0 {
		t.Errorf("layout computed before mount")
	}
	if err := s.Mount(ctx); err != nil {
		t.Fatalf("Mount() error: %v", err)
	}
	m, _ = s.Model()
	if !m.Layout.Positioned || len(m.Layout.Nodes) != 2 {
		t.Errorf("layout after mount = %+v, want 2 positioned nodes", m.Layout)
	}
	if err := s.Controller().Enter(ctx, "fn1"); err != nil {
		t.Errorf("Enter() after mount error: %v", err)
	}
}

func TestShellLoadFile(t *testing.T) {
	ctx := context.Background()
	s := New(Options{})

	path := filepath.Join(t.TempDir(), "analysis.json")
	data := `{"nodes":[{"id":"f1","label":"a.py","type":"file"}],"edges":[]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := s.LoadFile(ctx, path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if m.Source != path || m.Graph.NodeCount() != 1 {
		t.Errorf("model = %q with %d nodes", m.Source, m.Graph.NodeCount())
	}

	if _, err := s.LoadFile(ctx, filepath.Join(t.TempDir(), "missing.json")); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("LoadFile(missing) error = %v, want INVALID_INPUT", err)
	}
}

func TestShellClear(t *testing.T) {
	ctx := context.Background()
	s := New(Options{})
	s.Load(ctx, fileWithFunction())
	s.Controller().Enter(ctx, "f1")

	pending := s.Begin()
	s.Clear(ctx)

	if _, ok := s.Model(); ok {
		t.Error("model survived Clear")
	}
	if st, _ := s.Controller().State(); st != interaction.StateIdle {
		t.Errorf("controller state = %s, want idle", st)
	}
	if _, err := s.Apply(ctx, pending, otherResult()); !errs.Is(err, errs.ErrCodeStaleResult) {
		t.Errorf("Apply() after Clear error = %v, want STALE_RESULT", err)
	}
}
