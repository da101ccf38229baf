package layout

import (
	"context"
	"testing"

	errs "github.com/Sohailsaifi/CodeFlow/pkg/errors"
	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
)

func TestAdapterQueuesUntilMount(t *testing.T) {
	ctx := context.Background()
	a := NewAdapter(Options{Engine: "counting"})
	g1 := build(t, []string{"a"}, nil)
	g2 := build(t, []string{"a", "b"}, [][2]string{{"a", "b"}})

	before := counting.calls.Load()
	for _, req := range []struct {
		version uint64
		g       *graph.Graph
	}{{1, g1}, {2, g2}} {
		_, ok, err := a.Request(ctx, req.version, req.g)
		if ok || err != nil {
			t.Fatalf("Request(%d) before mount = ok %v, err %v; want queued", req.version, ok, err)
		}
	}
	// an older request never displaces the newer queued one
	a.Request(ctx, 1, g1)
	if v, ok := a.Pending(); !ok || v != 2 {
		t.Errorf("Pending() = %d, %v, want 2, true", v, ok)
	}
	if counting.calls.Load() != before {
		t.Error("engine ran before mount")
	}

	res, ok, err := a.Mount(ctx)
	if err != nil || !ok {
		t.Fatalf("Mount() = ok %v, err %v", ok, err)
	}
	if res.Version != 2 || len(res.Layout.Nodes) != 2 {
		t.Errorf("Mount() laid out version %d with %d nodes, want 2 with 2", res.Version, len(res.Layout.Nodes))
	}
	if got := counting.calls.Load() - before; got != 1 {
		t.Errorf("engine ran %d times, want 1 (latest queued request only)", got)
	}
	if _, ok := a.Pending(); ok {
		t.Error("Pending() after mount should be empty")
	}
	if _, ok, _ := a.Mount(ctx); ok {
		t.Error("second Mount() should be a no-op")
	}
}

func TestAdapterMemoizesVersion(t *testing.T) {
	ctx := context.Background()
	a := NewAdapter(Options{Engine: "counting"})
	a.Mount(ctx)
	g := build(t, []string{"a", "b"}, [][2]string{{"a", "b"}})

	before := counting.calls.Load()
	first, _, err := a.Request(ctx, 7, g)
	if err != nil {
		t.Fatal(err)
	}
	second, ok, err := a.Request(ctx, 7, g)
	if err != nil || !ok {
		t.Fatalf("Request() repeat = ok %v, err %v", ok, err)
	}
	if got := counting.calls.Load() - before; got != 1 {
		t.Errorf("engine ran %d times for one version, want 1", got)
	}
	if first.Version != second.Version || first.Layout.Width != second.Layout.Width {
		t.Error("memoized result differs")
	}

	// a new version re-runs the layout in full
	g2 := build(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"a", "c"}})
	third, _, _ := a.Request(ctx, 8, g2)
	if got := counting.calls.Load() - before; got != 2 {
		t.Errorf("engine ran %d times after version change, want 2", got)
	}
	if len(third.Layout.Nodes) != 3 {
		t.Errorf("version 8 has %d nodes, want 3", len(third.Layout.Nodes))
	}
}

func TestAdapterRejectsStale(t *testing.T) {
	ctx := context.Background()
	a := NewAdapter(Options{})
	a.Mount(ctx)

	a.Request(ctx, 5, build(t, []string{"new"}, nil))
	_, ok, err := a.Request(ctx, 4, build(t, []string{"old"}, nil))
	if ok || !errs.Is(err, errs.ErrCodeStaleResult) {
		t.Errorf("Request(older) = ok %v, err %v, want STALE_RESULT", ok, err)
	}
	cur, _ := a.Current()
	if cur.Version != 5 || cur.Layout.Nodes[0].ID != "new" {
		t.Errorf("Current() = version %d, want 5 kept", cur.Version)
	}

	a.Forget()
	if _, ok := a.Current(); ok {
		t.Error("Current() after Forget() should be empty")
	}
	if _, _, err := a.Request(ctx, 3, build(t, []string{"older"}, nil)); !errs.Is(err, errs.ErrCodeStaleResult) {
		t.Errorf("Request() below floor after Forget() err = %v, want STALE_RESULT", err)
	}
}
