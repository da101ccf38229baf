package layout

import (
	"context"
	"strings"
	"testing"
)

func TestGraphvizEngine(t *testing.T) {
	g := fileWithFunction(t)
	l, err := Run(context.Background(), g, Options{Engine: EngineGraphviz})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !l.Positioned {
		t.Fatalf("Positioned = false, failure %q", l.Failure)
	}
	if !strings.Contains(l.DOT, "rankdir=TB") {
		t.Error("layout should keep the generated DOT")
	}

	f1, fn1 := node(t, l, "f1"), node(t, l, "fn1")
	if fn1.Y <= f1.Y {
		t.Errorf("fn1 at y=%v should be below f1 at y=%v", fn1.Y, f1.Y)
	}
	if f1.Rank != 0 || fn1.Rank != 1 {
		t.Errorf("ranks = %d, %d, want 0, 1", f1.Rank, fn1.Rank)
	}
	if f1.Top() < DefaultPadding-1 {
		t.Errorf("f1 top = %v, want >= padding", f1.Top())
	}
	if len(l.Edges) != 1 || len(l.Edges[0].Points) < 2 {
		t.Fatalf("edges = %+v", l.Edges)
	}
}
