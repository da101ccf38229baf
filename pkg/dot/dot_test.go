package dot

import (
	"strings"
	"testing"

	"github.com/Sohailsaifi/CodeFlow/pkg/analysis"
	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
	"github.com/Sohailsaifi/CodeFlow/pkg/style"
)

func sample(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.Normalize(analysis.Result{
		Nodes: []analysis.NodeRecord{
			{ID: "f1", Label: "a.py", Type: analysis.NodeFile},
			{ID: "fn1", Label: `say "hi"`, Type: analysis.NodeFunction, Metadata: &analysis.Metadata{Complexity: analysis.Int(12)}},
		},
		Edges: []analysis.EdgeRecord{{Source: "f1", Target: "fn1", Type: analysis.EdgeContains}},
	})
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	return g
}

func TestBuild(t *testing.T) {
	g := sample(t)
	src := Build(g, style.ResolveAll(g), Options{RankSep: 72, NodeSep: 36})

	for _, want := range []string{
		"rankdir=TB;",
		"ranksep=1;",
		"nodesep=0.5;",
		`n0 [id="f1"`,
		`label="say \"hi\""`,
		`n0 -> n1 [id="e0"]`,
	} {
		if !strings.Contains(src, want) {
			t.Errorf("Build() missing %q in:\n%s", want, src)
		}
	}
	if strings.Contains(src, "fillcolor") {
		t.Error("unstyled Build() should not carry fill colors")
	}
}

func TestBuildStyled(t *testing.T) {
	g := sample(t)
	src := Build(g, style.ResolveAll(g), Options{Styled: true})

	if !strings.Contains(src, `fillcolor="`+style.ColorComplex+`"`) {
		t.Errorf("styled Build() missing complex fill:\n%s", src)
	}
	if !strings.Contains(src, "penwidth=3") {
		t.Errorf("styled Build() missing contains edge width:\n%s", src)
	}
}

func TestParseRoundTrip(t *testing.T) {
	g := sample(t)
	doc, err := Parse([]byte(Build(g, style.ResolveAll(g), Options{})))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(doc.Nodes) != 2 || len(doc.Edges) != 1 {
		t.Fatalf("Parse() = %d nodes, %d edges, want 2, 1", len(doc.Nodes), len(doc.Edges))
	}
	n, ok := doc.Node("n1")
	if !ok {
		t.Fatal("node n1 missing")
	}
	if n.Attrs["id"] != "fn1" {
		t.Errorf("id = %q, want fn1", n.Attrs["id"])
	}
	if n.Attrs["label"] != `say "hi"` {
		t.Errorf("label = %q, want %q", n.Attrs["label"], `say "hi"`)
	}
	if doc.Graph["rankdir"] != "TB" {
		t.Errorf("rankdir = %q, want TB", doc.Graph["rankdir"])
	}
}

func TestParseGraphvizOutput(t *testing.T) {
	// Shape of `dot -Tdot` output: split attribute lists, continuations,
	// default statements and edge chains.
	src := `digraph G {
	graph [bb="0,0,62,108",
		nodesep=0.69
	];
	node [label="\N"];
	n0	[height=0.5,
		pos="27,90",
		width=0.75];
	n1	[height=0.5,
		pos="27,18",
		width=0.75];
	n0 -> n1	[id=e0,
		pos="e,27,36.104 27,71.697 27,63.983 27,54.712 \
27,46.112"];
	/* trailing comment */
}
`
	doc, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	_, ur, err := ParseBox(doc.Graph["bb"])
	if err != nil || ur.X != 62 || ur.Y != 108 {
		t.Errorf("ParseBox() = %v, %v, want {62 108}", ur, err)
	}

	n, _ := doc.Node("n0")
	pt, err := ParsePoint(n.Attrs["pos"])
	if err != nil || pt != (Point{27, 90}) {
		t.Errorf("ParsePoint() = %v, %v, want {27 90}", pt, err)
	}

	if len(doc.Edges) != 1 || doc.Edges[0].Attrs["id"] != "e0" {
		t.Fatalf("edges = %+v, want one edge e0", doc.Edges)
	}
	pts, err := ParseSpline(doc.Edges[0].Attrs["pos"])
	if err != nil {
		t.Fatalf("ParseSpline() error: %v", err)
	}
	if len(pts) != 5 {
		t.Fatalf("ParseSpline() = %d points, want 5", len(pts))
	}
	if pts[len(pts)-1] != (Point{27, 36.104}) {
		t.Errorf("last point = %v, want arrow tip {27 36.104}", pts[len(pts)-1])
	}
}

func TestParseChainAndSubgraph(t *testing.T) {
	doc, err := Parse([]byte(`strict digraph { a -> b -> c; subgraph s { rank=same; d:p1 -> e } }`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(doc.Edges) != 3 {
		t.Errorf("edges = %d, want 3", len(doc.Edges))
	}
	if len(doc.Nodes) != 5 {
		t.Errorf("nodes = %d, want 5", len(doc.Nodes))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		``,
		`digraph {`,
		`digraph { a [label="x }`,
		`digraph { a [label=] }`,
		`flowchart { }`,
	}
	for _, src := range tests {
		if _, err := Parse([]byte(src)); err == nil {
			t.Errorf("Parse(%q) expected error", src)
		}
	}
}

func TestQuote(t *testing.T) {
	tests := []struct{ in, want string }{
		{"plain", `"plain"`},
		{`a"b`, `"a\"b"`},
		{`c:\x`, `"c:\\x"`},
		{"two\nlines", `"two\nlines"`},
	}
	for _, tt := range tests {
		if got := Quote(tt.in); got != tt.want {
			t.Errorf("Quote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
