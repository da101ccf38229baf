package cli

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/Sohailsaifi/CodeFlow/pkg/config"
	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
)

const sampleAnalysis = `{
  "nodes": [
    {"id": "f1", "label": "app.py", "type": "file"},
    {"id": "c1", "label": "Service", "type": "class"},
    {"id": "m1", "label": "run", "type": "method", "metadata": {"complexity": 12, "code_smells": ["long method"]}},
    {"id": "fn1", "label": "helper", "type": "function", "metadata": {"complexity": 3, "is_dead_code": true}},
    {"id": "b1", "label": "print", "type": "builtin"}
  ],
  "edges": [
    {"source": "f1", "target": "c1", "type": "contains"},
    {"source": "c1", "target": "m1", "type": "contains"},
    {"source": "f1", "target": "fn1", "type": "contains"},
    {"source": "m1", "target": "fn1", "type": "calls"},
    {"source": "fn1", "target": "b1", "type": "calls"}
  ]
}`

const danglingAnalysis = `{
  "nodes": [{"id": "a", "type": "function"}],
  "edges": [{"source": "a", "target": "ghost", "type": "calls"}]
}`

func writeSample(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "analysis.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("", nil, nil)
	if err != nil {
		t.Fatalf("config.Load() error: %v", err)
	}
	return cfg
}

func newTestCLI(t *testing.T) *CLI {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	return New(os.Stderr, LogInfo)
}

func TestRootCommandHasCommands(t *testing.T) {
	root := newTestCLI(t).RootCommand()
	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"validate", "layout", "render", "view", "upload", "export", "serve", "cache", "config", "completion"} {
		if !slices.Contains(names, want) {
			t.Errorf("root command missing %q (have %v)", want, names)
		}
	}
}

func TestValidateCommand(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"valid", sampleAnalysis, false},
		{"dangling edge", danglingAnalysis, true},
		{"not json", "{", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := newTestCLI(t).RootCommand()
			root.SetArgs([]string{"validate", writeSample(t, tt.content)})
			err := root.Execute()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLayoutCommand(t *testing.T) {
	input := writeSample(t, sampleAnalysis)
	output := filepath.Join(t.TempDir(), "out.layout.json")

	root := newTestCLI(t).RootCommand()
	root.SetArgs([]string{"layout", input, "-o", output, "--ranksep", "120"})
	if err := root.Execute(); err != nil {
		t.Fatalf("layout error: %v", err)
	}

	l, err := graph.ReadLayoutFile(output)
	if err != nil {
		t.Fatalf("ReadLayoutFile() error: %v", err)
	}
	if len(l.Nodes) != 5 {
		t.Errorf("layout has %d nodes, want 5", len(l.Nodes))
	}
	if l.Params.RankSep != 120 {
		t.Errorf("RankSep = %v, want 120 from --ranksep", l.Params.RankSep)
	}
}

func TestLayoutCommandRejectsUnknownEngine(t *testing.T) {
	root := newTestCLI(t).RootCommand()
	root.SetArgs([]string{"layout", writeSample(t, sampleAnalysis), "--engine", "circular"})
	if err := root.Execute(); err == nil {
		t.Error("layout with unknown engine should fail")
	}
}

func TestConfigInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codeflow.toml")

	root := newTestCLI(t).RootCommand()
	root.SetArgs([]string{"config", "init", path})
	if err := root.Execute(); err != nil {
		t.Fatalf("config init error: %v", err)
	}
	if _, err := config.Load(path, nil, nil); err != nil {
		t.Errorf("written config does not load: %v", err)
	}

	root = newTestCLI(t).RootCommand()
	root.SetArgs([]string{"config", "init", path})
	if err := root.Execute(); err == nil {
		t.Error("config init over an existing file should fail without --force")
	}
}

func TestMerge(t *testing.T) {
	got := merge(layoutBindings, renderBindings)
	if got["engine"] != "layout.engine" || got["legend"] != "render.legend" {
		t.Errorf("merge() = %v", got)
	}
	if len(got) != len(layoutBindings)+len(renderBindings) {
		t.Errorf("merge() has %d keys, want %d", len(got), len(layoutBindings)+len(renderBindings))
	}
}
