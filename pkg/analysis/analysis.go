// Package analysis defines the analysis result produced by the CodeFlow
// backend: code-structure records (files, classes, functions, methods) and
// the relationships between them, annotated with quality metrics.
//
// Records here are raw. They are decoded as received and never validated
// beyond JSON syntax; referential integrity is checked by
// [github.com/Sohailsaifi/CodeFlow/pkg/graph.Normalize].
//
// Two historical backend variants exist. Decoding accepts both: the older
// one reports dead code as "dead_code", line counts as "loc", and module
// imports as the edge type "import_from".
package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// NodeType is the kind of code element a node represents.
type NodeType string

const (
	NodeFile     NodeType = "file"
	NodeClass    NodeType = "class"
	NodeMethod   NodeType = "method"
	NodeFunction NodeType = "function"
	NodeBuiltin  NodeType = "builtin"
)

// HasMetrics reports whether nodes of this type normally carry metadata.
func (t NodeType) HasMetrics() bool {
	return t == NodeMethod || t == NodeFunction
}

// EdgeType is the relationship an edge represents.
type EdgeType string

const (
	EdgeContains EdgeType = "contains"
	EdgeCalls    EdgeType = "calls"
	EdgeImport   EdgeType = "import"

	// edgeImportFrom is the older backend's spelling of EdgeImport.
	edgeImportFrom EdgeType = "import_from"
)

// Result is one complete analysis: the unit the presentation engine
// receives and replaces wholesale.
type Result struct {
	Nodes []NodeRecord `json:"nodes"`
	Edges []EdgeRecord `json:"edges"`
}

// NodeRecord is a code element as reported by the analyzer.
type NodeRecord struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Type     NodeType  `json:"type"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

// EdgeRecord is a directed relationship between two node ids.
type EdgeRecord struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Type   EdgeType `json:"type"`
}

// UnmarshalJSON folds the legacy "import_from" edge type into "import".
func (e *EdgeRecord) UnmarshalJSON(data []byte) error {
	type plain EdgeRecord
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Type == edgeImportFrom {
		p.Type = EdgeImport
	}
	*e = EdgeRecord(p)
	return nil
}

// Metadata holds the quality metrics of a function or method. Pointer and
// nil-slice fields are absent, which is distinct from a zero value: a
// function with complexity 0 is not the same as one whose complexity was
// never computed.
type Metadata struct {
	Complexity *int     `json:"complexity,omitempty"`
	Lines      *int     `json:"lines,omitempty"`
	Parameters *int     `json:"parameters,omitempty"`
	LineNumber *int     `json:"line_number,omitempty"`
	IsDeadCode *bool    `json:"is_dead_code,omitempty"`
	CodeSmells []string `json:"code_smells,omitempty"`
	Docstring  *string  `json:"docstring,omitempty"`
	Args       []string `json:"args,omitempty"`
}

// UnmarshalJSON accepts the legacy keys "dead_code" and "loc", and derives
// the parameter count from "args" when it is not reported directly.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	type plain Metadata
	var raw struct {
		plain
		DeadCode *bool `json:"dead_code,omitempty"`
		LOC      *int  `json:"loc,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	md := Metadata(raw.plain)
	if md.IsDeadCode == nil {
		md.IsDeadCode = raw.DeadCode
	}
	if md.Lines == nil {
		md.Lines = raw.LOC
	}
	if md.Parameters == nil && md.Args != nil {
		md.Parameters = Int(len(md.Args))
	}
	*m = md
	return nil
}

// MarshalJSON writes an empty smells or args list as [] and omits a nil
// one, so a reported "none" survives a round trip.
func (m Metadata) MarshalJSON() ([]byte, error) {
	type plain Metadata
	out := struct {
		plain
		CodeSmells *[]string `json:"code_smells,omitempty"`
		Args       *[]string `json:"args,omitempty"`
	}{plain: plain(m)}
	if m.CodeSmells != nil {
		out.CodeSmells = &m.CodeSmells
	}
	if m.Args != nil {
		out.Args = &m.Args
	}
	return json.Marshal(out)
}

// DeadCode reports whether the element was flagged as unreachable.
// Absent is treated as false.
func (m *Metadata) DeadCode() bool {
	return m != nil && m.IsDeadCode != nil && *m.IsDeadCode
}

// HasSmells reports whether at least one code smell was detected.
func (m *Metadata) HasSmells() bool {
	return m != nil && len(m.CodeSmells) > 0
}

// Clone returns a deep copy.
func (m *Metadata) Clone() *Metadata {
	if m == nil {
		return nil
	}
	c := &Metadata{
		Complexity: cloneInt(m.Complexity),
		Lines:      cloneInt(m.Lines),
		Parameters: cloneInt(m.Parameters),
		LineNumber: cloneInt(m.LineNumber),
	}
	if m.IsDeadCode != nil {
		c.IsDeadCode = Bool(*m.IsDeadCode)
	}
	if m.Docstring != nil {
		c.Docstring = String(*m.Docstring)
	}
	if m.CodeSmells != nil {
		c.CodeSmells = append([]string{}, m.CodeSmells...)
	}
	if m.Args != nil {
		c.Args = append([]string{}, m.Args...)
	}
	return c
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	return Int(*p)
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }

// Decode reads one analysis result from r.
func Decode(r io.Reader) (Result, error) {
	var res Result
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return Result{}, fmt.Errorf("decode analysis result: %w", err)
	}
	return res, nil
}

// Unmarshal parses an analysis result from JSON bytes.
func Unmarshal(data []byte) (Result, error) {
	return Decode(bytes.NewReader(data))
}

// ReadFile reads an analysis result from a JSON file.
func ReadFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()
	return Decode(f)
}
