package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Sohailsaifi/CodeFlow/pkg/analysis"
	errs "github.com/Sohailsaifi/CodeFlow/pkg/errors"
)

// DanglingEdge describes an edge whose endpoints do not all resolve.
type DanglingEdge struct {
	EdgeID  string   `json:"edge_id"`
	Source  string   `json:"source"`
	Target  string   `json:"target"`
	Missing []string `json:"missing"`
}

// MalformedGraphError reports every integrity violation found in an
// analysis result. No partial graph accompanies it.
type MalformedGraphError struct {
	DuplicateIDs  []string
	DanglingEdges []DanglingEdge
	InvalidNodes  []string // node ids rejected by errs.ValidateNodeID, by position "#i" when empty
	InvalidEdges  []string // edge ids with an empty type
}

func (e *MalformedGraphError) Error() string {
	var parts []string
	if len(e.DuplicateIDs) > 0 {
		parts = append(parts, fmt.Sprintf("duplicate node ids: %s", strings.Join(e.DuplicateIDs, ", ")))
	}
	for _, d := range e.DanglingEdges {
		parts = append(parts, fmt.Sprintf("edge %s (%s -> %s) references unknown node %s",
			d.EdgeID, d.Source, d.Target, strings.Join(d.Missing, ", ")))
	}
	if len(e.InvalidNodes) > 0 {
		parts = append(parts, fmt.Sprintf("invalid node ids: %s", strings.Join(e.InvalidNodes, ", ")))
	}
	if len(e.InvalidEdges) > 0 {
		parts = append(parts, fmt.Sprintf("edges without type: %s", strings.Join(e.InvalidEdges, ", ")))
	}
	return "malformed graph: " + strings.Join(parts, "; ")
}

// Unwrap exposes the coded error so errs.Is(err, errs.ErrCodeMalformedGraph) holds.
func (e *MalformedGraphError) Unwrap() error {
	return errs.New(errs.ErrCodeMalformedGraph, "%s", e.Error())
}

// IDs returns the sorted, de-duplicated set of offending ids: duplicated
// node ids and unresolved edge endpoints.
func (e *MalformedGraphError) IDs() []string {
	seen := make(map[string]bool)
	for _, id := range e.DuplicateIDs {
		seen[id] = true
	}
	for _, d := range e.DanglingEdges {
		for _, id := range d.Missing {
			seen[id] = true
		}
	}
	for _, id := range e.InvalidNodes {
		seen[id] = true
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (e *MalformedGraphError) empty() bool {
	return len(e.DuplicateIDs) == 0 && len(e.DanglingEdges) == 0 &&
		len(e.InvalidNodes) == 0 && len(e.InvalidEdges) == 0
}

// Normalize converts a raw analysis result into the canonical Graph.
//
// Nodes keep their input order and edges receive ids e0..e{n-1} in input
// order. Every duplicate id and every edge endpoint that does not resolve
// is collected into a single *MalformedGraphError; nothing is dropped
// silently. Normalize is pure: raw is not modified and the returned graph
// shares no memory with it.
func Normalize(raw analysis.Result) (*Graph, error) {
	var bad MalformedGraphError

	g := &Graph{
		Nodes: make([]Node, 0, len(raw.Nodes)),
		Edges: make([]Edge, 0, len(raw.Edges)),
		index: make(map[string]int, len(raw.Nodes)),
	}

	dup := make(map[string]bool)
	for i, rec := range raw.Nodes {
		if err := errs.ValidateNodeID(rec.ID); err != nil {
			id := rec.ID
			if id == "" {
				id = fmt.Sprintf("#%d", i)
			}
			bad.InvalidNodes = append(bad.InvalidNodes, id)
			continue
		}
		if _, ok := g.index[rec.ID]; ok {
			if !dup[rec.ID] {
				bad.DuplicateIDs = append(bad.DuplicateIDs, rec.ID)
				dup[rec.ID] = true
			}
			continue
		}
		g.index[rec.ID] = len(g.Nodes)
		g.Nodes = append(g.Nodes, Node{
			ID:       rec.ID,
			Label:    rec.Label,
			Type:     rec.Type,
			Metadata: rec.Metadata.Clone(),
		})
	}

	for i, rec := range raw.Edges {
		id := EdgeID(i)
		var missing []string
		if _, ok := g.index[rec.Source]; !ok {
			missing = append(missing, rec.Source)
		}
		if _, ok := g.index[rec.Target]; !ok && rec.Target != rec.Source {
			missing = append(missing, rec.Target)
		}
		if len(missing) > 0 {
			bad.DanglingEdges = append(bad.DanglingEdges, DanglingEdge{
				EdgeID: id, Source: rec.Source, Target: rec.Target, Missing: missing,
			})
			continue
		}
		if rec.Type == "" {
			bad.InvalidEdges = append(bad.InvalidEdges, id)
			continue
		}
		g.Edges = append(g.Edges, Edge{ID: id, Source: rec.Source, Target: rec.Target, Type: rec.Type})
	}

	if !bad.empty() {
		return nil, &bad
	}
	return g, nil
}
