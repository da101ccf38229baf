package analysis

import (
	"strconv"
	"strings"
)

// NotAvailable marks a metric the analysis did not report.
const NotAvailable = "not available"

// Detail is one labeled metric, formatted for display.
type Detail struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Details formats the seven metrics of a node for an inspection overlay, in
// a fixed order. Absent metrics read NotAvailable, so the overlay always
// has the same rows; m may be nil.
func Details(m *Metadata) []Detail {
	if m == nil {
		m = &Metadata{}
	}
	smells := NotAvailable
	if m.CodeSmells != nil {
		smells = "none"
		if len(m.CodeSmells) > 0 {
			smells = strings.Join(m.CodeSmells, ", ")
		}
	}
	doc := NotAvailable
	if m.Docstring != nil && strings.TrimSpace(*m.Docstring) != "" {
		doc = strings.TrimSpace(*m.Docstring)
	}
	dead := NotAvailable
	if m.IsDeadCode != nil {
		dead = "no"
		if *m.IsDeadCode {
			dead = "yes"
		}
	}
	return []Detail{
		{"complexity", "Complexity", intOr(m.Complexity)},
		{"lines", "Lines", intOr(m.Lines)},
		{"parameters", "Parameters", intOr(m.Parameters)},
		{"line_number", "Defined at line", intOr(m.LineNumber)},
		{"is_dead_code", "Dead code", dead},
		{"code_smells", "Code smells", smells},
		{"docstring", "Docstring", doc},
	}
}

func intOr(p *int) string {
	if p == nil {
		return NotAvailable
	}
	return strconv.Itoa(*p)
}
