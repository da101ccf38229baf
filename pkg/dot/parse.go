package dot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Attrs holds the attributes of a DOT statement, unquoted.
type Attrs map[string]string

// Node is a node statement.
type Node struct {
	Name  string
	Attrs Attrs
}

// Edge is one edge of an edge statement. A chain a -> b -> c yields two.
type Edge struct {
	From  string
	To    string
	Attrs Attrs
}

// Document is a parsed DOT graph, flattened: subgraph contents are listed
// with the top-level statements.
type Document struct {
	Graph Attrs
	Nodes []Node
	Edges []Edge

	index map[string]int
}

// Node returns the node statement with the given name.
func (d *Document) Node(name string) (Node, bool) {
	i, ok := d.index[name]
	if !ok {
		return Node{}, false
	}
	return d.Nodes[i], true
}

// ErrSyntax is returned for DOT input that cannot be parsed.
var ErrSyntax = errors.New("dot syntax error")

// Parse reads a DOT document. It understands the subset Graphviz writes
// for laid-out output: attribute lists, edge chains, subgraphs, ports,
// comments and line continuations.
func Parse(data []byte) (*Document, error) {
	toks, err := tokenize(string(data))
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, doc: &Document{Graph: Attrs{}, index: map[string]int{}}}
	if err := p.parseGraph(); err != nil {
		return nil, err
	}
	return p.doc, nil
}

// =============================================================================
// Tokenizer
// =============================================================================

type tokKind int

const (
	tokID tokKind = iota
	tokPunct
	tokEdgeOp
)

type token struct {
	kind tokKind
	text string
	pos  int
}

func tokenize(s string) ([]token, error) {
	var toks []token
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '#' && (i == 0 || s[i-1] == '\n'):
			i = skipLine(s, i)
		case strings.HasPrefix(s[i:], "//"):
			i = skipLine(s, i)
		case strings.HasPrefix(s[i:], "/*"):
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated comment at %d", ErrSyntax, i)
			}
			i += end + 4
		case strings.HasPrefix(s[i:], "->") || strings.HasPrefix(s[i:], "--"):
			toks = append(toks, token{tokEdgeOp, s[i : i+2], i})
			i += 2
		case strings.ContainsRune("{}[];,=:", rune(c)):
			toks = append(toks, token{tokPunct, string(c), i})
			i++
		case c == '"':
			text, n, err := readQuoted(s[i:])
			if err != nil {
				return nil, fmt.Errorf("%w at %d", err, i)
			}
			toks = append(toks, token{tokID, text, i})
			i += n
		case c == '<':
			text, n, err := readHTML(s[i:])
			if err != nil {
				return nil, fmt.Errorf("%w at %d", err, i)
			}
			toks = append(toks, token{tokID, text, i})
			i += n
		case isIDChar(rune(c)) || c == '-' || c == '.':
			j := i + 1
			for j < len(s) && (isIDChar(rune(s[j])) || s[j] == '.') {
				j++
			}
			toks = append(toks, token{tokID, s[i:j], i})
			i = j
		default:
			return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, c, i)
		}
	}
	return toks, nil
}

func isIDChar(r rune) bool {
	return r == '_' || r > unicode.MaxASCII || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9')
}

func skipLine(s string, i int) int {
	if end := strings.IndexByte(s[i:], '\n'); end >= 0 {
		return i + end + 1
	}
	return len(s)
}

// readQuoted reads a double-quoted string starting at s[0]. Escaped quotes
// and backslashes are unescaped and backslash-newline continuations removed;
// other escapes such as \n are kept since they are label directives.
func readQuoted(s string) (string, int, error) {
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '"':
			return b.String(), i + 1, nil
		case '\\':
			if i+1 < len(s) {
				switch s[i+1] {
				case '"', '\\':
					b.WriteByte(s[i+1])
					i++
					continue
				case '\n':
					i++
					continue
				case '\r':
					i++
					if i+1 < len(s) && s[i+1] == '\n' {
						i++
					}
					continue
				}
			}
			b.WriteByte('\\')
		default:
			b.WriteByte(s[i])
		}
	}
	return "", 0, fmt.Errorf("%w: unterminated string", ErrSyntax)
}

func readHTML(s string) (string, int, error) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				return s[1:i], i + 1, nil
			}
		}
	}
	return "", 0, fmt.Errorf("%w: unterminated HTML string", ErrSyntax)
}

// =============================================================================
// Parser
// =============================================================================

type parser struct {
	toks []token
	pos  int
	doc  *Document
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) next() (token, bool) {
	t, ok := p.peek()
	if ok {
		p.pos++
	}
	return t, ok
}

func (p *parser) isPunct(text string) bool {
	t, ok := p.peek()
	return ok && t.kind == tokPunct && t.text == text
}

func (p *parser) expect(text string) error {
	t, ok := p.next()
	if !ok {
		return fmt.Errorf("%w: expected %q, got end of input", ErrSyntax, text)
	}
	if t.kind != tokPunct || t.text != text {
		return fmt.Errorf("%w: expected %q at %d, got %q", ErrSyntax, text, t.pos, t.text)
	}
	return nil
}

func (p *parser) parseGraph() error {
	t, ok := p.next()
	if ok && t.kind == tokID && strings.EqualFold(t.text, "strict") {
		t, ok = p.next()
	}
	if !ok || t.kind != tokID || !(strings.EqualFold(t.text, "digraph") || strings.EqualFold(t.text, "graph")) {
		return fmt.Errorf("%w: expected graph or digraph", ErrSyntax)
	}
	if t, ok := p.peek(); ok && t.kind == tokID {
		p.pos++
	}
	if err := p.expect("{"); err != nil {
		return err
	}
	return p.parseStmts()
}

// parseStmts parses statements up to and including the closing brace.
func (p *parser) parseStmts() error {
	for {
		t, ok := p.peek()
		if !ok {
			return fmt.Errorf("%w: missing closing brace", ErrSyntax)
		}
		switch {
		case t.kind == tokPunct && t.text == "}":
			p.pos++
			return nil
		case t.kind == tokPunct && (t.text == ";" || t.text == ","):
			p.pos++
		case t.kind == tokPunct && t.text == "{":
			p.pos++
			if err := p.parseStmts(); err != nil {
				return err
			}
		case t.kind == tokID && strings.EqualFold(t.text, "subgraph"):
			p.pos++
			if n, ok := p.peek(); ok && n.kind == tokID {
				p.pos++
			}
			if err := p.expect("{"); err != nil {
				return err
			}
			if err := p.parseStmts(); err != nil {
				return err
			}
		case t.kind == tokID:
			if err := p.parseStmt(); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, t.text, t.pos)
		}
	}
}

func (p *parser) parseStmt() error {
	first, _ := p.next()

	switch strings.ToLower(first.text) {
	case "graph", "node", "edge":
		if p.isPunct("[") {
			attrs, err := p.parseAttrList()
			if err != nil {
				return err
			}
			if strings.EqualFold(first.text, "graph") {
				for k, v := range attrs {
					p.doc.Graph[k] = v
				}
			}
			return nil
		}
	}

	if p.isPunct("=") {
		p.pos++
		v, ok := p.next()
		if !ok || v.kind != tokID {
			return fmt.Errorf("%w: expected value after %s=", ErrSyntax, first.text)
		}
		p.doc.Graph[first.text] = v.text
		return nil
	}

	chain := []string{first.text}
	p.skipPort()
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokEdgeOp {
			break
		}
		p.pos++
		n, ok := p.next()
		if !ok || n.kind != tokID {
			return fmt.Errorf("%w: expected node after %s", ErrSyntax, t.text)
		}
		chain = append(chain, n.text)
		p.skipPort()
	}

	attrs := Attrs{}
	if p.isPunct("[") {
		var err error
		if attrs, err = p.parseAttrList(); err != nil {
			return err
		}
	}

	if len(chain) == 1 {
		p.addNode(chain[0], attrs)
		return nil
	}
	for i := 0; i+1 < len(chain); i++ {
		p.addNode(chain[i], nil)
		p.addNode(chain[i+1], nil)
		p.doc.Edges = append(p.doc.Edges, Edge{From: chain[i], To: chain[i+1], Attrs: attrs})
	}
	return nil
}

func (p *parser) skipPort() {
	for p.isPunct(":") {
		p.pos += 2
	}
}

func (p *parser) addNode(name string, attrs Attrs) {
	i, ok := p.doc.index[name]
	if !ok {
		i = len(p.doc.Nodes)
		p.doc.index[name] = i
		p.doc.Nodes = append(p.doc.Nodes, Node{Name: name, Attrs: Attrs{}})
	}
	for k, v := range attrs {
		p.doc.Nodes[i].Attrs[k] = v
	}
}

// parseAttrList parses one or more bracketed attribute lists.
func (p *parser) parseAttrList() (Attrs, error) {
	attrs := Attrs{}
	for p.isPunct("[") {
		p.pos++
		for {
			t, ok := p.next()
			if !ok {
				return nil, fmt.Errorf("%w: unterminated attribute list", ErrSyntax)
			}
			if t.kind == tokPunct && t.text == "]" {
				break
			}
			if t.kind == tokPunct && (t.text == "," || t.text == ";") {
				continue
			}
			if t.kind != tokID {
				return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, t.text, t.pos)
			}
			if !p.isPunct("=") {
				attrs[t.text] = "true"
				continue
			}
			p.pos++
			v, ok := p.next()
			if !ok || v.kind != tokID {
				return nil, fmt.Errorf("%w: expected value for %s", ErrSyntax, t.text)
			}
			attrs[t.text] = v.text
		}
	}
	return attrs, nil
}

// =============================================================================
// Attribute Values
// =============================================================================

// Point is a coordinate in Graphviz points, y axis pointing up.
type Point struct{ X, Y float64 }

// ParsePoint parses a "x,y" position, ignoring a trailing "!" pin marker.
func ParsePoint(s string) (Point, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "!")
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return Point{}, fmt.Errorf("%w: bad point %q", ErrSyntax, s)
	}
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: bad point %q", ErrSyntax, s)
	}
	// "x,y,z" in 3D output: keep the first two
	ys, _, _ = strings.Cut(ys, ",")
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: bad point %q", ErrSyntax, s)
	}
	return Point{x, y}, nil
}

// ParseBox parses a "llx,lly,urx,ury" bounding box.
func ParseBox(s string) (ll, ur Point, err error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 4 {
		return Point{}, Point{}, fmt.Errorf("%w: bad box %q", ErrSyntax, s)
	}
	var f [4]float64
	for i, part := range parts {
		if f[i], err = strconv.ParseFloat(part, 64); err != nil {
			return Point{}, Point{}, fmt.Errorf("%w: bad box %q", ErrSyntax, s)
		}
	}
	return Point{f[0], f[1]}, Point{f[2], f[3]}, nil
}

// ParseSpline parses an edge "pos" attribute into the points the edge
// passes through, from tail to head. Start ("s,") and end ("e,") arrow
// points are placed at the ends.
func ParseSpline(s string) ([]Point, error) {
	var start, end *Point
	var pts []Point
	for _, field := range strings.Fields(s) {
		switch {
		case strings.HasPrefix(field, "e,"):
			p, err := ParsePoint(field[2:])
			if err != nil {
				return nil, err
			}
			end = &p
		case strings.HasPrefix(field, "s,"):
			p, err := ParsePoint(field[2:])
			if err != nil {
				return nil, err
			}
			start = &p
		default:
			p, err := ParsePoint(field)
			if err != nil {
				return nil, err
			}
			pts = append(pts, p)
		}
	}
	if start != nil {
		pts = append([]Point{*start}, pts...)
	}
	if end != nil {
		pts = append(pts, *end)
	}
	if len(pts) < 2 {
		return nil, fmt.Errorf("%w: spline %q has fewer than two points", ErrSyntax, s)
	}
	return pts, nil
}
