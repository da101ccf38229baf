package cli

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	errs "github.com/Sohailsaifi/CodeFlow/pkg/errors"
	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
	"github.com/Sohailsaifi/CodeFlow/pkg/interaction"
	"github.com/Sohailsaifi/CodeFlow/pkg/render"
	"github.com/Sohailsaifi/CodeFlow/pkg/shell"
	"github.com/Sohailsaifi/CodeFlow/pkg/style"
	"github.com/Sohailsaifi/CodeFlow/pkg/watch"
)

// chipWidth bounds a node label in the rank view, in terminal cells.
const chipWidth = 18

var (
	paneStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
	rankStyle    = lipgloss.NewStyle().Foreground(colorDim).Width(8)
	focusStyle   = lipgloss.NewStyle().Bold(true).Reverse(true)
	alertStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(style.ColorAlert)).Bold(true)
	detailKey    = lipgloss.NewStyle().Foreground(colorGray).Width(14)
	statusFailed = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Key Bindings
// =============================================================================

type viewKeys struct {
	Up, Down, Left, Right key.Binding
	Release               key.Binding
	Legend                key.Binding
	ExportSVG, ExportPNG  key.Binding
	ExportJSON            key.Binding
	Reload                key.Binding
	Quit                  key.Binding
}

func newViewKeys() viewKeys {
	return viewKeys{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "rank up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "rank down")),
		Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev")),
		Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
		Release:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "leave")),
		Legend:     key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "legend")),
		ExportSVG:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "export svg")),
		ExportPNG:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "export png")),
		ExportJSON: key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "export json")),
		Reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k viewKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Release, k.Legend, k.ExportSVG, k.ExportPNG, k.ExportJSON, k.Quit}
}

func (k viewKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Release},
		{k.Legend, k.ExportSVG, k.ExportPNG, k.ExportJSON, k.Reload, k.Quit},
	}
}

// =============================================================================
// Messages
// =============================================================================

type exportDoneMsg struct {
	format string
	path   string
	err    error
}

type reloadedMsg struct {
	model shell.Model
	err   error
}

type fileChangedMsg struct{}

type watchErrMsg struct{ err error }

// =============================================================================
// ViewModel - Interactive graph browser
// =============================================================================

// ViewModel is the bubbletea model of "codeflow view". Moving the focus
// between nodes is the terminal's pointer: leaving one node and entering
// another drives the interaction controller exactly as hover does.
type ViewModel struct {
	ctx       context.Context
	shell     *shell.Shell
	ctrl      *interaction.Controller
	source    string
	exportDir string
	watcher   *watch.Watcher

	model shell.Model
	sheet *style.Sheet
	rows  [][]graph.PlacedNode // by rank, left to right
	row   int
	col   int // -1 when nothing is focused

	status    string
	statusErr bool
	keys      viewKeys
	help      help.Model
	width     int
}

// NewViewModel browses the current model of sh. source is reloaded on
// demand and, when w is set, whenever it changes.
func NewViewModel(ctx context.Context, sh *shell.Shell, source, exportDir string, w *watch.Watcher) *ViewModel {
	m := &ViewModel{
		ctx:       ctx,
		shell:     sh,
		ctrl:      sh.Controller(),
		source:    source,
		exportDir: exportDir,
		watcher:   w,
		col:       -1,
		keys:      newViewKeys(),
		help:      help.New(),
	}
	if model, ok := sh.Model(); ok {
		m.install(model)
	}
	return m
}

func (m *ViewModel) install(model shell.Model) {
	m.model = model
	m.sheet = style.ResolveAll(model.Graph)
	m.rows = rankRows(model.Layout)
	m.row, m.col = 0, -1
}

// rankRows groups placed nodes by rank and sorts each rank by x.
func rankRows(l graph.Layout) [][]graph.PlacedNode {
	byRank := map[int][]graph.PlacedNode{}
	for _, n := range l.Nodes {
		byRank[n.Rank] = append(byRank[n.Rank], n)
	}
	ranks := make([]int, 0, len(byRank))
	for r := range byRank {
		ranks = append(ranks, r)
	}
	sort.Ints(ranks)
	rows := make([][]graph.PlacedNode, 0, len(ranks))
	for _, r := range ranks {
		row := byRank[r]
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
		rows = append(rows, row)
	}
	return rows
}

func (m *ViewModel) Init() tea.Cmd {
	return m.waitForChange()
}

func (m *ViewModel) waitForChange() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	w := m.watcher
	return func() tea.Msg {
		select {
		case <-w.Changes():
			return fileChangedMsg{}
		case err := <-w.Errors():
			return watchErrMsg{err}
		}
	}
}

func (m *ViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case exportDoneMsg:
		if msg.err != nil {
			m.setStatus(true, "Export %s failed: %s", msg.format, errs.UserMessage(msg.err))
		} else {
			m.setStatus(false, "Saved %s", msg.path)
		}

	case fileChangedMsg:
		return m, tea.Batch(m.reload(), m.waitForChange())

	case watchErrMsg:
		m.setStatus(true, "Watch: %v", msg.err)
		return m, m.waitForChange()

	case reloadedMsg:
		if msg.err != nil {
			// the shell keeps the previous model and records a notice
			m.setStatus(true, "Reload failed: %s", errs.UserMessage(msg.err))
			return m, nil
		}
		m.install(msg.model)
		m.setStatus(false, "Loaded version %d", msg.model.Version)
	}
	return m, nil
}

func (m *ViewModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.ctrl.Teardown(m.ctx)
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.moveRow(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveRow(1)
	case key.Matches(msg, m.keys.Left):
		m.moveCol(-1)
	case key.Matches(msg, m.keys.Right):
		m.moveCol(1)
	case key.Matches(msg, m.keys.Release):
		if id, ok := m.focused(); ok {
			m.ctrl.Leave(m.ctx, id)
		}
		m.col = -1
	case key.Matches(msg, m.keys.Legend):
		m.ctrl.ToggleLegend()
	case key.Matches(msg, m.keys.ExportSVG):
		return m.export(render.FormatSVG)
	case key.Matches(msg, m.keys.ExportPNG):
		return m.export(render.FormatPNG)
	case key.Matches(msg, m.keys.ExportJSON):
		return m.export(render.FormatJSON)
	case key.Matches(msg, m.keys.Reload):
		return m.reload()
	}
	return nil
}

func (m *ViewModel) focused() (string, bool) {
	if m.col < 0 || m.row >= len(m.rows) || m.col >= len(m.rows[m.row]) {
		return "", false
	}
	return m.rows[m.row][m.col].ID, true
}

// focus moves the pointer to (row, col): leave the old node, enter the new.
func (m *ViewModel) focus(row, col int) {
	if prev, ok := m.focused(); ok {
		m.ctrl.Leave(m.ctx, prev)
	}
	m.row, m.col = row, col
	if id, ok := m.focused(); ok {
		if err := m.ctrl.Enter(m.ctx, id); err != nil {
			m.setStatus(true, "%s", errs.UserMessage(err))
		}
	}
}

func (m *ViewModel) moveCol(d int) {
	if len(m.rows) == 0 {
		return
	}
	if m.col < 0 {
		m.focus(m.row, 0)
		return
	}
	m.focus(m.row, clampInt(m.col+d, 0, len(m.rows[m.row])-1))
}

// moveRow jumps to the horizontally nearest node of the next rank.
func (m *ViewModel) moveRow(d int) {
	if len(m.rows) == 0 {
		return
	}
	if m.col < 0 {
		m.focus(m.row, 0)
		return
	}
	x := m.rows[m.row][m.col].X
	row := clampInt(m.row+d, 0, len(m.rows)-1)
	best, bestDist := 0, math.Inf(1)
	for i, n := range m.rows[row] {
		if dist := math.Abs(n.X - x); dist < bestDist {
			best, bestDist = i, dist
		}
	}
	m.focus(row, best)
}

func (m *ViewModel) export(format string) tea.Cmd {
	ctx, ctrl, dir := m.ctx, m.ctrl, m.exportDir
	m.setStatus(false, "Exporting %s...", format)
	return func() tea.Msg {
		path, err := ctrl.Export(ctx, format, dir)
		return exportDoneMsg{format: format, path: path, err: err}
	}
}

func (m *ViewModel) reload() tea.Cmd {
	if m.source == "" {
		return nil
	}
	ctx, sh, src := m.ctx, m.shell, m.source
	return func() tea.Msg {
		model, err := sh.LoadFile(ctx, src)
		return reloadedMsg{model: model, err: err}
	}
}

func (m *ViewModel) setStatus(isErr bool, format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.statusErr = isErr
}

// =============================================================================
// Rendering
// =============================================================================

func (m *ViewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("CodeFlow"))
	if m.model.Graph != nil {
		b.WriteString(StyleDim.Render(fmt.Sprintf("  %s · %d nodes · %d edges · v%d",
			m.source, m.model.Graph.NodeCount(), m.model.Graph.EdgeCount(), m.model.Version)))
	}
	b.WriteString("\n")
	if notice := m.shell.Notice(); notice != "" {
		b.WriteString(StyleWarning.Render(iconWarning+" "+notice) + "\n")
	}
	b.WriteString("\n")

	if m.model.Graph == nil {
		b.WriteString(StyleDim.Render("No graph loaded.") + "\n")
	} else {
		panes := []string{paneStyle.Render(m.ranksView())}
		if ov, ok := m.ctrl.Overlay(); ok {
			panes = append(panes, paneStyle.Render(m.overlayView(ov)))
		}
		if m.ctrl.LegendVisible() {
			panes = append(panes, paneStyle.Render(legendView()))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panes...))
		b.WriteString("\n")
	}

	if m.status != "" {
		st := StyleSuccess
		if m.statusErr {
			st = statusFailed
		}
		b.WriteString(st.Render(m.status) + "\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *ViewModel) ranksView() string {
	if !m.model.Layout.Positioned {
		return StyleWarning.Render("grid placement: "+m.model.Layout.Failure) + "\n" + m.rowsView()
	}
	return m.rowsView()
}

func (m *ViewModel) rowsView() string {
	lines := make([]string, 0, len(m.rows))
	for r, row := range m.rows {
		chips := make([]string, 0, len(row))
		for c, n := range row {
			chips = append(chips, m.chip(n.ID, r == m.row && c == m.col))
		}
		lines = append(lines, rankStyle.Render(fmt.Sprintf("rank %d", r))+strings.Join(chips, " "))
	}
	return strings.Join(lines, "\n")
}

// chip draws one node: its fill as color, a "!" for code smells, faint
// for dead code and builtins.
func (m *ViewModel) chip(id string, focused bool) string {
	ns := m.sheet.Node(id)
	label := runewidth.Truncate(labelOf(m.model.Graph, id), chipWidth, "…")

	st := lipgloss.NewStyle().Foreground(lipgloss.Color(ns.Fill)).Bold(ns.Bold)
	if ns.BorderLine == style.LineDashed || ns.Opacity < 1 {
		st = st.Faint(true)
	}
	if focused {
		st = st.Inherit(focusStyle)
	}
	out := st.Render("[" + label + "]")
	if n, ok := m.model.Graph.Node(id); ok && n.Metadata.HasSmells() {
		out += alertStyle.Render("!")
	}
	return out
}

func (m *ViewModel) overlayView(ov interaction.Overlay) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(ov.Label) + "\n")
	b.WriteString(StyleDim.Render(string(ov.Type)) + "\n\n")
	for _, d := range ov.Details {
		b.WriteString(detailKey.Render(d.Label) + StyleValue.Render(d.Value) + "\n")
	}

	var out []string
	for _, e := range m.model.Graph.Edges {
		if e.Source == ov.NodeID {
			out = append(out, fmt.Sprintf("%s %s %s", e.Type, iconArrow, labelOf(m.model.Graph, e.Target)))
		}
	}
	if len(out) > 0 {
		b.WriteString("\n")
		for _, line := range out {
			b.WriteString(StyleDim.Render(line) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func legendView() string {
	lines := []string{StyleTitle.Render("Graph Legend")}
	for _, e := range style.Legend() {
		var swatch string
		switch e.Kind {
		case style.LegendNode:
			st := lipgloss.NewStyle().Foreground(lipgloss.Color(e.Node.Fill))
			if e.Node.BorderColor == style.ColorAlert {
				st = st.Foreground(lipgloss.Color(style.ColorAlert))
			}
			glyph := "■"
			if e.Node.BorderLine == style.LineDashed {
				glyph = "▢"
			}
			swatch = st.Render(glyph + " ")
		case style.LegendEdge:
			glyph := "──"
			if e.Edge.Line == style.LineDashed {
				glyph = "┄┄"
			}
			swatch = lipgloss.NewStyle().Foreground(lipgloss.Color(e.Edge.Color)).Render(glyph)
		}
		lines = append(lines, swatch+" "+e.Label)
	}
	return strings.Join(lines, "\n")
}

func labelOf(g *graph.Graph, id string) string {
	if n, ok := g.Node(id); ok {
		return n.DisplayLabel()
	}
	return id
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
