package interaction

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/Sohailsaifi/CodeFlow/pkg/analysis"
	errs "github.com/Sohailsaifi/CodeFlow/pkg/errors"
	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
	"github.com/Sohailsaifi/CodeFlow/pkg/observability"
)

// State is the inspection state of a [Controller].
type State string

const (
	StateIdle       State = "idle"
	StateInspecting State = "inspecting"
)

// Exporter fetches a rendering of the current graph in a given format.
type Exporter interface {
	Fetch(ctx context.Context, format string) ([]byte, error)
}

// Controller is the interaction state machine. It is safe for concurrent
// use.
type Controller struct {
	mu sync.Mutex

	version uint64
	graph   *graph.Graph
	layout  graph.Layout

	state     State
	inspected string
	overlay   *Overlay
	legend    bool

	exporter Exporter
	size     OverlaySize
	logger   *log.Logger
}

// Option configures a [Controller].
type Option func(*Controller)

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLegend sets the initial legend visibility. The legend is visible by
// default.
func WithLegend(visible bool) Option {
	return func(c *Controller) { c.legend = visible }
}

// WithOverlaySize overrides the overlay box used for anchoring.
func WithOverlaySize(s OverlaySize) Option {
	return func(c *Controller) { c.size = s }
}

// New creates an idle Controller with no graph attached. exporter may be
// nil, in which case Export fails.
func New(exporter Exporter, opts ...Option) *Controller {
	c := &Controller{
		state:    StateIdle,
		legend:   true,
		exporter: exporter,
		size:     DefaultOverlaySize(),
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Attach installs a read-only view of a model version. Any open overlay
// belongs to the previous model and is torn down first. A nil graph
// detaches the controller.
func (c *Controller) Attach(ctx context.Context, version uint64, g *graph.Graph, l graph.Layout) {
	c.mu.Lock()
	released := c.teardownLocked()
	c.version, c.graph, c.layout = version, g, l
	c.mu.Unlock()

	if released != "" {
		observability.Interaction().OnRelease(ctx, released)
	}
}

// Relayout swaps in a new layout of the attached version, e.g. once the
// layout engine finishes. Results for any other version are ignored.
func (c *Controller) Relayout(version uint64, l graph.Layout) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.graph == nil || version != c.version {
		return false
	}
	c.layout = l
	if c.overlay != nil {
		if ov, ok := c.buildOverlayLocked(c.inspected); ok {
			c.overlay = &ov
		}
	}
	return true
}

// Version returns the attached model version, 0 when detached.
func (c *Controller) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Enter handles the pointer entering a node. Entering a node while another
// is inspected moves the single overlay to the new node.
func (c *Controller) Enter(ctx context.Context, nodeID string) error {
	if err := errs.ValidateNodeID(nodeID); err != nil {
		return err
	}

	c.mu.Lock()
	if c.graph == nil {
		c.mu.Unlock()
		return errs.New(errs.ErrCodeNotFound, "no graph loaded")
	}
	if c.state == StateInspecting && c.inspected == nodeID {
		c.mu.Unlock()
		return nil
	}
	ov, ok := c.buildOverlayLocked(nodeID)
	if !ok {
		c.mu.Unlock()
		return errs.New(errs.ErrCodeInvalidNodeID, "unknown node %q", nodeID)
	}
	released := c.teardownLocked()
	c.state, c.inspected, c.overlay = StateInspecting, nodeID, &ov
	c.mu.Unlock()

	if released != "" {
		observability.Interaction().OnRelease(ctx, released)
	}
	observability.Interaction().OnInspect(ctx, nodeID)
	c.logger.Debug("inspect", "node", nodeID)
	return nil
}

// Leave handles the pointer leaving a node. It only closes the overlay of
// the inspected node; a late leave for an earlier node is ignored.
func (c *Controller) Leave(ctx context.Context, nodeID string) {
	c.mu.Lock()
	if c.state != StateInspecting || c.inspected != nodeID {
		c.mu.Unlock()
		return
	}
	released := c.teardownLocked()
	c.mu.Unlock()

	observability.Interaction().OnRelease(ctx, released)
	c.logger.Debug("release", "node", released)
}

// PointerAt moves the pointer to a layout coordinate and enters or leaves
// nodes accordingly. It returns the node under the pointer, if any.
func (c *Controller) PointerAt(ctx context.Context, x, y float64) (string, bool) {
	c.mu.Lock()
	n, hit := c.layout.NodeAt(x, y)
	prev := ""
	if c.state == StateInspecting {
		prev = c.inspected
	}
	c.mu.Unlock()

	if !hit {
		if prev != "" {
			c.Leave(ctx, prev)
		}
		return "", false
	}
	if err := c.Enter(ctx, n.ID); err != nil {
		return "", false
	}
	return n.ID, true
}

// Teardown closes any overlay and returns to Idle.
func (c *Controller) Teardown(ctx context.Context) {
	c.mu.Lock()
	released := c.teardownLocked()
	c.mu.Unlock()
	if released != "" {
		observability.Interaction().OnRelease(ctx, released)
	}
}

// teardownLocked resets to Idle and returns the node that was inspected.
func (c *Controller) teardownLocked() string {
	released := ""
	if c.state == StateInspecting {
		released = c.inspected
	}
	c.state, c.inspected, c.overlay = StateIdle, "", nil
	return released
}

// State returns the current state and the inspected node id.
func (c *Controller) State() (State, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.inspected
}

// Overlay returns a copy of the open overlay.
func (c *Controller) Overlay() (Overlay, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.overlay == nil {
		return Overlay{}, false
	}
	ov := *c.overlay
	ov.Details = append([]analysis.Detail(nil), ov.Details...)
	return ov, true
}

// =============================================================================
// Legend
// =============================================================================

// LegendVisible reports whether the legend is shown.
func (c *Controller) LegendVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.legend
}

// ToggleLegend flips legend visibility and returns the new state.
func (c *Controller) ToggleLegend() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.legend = !c.legend
	return c.legend
}

// SetLegendVisible shows or hides the legend.
func (c *Controller) SetLegendVisible(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.legend = v
}
