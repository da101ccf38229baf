package layout

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Sohailsaifi/CodeFlow/pkg/cache"
	errs "github.com/Sohailsaifi/CodeFlow/pkg/errors"
	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
	"github.com/Sohailsaifi/CodeFlow/pkg/observability"
	"github.com/Sohailsaifi/CodeFlow/pkg/style"
)

// DefaultTimeout bounds a single engine run.
const DefaultTimeout = 30 * time.Second

// Options configures [Run].
type Options struct {
	Engine  string        // engine name; empty selects "layered"
	Params  Params        // zero fields take defaults
	Timeout time.Duration // zero uses DefaultTimeout

	// Cache stores positioned layouts keyed by graph hash, engine and
	// params. Nil disables caching.
	Cache cache.Cache
	Keyer cache.Keyer
	TTL   time.Duration

	Logger *log.Logger
}

// Run computes the layout of g. The returned error is reserved for
// invalid options; engine failures produce a [Grid] placement with
// Positioned false instead.
func Run(ctx context.Context, g *graph.Graph, opts Options) (graph.Layout, error) {
	engine, err := Lookup(opts.Engine)
	if err != nil {
		return graph.Layout{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid layout options")
	}
	p := opts.Params.WithDefaults()
	if err := p.Validate(); err != nil {
		return graph.Layout{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid layout options")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if g == nil {
		g = &graph.Graph{}
	}

	key := layoutKey(g, engine.Name(), p, opts.Keyer)
	if l, ok := cachedLayout(ctx, opts.Cache, key, logger); ok {
		return l, nil
	}

	sheet := style.ResolveAll(g)
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, engine.Name(), g.NodeCount())
	start := time.Now()

	res, err := runEngine(ctx, engine, g, sheet, p, opts.Timeout)
	if err == nil {
		err = check(res, g)
	}
	hooks.OnLayoutComplete(ctx, engine.Name(), time.Since(start), err)

	if err != nil {
		failure := errs.Wrap(errs.ErrCodeLayoutFailed, err, "layout failed")
		logger.Warn("layout failed, using grid placement", "engine", engine.Name(), "err", err)
		res = Grid(g, sheet, p, engine.Name(), failure)
	}
	res.Groups = RecursiveGroups(g)

	if res.Positioned {
		storeLayout(ctx, opts.Cache, key, res, opts.TTL, logger)
	}
	return res, nil
}

// runEngine runs the engine under a deadline. Engines that ignore ctx are
// abandoned when the deadline passes.
func runEngine(ctx context.Context, e Engine, g *graph.Graph, sheet *style.Sheet, p Params, timeout time.Duration) (graph.Layout, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		l   graph.Layout
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("engine panic: %v", r)}
			}
		}()
		l, err := e.Layout(ctx, g, sheet, p)
		done <- result{l, err}
	}()

	select {
	case r := <-done:
		return r.l, r.err
	case <-ctx.Done():
		return graph.Layout{}, fmt.Errorf("%s engine: %w", e.Name(), ctx.Err())
	}
}

// check rejects engine output that cannot be drawn.
func check(l graph.Layout, g *graph.Graph) error {
	if len(l.Nodes) != len(g.Nodes) {
		return fmt.Errorf("engine placed %d of %d nodes", len(l.Nodes), len(g.Nodes))
	}
	for i, n := range l.Nodes {
		if n.ID != g.Nodes[i].ID {
			return fmt.Errorf("engine reordered nodes: got %s at %d, want %s", n.ID, i, g.Nodes[i].ID)
		}
		for _, v := range []float64{n.X, n.Y, n.Width, n.Height} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("node %s has non-finite geometry", n.ID)
			}
		}
	}
	if len(l.Edges) != len(g.Edges) {
		return fmt.Errorf("engine routed %d of %d edges", len(l.Edges), len(g.Edges))
	}
	return nil
}

// =============================================================================
// Caching
// =============================================================================

func layoutKey(g *graph.Graph, engine string, p Params, keyer cache.Keyer) string {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return keyer.LayoutKey(g.Hash(), cache.LayoutKeyOpts{
		Engine:  engine,
		RankSep: p.RankSep,
		NodeSep: p.NodeSep,
		Padding: p.Padding,
	})
}

func cachedLayout(ctx context.Context, c cache.Cache, key string, logger *log.Logger) (graph.Layout, bool) {
	if c == nil {
		return graph.Layout{}, false
	}
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		logger.Debug("layout cache read failed", "err", err)
		return graph.Layout{}, false
	}
	if !ok {
		observability.Cache().OnCacheMiss(ctx, "layout")
		return graph.Layout{}, false
	}
	l, err := graph.UnmarshalLayout(data)
	if err != nil {
		logger.Debug("discarding corrupt cached layout", "err", err)
		_ = c.Delete(ctx, key)
		return graph.Layout{}, false
	}
	observability.Cache().OnCacheHit(ctx, "layout")
	return l, true
}

func storeLayout(ctx context.Context, c cache.Cache, key string, l graph.Layout, ttl time.Duration, logger *log.Logger) {
	if c == nil {
		return
	}
	data, err := graph.MarshalLayout(l)
	if err == nil {
		err = c.Set(ctx, key, data, ttl)
	}
	if err != nil {
		logger.Debug("layout cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "layout", len(data))
}
