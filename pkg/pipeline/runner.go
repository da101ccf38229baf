package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Sohailsaifi/CodeFlow/pkg/analysis"
	"github.com/Sohailsaifi/CodeFlow/pkg/cache"
	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
	"github.com/Sohailsaifi/CodeFlow/pkg/layout"
	"github.com/Sohailsaifi/CodeFlow/pkg/observability"
	"github.com/Sohailsaifi/CodeFlow/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger; multiple
// goroutines can use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses the default keyer.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs the complete pipeline on an analysis result.
func (r *Runner) Execute(ctx context.Context, raw analysis.Result, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)
	res := &Result{}

	start := time.Now()
	g, err := r.Normalize(ctx, raw)
	if err != nil {
		return nil, err
	}
	res.Graph = g
	res.GraphHash = g.Hash()
	res.Stats.NormalizeTime = time.Since(start)
	res.Stats.NodeCount = g.NodeCount()
	res.Stats.EdgeCount = g.EdgeCount()

	start = time.Now()
	l, err := r.Layout(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	res.Layout = l
	res.Stats.LayoutTime = time.Since(start)
	r.Logger.Info("computed layout",
		"engine", l.Engine,
		"positioned", l.Positioned,
		"duration", res.Stats.LayoutTime)

	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, render.NewScene(g, l), opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	res.Artifacts = artifacts
	res.CacheInfo.RenderHit = hit
	res.Stats.RenderTime = time.Since(start)
	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", res.Stats.RenderTime)

	return res, nil
}

// Normalize builds the canonical graph of raw. Malformed input is returned
// as a *graph.MalformedGraphError.
func (r *Runner) Normalize(ctx context.Context, raw analysis.Result) (*graph.Graph, error) {
	g, err := graph.Normalize(raw)
	observability.Pipeline().OnNormalize(ctx, len(raw.Nodes), len(raw.Edges), err)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("normalized graph", "nodes", g.NodeCount(), "edges", g.EdgeCount())
	return g, nil
}

// Layout positions g. Engine failures yield a grid placement, never an
// error; the error is reserved for invalid options.
func (r *Runner) Layout(ctx context.Context, g *graph.Graph, opts Options) (graph.Layout, error) {
	r.applyLogger(&opts)
	lc := r.Cache
	if opts.Refresh {
		lc = writeOnly{r.Cache}
	}
	return layout.Run(ctx, g, layout.Options{
		Engine: opts.Engine,
		Params: opts.Params,
		Cache:  lc,
		Keyer:  r.Keyer,
		TTL:    TTLLayout,
		Logger: opts.Logger,
	})
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// writeOnly hides cached entries so a refresh recomputes, while still
// storing the fresh result.
type writeOnly struct{ cache.Cache }

func (writeOnly) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
