package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Sohailsaifi/CodeFlow/pkg/cache"
	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
	"github.com/Sohailsaifi/CodeFlow/pkg/observability"
	"github.com/Sohailsaifi/CodeFlow/pkg/render"
	"github.com/Sohailsaifi/CodeFlow/pkg/render/nodelink"
	"github.com/Sohailsaifi/CodeFlow/pkg/render/sink"
)

// RenderWithCacheInfo renders every requested format, concurrently, and
// reports whether all of them came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, s render.Scene, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	hash, err := sceneHash(s)
	if err != nil {
		return nil, false, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, f := range opts.Formats {
			data, ok, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(f)))
			if err != nil || !ok {
				break
			}
			artifacts[f] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	var mu sync.Mutex
	rendered := make(map[string][]byte, len(opts.Formats))
	eg, egCtx := errgroup.WithContext(ctx)
	for _, f := range opts.Formats {
		eg.Go(func() error {
			data, err := RenderFormat(egCtx, s, f, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", f, err)
			}
			mu.Lock()
			rendered[f] = data
			mu.Unlock()
			return nil
		})
	}
	err = eg.Wait()
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for f, data := range rendered {
		key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(f))
		if err := r.Cache.Set(ctx, key, data, TTLArtifact); err != nil {
			opts.Logger.Debug("artifact cache write failed", "format", f, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return rendered, false, nil
}

// Render is [Runner.RenderWithCacheInfo] without the cache hit flag.
func (r *Runner) Render(ctx context.Context, s render.Scene, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, s, opts)
	return artifacts, err
}

// RenderFormat renders one format without caching.
func RenderFormat(ctx context.Context, s render.Scene, format string, opts Options) ([]byte, error) {
	switch format {
	case render.FormatSVG:
		var svgOpts []sink.SVGOption
		if opts.Legend {
			svgOpts = append(svgOpts, sink.WithLegend())
		}
		if opts.Popups {
			svgOpts = append(svgOpts, sink.WithPopups())
		}
		return sink.RenderSVG(s, svgOpts...), nil
	case render.FormatPNG:
		pngOpts := []sink.PNGOption{sink.WithScale(opts.Scale)}
		if opts.Legend {
			pngOpts = append(pngOpts, sink.WithPNGLegend())
		}
		return sink.RenderPNG(s, pngOpts...)
	case render.FormatJSON:
		return sink.RenderJSON(s.Graph)
	case render.FormatDOT:
		p := opts.Params.WithDefaults()
		return []byte(nodelink.ToDOT(s.Graph, nodelink.Options{RankSep: p.RankSep, NodeSep: p.NodeSep})), nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// sceneHash keys artifacts by both the layout and the graph, since popups
// and JSON draw on node metadata the layout does not carry.
func sceneHash(s render.Scene) (string, error) {
	data, err := graph.MarshalLayout(s.Layout)
	if err != nil {
		return "", fmt.Errorf("serialize layout for cache key: %w", err)
	}
	return cache.Hash(append(data, s.Graph.Hash()...)), nil
}
