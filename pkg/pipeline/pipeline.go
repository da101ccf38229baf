// Package pipeline runs the normalize → layout → render pipeline for
// CodeFlow.
//
// The CLI and the local server both go through a [Runner] so caching and
// logging behave the same everywhere:
//
//  1. Normalize: turn an analysis result into a canonical graph
//  2. Layout: position nodes and route edges (cached by graph hash)
//  3. Render: produce SVG, PNG, JSON and DOT artifacts (cached by layout)
//
// Each stage can also run on its own:
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Execute(ctx, raw, pipeline.Options{Formats: []string{"svg"}})
//	svg := res.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Sohailsaifi/CodeFlow/pkg/cache"
	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
	"github.com/Sohailsaifi/CodeFlow/pkg/layout"
	"github.com/Sohailsaifi/CodeFlow/pkg/render"
	"github.com/Sohailsaifi/CodeFlow/pkg/render/sink"
)

// Cache lifetimes.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Options configures a pipeline run. Zero values take defaults.
type Options struct {
	// Layout
	Engine string
	Params layout.Params

	// Render
	Formats []string
	Legend  bool
	Popups  bool
	Scale   float64 // PNG pixel density

	// Refresh skips cache reads; results are still written.
	Refresh bool

	Logger *log.Logger
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{render.FormatSVG}
	}
	for _, f := range o.Formats {
		if !isFormat(f) {
			return fmt.Errorf("unknown format %q", f)
		}
	}
	if o.Scale <= 0 {
		o.Scale = sink.DefaultScale
	}
	o.Params = o.Params.WithDefaults()
	if err := o.Params.Validate(); err != nil {
		return err
	}
	if _, err := layout.Lookup(o.Engine); err != nil {
		return err
	}
	return nil
}

func isFormat(f string) bool {
	for _, v := range render.Formats {
		if v == f {
			return true
		}
	}
	return false
}

// ArtifactKeyOpts returns the cache key inputs of one rendered format.
func (o Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case render.FormatSVG:
		k.Legend, k.Popups = o.Legend, o.Popups
	case render.FormatPNG:
		k.Legend, k.Scale = o.Legend, o.Scale
	}
	return k
}

// Result is the output of [Runner.Execute].
type Result struct {
	Graph     *graph.Graph
	GraphHash string
	Layout    graph.Layout
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats records the size of the graph and the time spent per stage.
type Stats struct {
	NodeCount     int
	EdgeCount     int
	NormalizeTime time.Duration
	LayoutTime    time.Duration
	RenderTime    time.Duration
}

// CacheInfo reports which stages were served from the cache.
type CacheInfo struct {
	RenderHit bool
}
