package layout

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	errs "github.com/Sohailsaifi/CodeFlow/pkg/errors"
	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
	"github.com/Sohailsaifi/CodeFlow/pkg/observability"
)

// Result is a layout tagged with the model version it was computed for.
type Result struct {
	Version uint64
	Layout  graph.Layout
}

// Adapter runs layouts for successive versions of a model.
//
// Versions must increase with every model replacement. A version is laid
// out at most once; asking again returns the memoized result. A request
// for a version older than the newest one seen fails with STALE_RESULT,
// and a layout that finishes after a newer version was requested is
// discarded the same way, so newer data always wins.
//
// Until [Adapter.Mount] is called there is nowhere to draw, so requests
// are queued instead of run. Only the newest queued request survives.
type Adapter struct {
	opts Options

	mu      sync.Mutex
	mounted bool
	pending *pendingRequest
	latest  uint64
	current *Result

	flight singleflight.Group
}

type pendingRequest struct {
	version uint64
	g       *graph.Graph
}

// NewAdapter returns an unmounted adapter that lays out with opts.
func NewAdapter(opts Options) *Adapter {
	return &Adapter{opts: opts}
}

// Request lays out g as model version. It returns ok=false without error
// when the request was queued because the adapter is not mounted yet.
func (a *Adapter) Request(ctx context.Context, version uint64, g *graph.Graph) (Result, bool, error) {
	a.mu.Lock()
	if !a.mounted {
		if a.pending == nil || version >= a.pending.version {
			a.pending = &pendingRequest{version: version, g: g}
		}
		a.mu.Unlock()
		return Result{}, false, nil
	}
	if version < a.latest {
		a.mu.Unlock()
		observability.Interaction().OnStaleResult(ctx, "layout", version)
		return Result{}, false, errs.New(errs.ErrCodeStaleResult, "layout request for version %d superseded by %d", version, a.latest)
	}
	if a.current != nil && a.current.Version == version {
		res := *a.current
		a.mu.Unlock()
		return res, true, nil
	}
	a.latest = version
	a.mu.Unlock()

	v, err, _ := a.flight.Do(strconv.FormatUint(version, 10), func() (any, error) {
		return Run(ctx, g, a.opts)
	})
	if err != nil {
		return Result{}, false, err
	}
	res := Result{Version: version, Layout: v.(graph.Layout)}

	a.mu.Lock()
	defer a.mu.Unlock()
	if version < a.latest {
		observability.Interaction().OnStaleResult(ctx, "layout", version)
		return Result{}, false, errs.New(errs.ErrCodeStaleResult, "layout for version %d finished after version %d was requested", version, a.latest)
	}
	a.current = &res
	return res, true, nil
}

// Mount marks the drawing surface ready and runs the newest queued
// request, if any. Later calls are no-ops.
func (a *Adapter) Mount(ctx context.Context) (Result, bool, error) {
	a.mu.Lock()
	if a.mounted {
		a.mu.Unlock()
		return Result{}, false, nil
	}
	a.mounted = true
	p := a.pending
	a.pending = nil
	a.mu.Unlock()

	if p == nil {
		return Result{}, false, nil
	}
	return a.Request(ctx, p.version, p.g)
}

// Mounted reports whether Mount was called.
func (a *Adapter) Mounted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mounted
}

// Pending returns the version of the queued request, if any.
func (a *Adapter) Pending() (uint64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pending == nil {
		return 0, false
	}
	return a.pending.version, true
}

// Current returns the newest computed layout.
func (a *Adapter) Current() (Result, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return Result{}, false
	}
	return *a.current, true
}

// Forget drops the current layout, e.g. when the model is cleared. The
// stale-version floor is kept.
func (a *Adapter) Forget() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = nil
	a.pending = nil
}
