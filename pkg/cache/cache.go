// Package cache stores computed layouts and rendered artifacts so repeated
// renders of an unchanged graph skip the layout engine.
//
// Three backends implement [Cache]:
//
//   - [NullCache]: caching disabled
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance, for `codeflow serve` deployments
//
// Keys come from a [Keyer] so that every component derives the same key for
// the same inputs:
//
//	key := keyer.LayoutKey(g.Hash(), cache.LayoutKeyOpts{Engine: "layered", RankSep: 100})
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// A miss is reported as (nil, false, nil), never as an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer derives cache keys from the inputs of a computation.
type Keyer interface {
	// HTTPKey keys a collaborator response.
	HTTPKey(namespace, key string) string
	// LayoutKey keys a layout of the graph with the given hash.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	// ArtifactKey keys a rendered artifact of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the layout inputs besides the graph itself.
type LayoutKeyOpts struct {
	Engine  string  `json:"engine"`
	RankSep float64 `json:"ranksep"`
	NodeSep float64 `json:"nodesep"`
	Padding float64 `json:"padding"`
}

// ArtifactKeyOpts are the render inputs besides the layout itself.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Legend bool    `json:"legend"`
	Popups bool    `json:"popups"`
	Scale  float64 `json:"scale,omitempty"`
}

// DefaultKeyer produces keys of the form "kind:sha256(inputs)".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey generates a key for a collaborator response.
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// LayoutKey generates a key for a layout.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
