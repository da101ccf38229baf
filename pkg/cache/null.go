package cache

import (
	"context"
	"time"
)

// NullCache backs --no-cache and cache.backend = "none". Layouts, rendered
// artifacts and upload results are recomputed on every request; callers
// keep a single code path because every lookup is simply a miss.
type NullCache struct{}

var _ Cache = (*NullCache)(nil)

// NewNullCache returns a cache that drops every write.
func NewNullCache() Cache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (*NullCache) Delete(context.Context, string) error { return nil }

func (*NullCache) Close() error { return nil }
