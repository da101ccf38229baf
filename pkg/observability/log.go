package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level, errors at warn.
// It implements all hook interfaces, so one value can be registered for
// each category.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks writing to logger (log.Default() when nil).
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{logger: logger.WithPrefix("hooks")}
}

// Install registers h for every hook category.
func (h *LogHooks) Install() {
	SetPipelineHooks(h)
	SetInteractionHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) done(msg string, err error, kv ...any) {
	if err != nil {
		h.logger.Warn(msg, append(kv, "err", err)...)
		return
	}
	h.logger.Debug(msg, kv...)
}

func (h *LogHooks) OnNormalize(_ context.Context, nodes, edges int, err error) {
	h.done("normalize", err, "nodes", nodes, "edges", edges)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, engine string, nodes int) {
	h.logger.Debug("layout start", "engine", engine, "nodes", nodes)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, engine string, d time.Duration, err error) {
	h.done("layout complete", err, "engine", engine, "duration", d.Round(time.Millisecond))
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.done("render complete", err, "formats", formats, "duration", d.Round(time.Millisecond))
}

func (h *LogHooks) OnInspect(_ context.Context, id string) {
	h.logger.Debug("inspect", "node", id)
}

func (h *LogHooks) OnRelease(_ context.Context, id string) {
	h.logger.Debug("release", "node", id)
}

func (h *LogHooks) OnExport(_ context.Context, format, path string, d time.Duration, err error) {
	h.done("export", err, "format", format, "path", path, "duration", d.Round(time.Millisecond))
}

func (h *LogHooks) OnModelReplaced(_ context.Context, version uint64, nodes int) {
	h.logger.Debug("model replaced", "version", version, "nodes", nodes)
}

func (h *LogHooks) OnStaleResult(_ context.Context, kind string, version uint64) {
	h.logger.Debug("stale result dropped", "kind", kind, "version", version)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "host", host, "path", path, "status", status, "duration", d.Round(time.Millisecond))
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Warn("request failed", "method", method, "host", host, "path", path, "err", err)
}

var (
	_ PipelineHooks    = (*LogHooks)(nil)
	_ InteractionHooks = (*LogHooks)(nil)
	_ CacheHooks       = (*LogHooks)(nil)
	_ HTTPHooks        = (*LogHooks)(nil)
)
