package shell

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Sohailsaifi/CodeFlow/pkg/analysis"
	errs "github.com/Sohailsaifi/CodeFlow/pkg/errors"
	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
	"github.com/Sohailsaifi/CodeFlow/pkg/interaction"
	"github.com/Sohailsaifi/CodeFlow/pkg/layout"
	"github.com/Sohailsaifi/CodeFlow/pkg/observability"
)

// Uploader sends a source file or archive to the analysis backend.
type Uploader interface {
	Upload(ctx context.Context, name string, r io.Reader) (analysis.Result, error)
}

// UploadError reports a failed upload. The previous model is kept.
type UploadError struct {
	Name string
	Err  error
}

func (e *UploadError) Error() string { return fmt.Sprintf("upload %s: %v", e.Name, e.Err) }

func (e *UploadError) Unwrap() error { return e.Err }

// Model is one accepted version of the graph. Models are immutable; a new
// layout or a new result produces a new Model value.
type Model struct {
	Version  uint64
	ID       uuid.UUID
	Source   string
	Graph    *graph.Graph
	Layout   graph.Layout
	LoadedAt time.Time
}

// Ticket orders concurrent model replacements. Only the newest ticket may
// apply a result.
type Ticket struct{ seq uint64 }

// Options configures a [Shell].
type Options struct {
	// Uploader is the analysis backend client. Nil disables Upload.
	Uploader Uploader

	// Adapter runs layouts. Nil creates a mounted adapter with default
	// layout options.
	Adapter *layout.Adapter

	// Controller receives read-only views of each model. Nil creates one
	// without an export collaborator.
	Controller *interaction.Controller

	Logger *log.Logger
}

// Shell owns the current model. It is safe for concurrent use.
type Shell struct {
	uploader   Uploader
	adapter    *layout.Adapter
	controller *interaction.Controller
	logger     *log.Logger

	mu      sync.Mutex
	model   *Model
	ticket  uint64
	version uint64
	notice  string
}

// New creates an empty Shell.
func New(opts Options) *Shell {
	s := &Shell{
		uploader:   opts.Uploader,
		adapter:    opts.Adapter,
		controller: opts.Controller,
		logger:     opts.Logger,
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.adapter == nil {
		s.adapter = layout.NewAdapter(layout.Options{Logger: s.logger})
		s.adapter.Mount(context.Background())
	}
	if s.controller == nil {
		s.controller = interaction.New(nil, interaction.WithLogger(s.logger))
	}
	return s
}

// Controller returns the interaction controller bound to this shell.
func (s *Shell) Controller() *interaction.Controller { return s.controller }

// Begin issues a ticket for a model replacement. Any earlier ticket
// becomes stale.
func (s *Shell) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticket++
	return Ticket{seq: s.ticket}
}

func (s *Shell) currentLocked(t Ticket) bool { return t.seq == s.ticket }

// Apply normalizes raw, lays it out and installs it as the new model, if
// t is still the newest ticket. A malformed result keeps the previous
// model and returns the *graph.MalformedGraphError.
func (s *Shell) Apply(ctx context.Context, t Ticket, raw analysis.Result) (Model, error) {
	return s.apply(ctx, t, raw, "")
}

func (s *Shell) apply(ctx context.Context, t Ticket, raw analysis.Result, source string) (Model, error) {
	if err := s.checkTicket(ctx, t); err != nil {
		return Model{}, err
	}

	g, err := graph.Normalize(raw)
	observability.Pipeline().OnNormalize(ctx, len(raw.Nodes), len(raw.Edges), err)
	if err != nil {
		s.fail(t, err)
		s.logger.Warn("rejected analysis result", "source", source, "err", err)
		return Model{}, err
	}

	s.mu.Lock()
	if !s.currentLocked(t) {
		s.mu.Unlock()
		return Model{}, s.stale(ctx, t)
	}
	s.version++
	version := s.version
	s.mu.Unlock()

	res, ok, err := s.adapter.Request(ctx, version, g)
	if err != nil {
		if errs.Is(err, errs.ErrCodeStaleResult) {
			return Model{}, err
		}
		s.fail(t, err)
		return Model{}, err
	}

	m := &Model{
		Version:  version,
		ID:       uuid.New(),
		Source:   source,
		Graph:    g,
		LoadedAt: time.Now(),
	}
	if ok {
		m.Layout = res.Layout
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(t) {
		return Model{}, s.stale(ctx, t)
	}
	s.controller.Teardown(ctx)
	s.model = m
	s.notice = ""
	if ok && !res.Layout.Positioned && res.Layout.Failure != "" {
		s.notice = "Layout failed, showing a simple grid: " + res.Layout.Failure
	}
	s.controller.Attach(ctx, m.Version, m.Graph, m.Layout)

	observability.Interaction().OnModelReplaced(ctx, m.Version, g.NodeCount())
	s.logger.Info("model replaced", "version", m.Version, "id", m.ID, "nodes", g.NodeCount(), "edges", g.EdgeCount())
	return *m, nil
}

func (s *Shell) checkTicket(ctx context.Context, t Ticket) error {
	s.mu.Lock()
	current := s.currentLocked(t)
	s.mu.Unlock()
	if !current {
		return s.stale(ctx, t)
	}
	return nil
}

func (s *Shell) stale(ctx context.Context, t Ticket) error {
	observability.Interaction().OnStaleResult(ctx, "model", t.seq)
	return errs.New(errs.ErrCodeStaleResult, "result superseded by a newer one")
}

// fail records a user-visible message for err, unless a newer replacement
// has started since t was issued.
func (s *Shell) fail(t Ticket, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentLocked(t) {
		s.notice = errs.UserMessage(err)
	}
}

// Load installs raw as a new model.
func (s *Shell) Load(ctx context.Context, raw analysis.Result) (Model, error) {
	return s.apply(ctx, s.Begin(), raw, "")
}

// LoadFile reads an analysis result (or an exported canonical graph) from
// path and installs it.
func (s *Shell) LoadFile(ctx context.Context, path string) (Model, error) {
	t := s.Begin()
	raw, err := analysis.ReadFile(path)
	if err != nil {
		err = errs.Wrap(errs.ErrCodeInvalidInput, err, "read %s", path)
		s.fail(t, err)
		return Model{}, err
	}
	return s.apply(ctx, t, raw, path)
}

// Upload sends r to the analysis backend as name and installs the result.
func (s *Shell) Upload(ctx context.Context, name string, r io.Reader) (Model, error) {
	t := s.Begin()
	if s.uploader == nil {
		err := &UploadError{Name: name, Err: errs.New(errs.ErrCodeUnsupported, "no analysis backend configured")}
		s.fail(t, err)
		return Model{}, err
	}

	raw, err := s.uploader.Upload(ctx, name, r)
	if err != nil {
		uerr := &UploadError{Name: name, Err: err}
		s.fail(t, uerr)
		s.logger.Warn("upload failed", "file", name, "err", err)
		return Model{}, uerr
	}
	return s.apply(ctx, t, raw, name)
}

// Mount tells the shell the drawing surface is ready. A layout queued
// before mounting is computed and attached.
func (s *Shell) Mount(ctx context.Context) error {
	res, ok, err := s.adapter.Mount(ctx)
	if err != nil || !ok {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model == nil || s.model.Version != res.Version {
		return nil
	}
	m := *s.model
	m.Layout = res.Layout
	s.model = &m
	s.controller.Relayout(m.Version, m.Layout)
	return nil
}

// Clear discards the model. Replacements in flight become stale.
func (s *Shell) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticket++
	s.controller.Teardown(ctx)
	s.controller.Attach(ctx, 0, nil, graph.Layout{})
	s.adapter.Forget()
	s.model = nil
	s.notice = ""
}

// Model returns the current model.
func (s *Shell) Model() (Model, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model == nil {
		return Model{}, false
	}
	return *s.model, true
}

// Notice returns the last user-visible error message, or "".
func (s *Shell) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

// DismissNotice clears the message.
func (s *Shell) DismissNotice() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = ""
}
