package server

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Sohailsaifi/CodeFlow/pkg/analysis"
	errs "github.com/Sohailsaifi/CodeFlow/pkg/errors"
	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
	"github.com/Sohailsaifi/CodeFlow/pkg/interaction"
	"github.com/Sohailsaifi/CodeFlow/pkg/render"
	"github.com/Sohailsaifi/CodeFlow/pkg/shell"
)

//go:embed viewer.html
var viewerHTML string

var viewerTmpl = template.Must(template.New("viewer").Parse(viewerHTML))

var contentTypes = map[string]string{
	render.FormatSVG:  "image/svg+xml",
	render.FormatPNG:  "image/png",
	render.FormatJSON: "application/json",
}

// graphSummary describes the installed model.
type graphSummary struct {
	Version    uint64 `json:"version"`
	ID         string `json:"id"`
	Source     string `json:"source,omitempty"`
	Nodes      int    `json:"nodes"`
	Edges      int    `json:"edges"`
	Engine     string `json:"engine,omitempty"`
	Positioned bool   `json:"positioned"`
	Notice     string `json:"notice,omitempty"`
}

type errorBody struct {
	Error string   `json:"error"`
	Code  string   `json:"code,omitempty"`
	IDs   []string `json:"ids,omitempty"`
}

func summarize(m shell.Model, notice string) graphSummary {
	return graphSummary{
		Version:    m.Version,
		ID:         m.ID.String(),
		Source:     m.Source,
		Nodes:      m.Graph.NodeCount(),
		Edges:      m.Graph.EdgeCount(),
		Engine:     m.Layout.Engine,
		Positioned: m.Layout.Positioned,
		Notice:     notice,
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := errs.ValidateExportFormat(format); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	m, ok := s.shell.Model()
	if !ok {
		writeError(w, http.StatusNotFound, errs.New(errs.ErrCodeNotFound, "no graph loaded"))
		return
	}

	opts := s.cfg.Render
	opts.Formats = []string{format}
	artifacts, err := s.runner.Render(r.Context(), render.NewScene(m.Graph, m.Layout), opts)
	if err != nil {
		s.logger.Error("export failed", "format", format, "err", err)
		writeError(w, http.StatusInternalServerError, errs.Wrap(errs.ErrCodeExportFailed, err, "render %s", format))
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Content-Disposition", `attachment; filename="`+interaction.ExportFileName(format)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	m, ok := s.shell.Model()
	if !ok {
		writeError(w, http.StatusNotFound, errs.New(errs.ErrCodeNotFound, "no graph loaded"))
		return
	}
	data, err := graph.MarshalGraph(m.Graph)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) handlePutGraph(w http.ResponseWriter, r *http.Request) {
	raw, err := analysis.Decode(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode analysis result"))
		return
	}

	m, err := s.shell.Load(r.Context(), raw)
	if err != nil {
		var mg *graph.MalformedGraphError
		switch {
		case errors.As(err, &mg):
			writeJSON(w, http.StatusUnprocessableEntity, errorBody{
				Error: err.Error(),
				Code:  string(errs.ErrCodeMalformedGraph),
				IDs:   mg.IDs(),
			})
		case errs.Is(err, errs.ErrCodeStaleResult):
			writeError(w, http.StatusConflict, err)
		default:
			writeError(w, http.StatusInternalServerError, err)
		}
		return
	}
	s.logger.Info("graph loaded", "version", m.Version, "nodes", m.Graph.NodeCount())
	writeJSON(w, http.StatusOK, summarize(m, s.shell.Notice()))
}

type viewerData struct {
	Loaded     bool
	Source     string
	Version    uint64
	Nodes      int
	Edges      int
	Positioned bool
	Notice     string
	SVG        template.HTML
}

func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	data := viewerData{Notice: s.shell.Notice()}
	if m, ok := s.shell.Model(); ok {
		opts := s.cfg.Render
		opts.Formats = []string{render.FormatSVG}
		opts.Popups = true
		artifacts, err := s.runner.Render(r.Context(), render.NewScene(m.Graph, m.Layout), opts)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		data.Loaded = true
		data.Source = m.Source
		data.Version = m.Version
		data.Nodes = m.Graph.NodeCount()
		data.Edges = m.Graph.EdgeCount()
		data.Positioned = m.Layout.Positioned
		// the SVG sink escapes every label and attribute it writes
		data.SVG = template.HTML(inlineSVG(artifacts[render.FormatSVG]))
	}

	var buf bytes.Buffer
	if err := viewerTmpl.Execute(&buf, data); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// inlineSVG drops the XML prolog, which has no place inside an HTML body.
func inlineSVG(doc []byte) []byte {
	if i := bytes.Index(doc, []byte("<svg")); i > 0 {
		return doc[i:]
	}
	return doc
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: errs.UserMessage(err), Code: string(errs.GetCode(err))})
}
