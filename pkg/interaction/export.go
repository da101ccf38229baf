package interaction

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	errs "github.com/Sohailsaifi/CodeFlow/pkg/errors"
	"github.com/Sohailsaifi/CodeFlow/pkg/graph"
	"github.com/Sohailsaifi/CodeFlow/pkg/observability"
)

// ExportBaseName is the file name every export is saved under, with the
// format as extension.
const ExportBaseName = "code_analysis"

// ExportError reports a failed export. No file is left behind.
type ExportError struct {
	Format string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Format, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// ExportFileName returns the file name of an export in the given format.
func ExportFileName(format string) string {
	return ExportBaseName + "." + format
}

// Export fetches the current graph in format (svg, png or json) and saves
// it in dir as code_analysis.{format}, returning the path. The payload is
// written to a temporary file and renamed into place, so a failed export
// leaves no partial file. An export that finishes after the model was
// replaced is discarded.
func (c *Controller) Export(ctx context.Context, format, dir string) (path string, err error) {
	start := time.Now()
	defer func() {
		observability.Interaction().OnExport(ctx, format, path, time.Since(start), err)
	}()

	fail := func(cause error) (string, error) {
		c.logger.Warn("export failed", "format", format, "err", cause)
		return "", &ExportError{Format: format, Err: cause}
	}

	if err := errs.ValidateExportFormat(format); err != nil {
		return fail(err)
	}
	if dir == "" {
		dir = "."
	}
	if err := errs.ValidateOutputDir(dir); err != nil {
		return fail(err)
	}

	c.mu.Lock()
	version, loaded, exporter := c.version, c.graph != nil, c.exporter
	c.mu.Unlock()
	if !loaded {
		return fail(errs.New(errs.ErrCodeNotFound, "no graph loaded"))
	}
	if exporter == nil {
		return fail(errs.New(errs.ErrCodeUnsupported, "no export collaborator configured"))
	}

	data, err := exporter.Fetch(ctx, format)
	if err != nil {
		return fail(err)
	}
	if format == "json" {
		if _, err := graph.UnmarshalGraph(data); err != nil {
			return fail(errs.Wrap(errs.ErrCodeExportFailed, err, "json export is not a valid graph"))
		}
	}

	if c.Version() != version {
		observability.Interaction().OnStaleResult(ctx, "export", version)
		return fail(errs.New(errs.ErrCodeStaleResult, "model changed during export"))
	}

	path = filepath.Join(dir, ExportFileName(format))
	if err := writeAtomic(path, data); err != nil {
		return fail(errs.Wrap(errs.ErrCodeExportFailed, err, "save %s", path))
	}
	c.logger.Info("exported", "format", format, "path", path, "bytes", len(data))
	return path, nil
}

// writeAtomic writes data to a temporary file next to path and renames it
// into place.
func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
