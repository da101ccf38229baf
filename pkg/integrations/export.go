package integrations

import (
	"context"

	errs "github.com/Sohailsaifi/CodeFlow/pkg/errors"
)

var acceptByFormat = map[string]string{
	"svg":  "image/svg+xml",
	"png":  "image/png",
	"json": "application/json",
}

// ExportClient fetches renderings of the current graph from the export
// collaborator.
type ExportClient struct {
	*Client
}

// NewExportClient creates an ExportClient for the collaborator at baseURL
// (default [DefaultBaseURL]).
func NewExportClient(baseURL string, opts ...Option) (*ExportClient, error) {
	c, err := NewClient(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &ExportClient{Client: c}, nil
}

// Fetch requests GET {base}/export/{format} and returns the payload.
func (c *ExportClient) Fetch(ctx context.Context, format string) ([]byte, error) {
	if err := errs.ValidateExportFormat(format); err != nil {
		return nil, err
	}
	data, err := c.do(ctx, request{
		method: "GET",
		path:   "export/" + format,
		accept: acceptByFormat[format],
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeExportFailed, err, "export %s failed", format)
	}
	return data, nil
}
