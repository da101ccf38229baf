package integrations

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/Sohailsaifi/CodeFlow/pkg/analysis"
	"github.com/Sohailsaifi/CodeFlow/pkg/cache"
	errs "github.com/Sohailsaifi/CodeFlow/pkg/errors"
	"github.com/Sohailsaifi/CodeFlow/pkg/observability"
)

// Analysis backend endpoints.
const (
	EndpointFile    = "upload-file/"
	EndpointProject = "analyze-project/"
)

// MaxUploadSize bounds the payload read from the caller.
const MaxUploadSize = 64 << 20

// UploadClient sends source files or zipped projects to the analysis
// backend and decodes the returned analysis result.
type UploadClient struct {
	*Client
}

// NewUploadClient creates an UploadClient for the backend at baseURL
// (default [DefaultBaseURL]). Responses are cached by payload digest when
// [WithResultCache] is given.
func NewUploadClient(baseURL string, opts ...Option) (*UploadClient, error) {
	c, err := NewClient(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &UploadClient{Client: c}, nil
}

// EndpointFor returns the backend endpoint for a file name: zip archives
// are analyzed as projects, everything else as a single file.
func EndpointFor(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".zip") {
		return EndpointProject
	}
	return EndpointFile
}

// Upload posts r as the multipart field "file" named name and decodes the
// analysis result. The result is not normalized.
func (c *UploadClient) Upload(ctx context.Context, name string, r io.Reader) (analysis.Result, error) {
	name = filepath.Base(name)
	if err := errs.ValidateFilename(name); err != nil {
		return analysis.Result{}, err
	}

	content, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return analysis.Result{}, errs.Wrap(errs.ErrCodeUploadFailed, err, "read %s", name)
	}
	if len(content) > MaxUploadSize {
		return analysis.Result{}, errs.New(errs.ErrCodeUploadFailed, "%s exceeds %d MiB", name, MaxUploadSize>>20)
	}

	endpoint := EndpointFor(name)
	key := c.keyer.HTTPKey("upload", endpoint+name+":"+cache.Hash(content))
	if data, ok, _ := c.cache.Get(ctx, key); ok {
		if res, err := analysis.Unmarshal(data); err == nil {
			observability.Cache().OnCacheHit(ctx, "upload")
			return res, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "upload")

	body, contentType, err := multipartBody(name, content)
	if err != nil {
		return analysis.Result{}, errs.Wrap(errs.ErrCodeUploadFailed, err, "encode %s", name)
	}
	data, err := c.do(ctx, request{
		method:      "POST",
		path:        endpoint,
		body:        body,
		contentType: contentType,
		accept:      "application/json",
	})
	if err != nil {
		return analysis.Result{}, errs.Wrap(errs.ErrCodeUploadFailed, err, "upload %s failed", name)
	}

	res, err := analysis.Unmarshal(data)
	if err != nil {
		return analysis.Result{}, errs.Wrap(errs.ErrCodeUploadFailed, err, "decode analysis of %s", name)
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, "upload", len(data))
	}
	return res, nil
}

func multipartBody(name string, content []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
