package integrations

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Sohailsaifi/CodeFlow/pkg/cache"
	errs "github.com/Sohailsaifi/CodeFlow/pkg/errors"
)

const analysisJSON = `{"nodes":[{"id":"f1","label":"a.py","type":"file"}],"edges":[]}`

var fastBackoff = cache.Backoff{Attempts: 3, Delay: time.Millisecond}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		want    string
		wantErr bool
	}{
		{"default", "", DefaultBaseURL + "/", false},
		{"trailing slash", "http://api.test/v1/", "http://api.test/v1/", false},
		{"no trailing slash", "http://api.test/v1", "http://api.test/v1/", false},
		{"bad scheme", "ftp://api.test", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.base)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewClient(%q) error = %v, wantErr %v", tt.base, err, tt.wantErr)
			}
			if err == nil && c.BaseURL() != tt.want {
				t.Errorf("BaseURL() = %q, want %q", c.BaseURL(), tt.want)
			}
		})
	}
}

func TestClientEndpoint(t *testing.T) {
	c, _ := NewClient("http://api.test/v1")
	if got, want := c.endpoint("export/svg"), "http://api.test/v1/export/svg"; got != want {
		t.Errorf("endpoint() = %q, want %q", got, want)
	}
}

func TestExportFetch(t *testing.T) {
	var gotPath, gotAccept, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotAccept, gotAuth = r.URL.Path, r.Header.Get("Accept"), r.Header.Get("Authorization")
		w.Write([]byte("<svg/>"))
	}))
	defer server.Close()

	c, err := NewExportClient(server.URL, WithHeaders(map[string]string{"Authorization": "Bearer t"}))
	if err != nil {
		t.Fatalf("NewExportClient() error: %v", err)
	}
	data, err := c.Fetch(context.Background(), "svg")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if string(data) != "<svg/>" {
		t.Errorf("Fetch() = %q, want <svg/>", data)
	}
	if gotPath != "/export/svg" {
		t.Errorf("path = %q, want /export/svg", gotPath)
	}
	if gotAccept != "image/svg+xml" {
		t.Errorf("Accept = %q, want image/svg+xml", gotAccept)
	}
	if gotAuth != "Bearer t" {
		t.Errorf("Authorization = %q, want Bearer t", gotAuth)
	}
}

func TestExportFetchInvalidFormat(t *testing.T) {
	c, _ := NewExportClient("http://unused.test")
	_, err := c.Fetch(context.Background(), "pdf")
	if !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("Fetch(pdf) error = %v, want INVALID_FORMAT", err)
	}
}

func TestExportFetchStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCalls int32
		wantNF    bool
	}{
		{"server error retried", http.StatusInternalServerError, 3, false},
		{"not found", http.StatusNotFound, 1, true},
		{"bad request", http.StatusBadRequest, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				http.Error(w, "nope", tt.status)
			}))
			defer server.Close()

			c, _ := NewExportClient(server.URL, WithBackoff(fastBackoff))
			_, err := c.Fetch(context.Background(), "png")
			if !errs.Is(err, errs.ErrCodeExportFailed) {
				t.Fatalf("Fetch() error = %v, want EXPORT_FAILED", err)
			}
			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("calls = %d, want %d", got, tt.wantCalls)
			}
			if errors.Is(err, cache.ErrNotFound) != tt.wantNF {
				t.Errorf("errors.Is(ErrNotFound) = %v, want %v", !tt.wantNF, tt.wantNF)
			}
			var se *errs.StatusError
			if !errors.As(err, &se) || se.StatusCode != tt.status {
				t.Errorf("StatusError = %v, want status %d", se, tt.status)
			}
		})
	}
}

func TestExportFetchRecovers(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(analysisJSON))
	}))
	defer server.Close()

	c, _ := NewExportClient(server.URL, WithBackoff(fastBackoff))
	data, err := c.Fetch(context.Background(), "json")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if string(data) != analysisJSON {
		t.Errorf("Fetch() = %s", data)
	}
}

func TestEndpointFor(t *testing.T) {
	tests := map[string]string{
		"main.py":     EndpointFile,
		"config.yaml": EndpointFile,
		"project.zip": EndpointProject,
		"PROJECT.ZIP": EndpointProject,
	}
	for name, want := range tests {
		if got := EndpointFor(name); got != want {
			t.Errorf("EndpointFor(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestUpload(t *testing.T) {
	var gotPath, gotName, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile() error: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		body, _ := io.ReadAll(f)
		gotName, gotBody = hdr.Filename, string(body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(analysisJSON))
	}))
	defer server.Close()

	tests := []struct {
		name     string
		filename string
		wantPath string
	}{
		{"single file", "src/main.py", "/upload-file/"},
		{"project", "project.zip", "/analyze-project/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := NewUploadClient(server.URL)
			res, err := c.Upload(context.Background(), tt.filename, strings.NewReader("print(1)"))
			if err != nil {
				t.Fatalf("Upload() error: %v", err)
			}
			if len(res.Nodes) != 1 || res.Nodes[0].ID != "f1" {
				t.Errorf("Upload() nodes = %+v", res.Nodes)
			}
			if gotPath != tt.wantPath {
				t.Errorf("path = %q, want %q", gotPath, tt.wantPath)
			}
			if gotName == "" || strings.Contains(gotName, "/") {
				t.Errorf("filename = %q, want base name", gotName)
			}
			if gotBody != "print(1)" {
				t.Errorf("body = %q, want print(1)", gotBody)
			}
		})
	}
}

func TestUploadErrors(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		filename string
		code     errs.Code
	}{
		{
			name:     "backend rejects",
			handler:  func(w http.ResponseWriter, r *http.Request) { http.Error(w, "Unsupported file type", http.StatusBadRequest) },
			filename: "a.exe",
			code:     errs.ErrCodeUploadFailed,
		},
		{
			name:     "not json",
			handler:  func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("<html>")) },
			filename: "a.py",
			code:     errs.ErrCodeUploadFailed,
		},
		{
			name:     "empty name",
			handler:  func(w http.ResponseWriter, r *http.Request) { t.Error("backend called") },
			filename: "",
			code:     errs.ErrCodeInvalidPath,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			c, _ := NewUploadClient(server.URL, WithBackoff(fastBackoff))
			_, err := c.Upload(context.Background(), tt.filename, strings.NewReader("x"))
			if !errs.Is(err, tt.code) {
				t.Errorf("Upload() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestUploadResultCache(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(analysisJSON))
	}))
	defer server.Close()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	defer fc.Close()

	c, _ := NewUploadClient(server.URL, WithResultCache(fc, nil, time.Hour))
	ctx := context.Background()
	for range 2 {
		if _, err := c.Upload(ctx, "a.py", strings.NewReader("same")); err != nil {
			t.Fatalf("Upload() error: %v", err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("backend calls = %d, want 1", got)
	}

	if _, err := c.Upload(ctx, "a.py", strings.NewReader("different")); err != nil {
		t.Fatalf("Upload() error: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("backend calls = %d, want 2", got)
	}
}
