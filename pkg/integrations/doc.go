// Package integrations provides HTTP clients for the collaborators CodeFlow
// talks to: the analysis backend that turns uploaded source into an
// analysis result, and the export endpoint that serves a rendering of the
// current graph.
//
// # Client Pattern
//
// Both clients wrap a shared [Client] that handles base URL joining, default
// headers, retry with exponential backoff on transient failures (network
// errors and 5xx responses), and HTTP observability hooks:
//
//	uploads, err := integrations.NewUploadClient("http://localhost:8000")
//	res, err := uploads.Upload(ctx, "main.py", f)
//
//	exports, err := integrations.NewExportClient("http://localhost:8000")
//	data, err := exports.Fetch(ctx, "svg")
//
// # Errors
//
// Failures carry a coded error from [github.com/Sohailsaifi/CodeFlow/pkg/errors]:
// UPLOAD_FAILED for the analysis backend, EXPORT_FAILED for exports, with
// the transport or status error as the cause.
package integrations
