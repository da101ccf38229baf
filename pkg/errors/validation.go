package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ExportFormats lists the formats the export collaborator understands.
var ExportFormats = []string{"svg", "png", "json"}

// ValidateNodeID validates an identifier coming from an analysis result or a
// pointer event. Ids are opaque, but they are echoed into SVG attributes,
// DOT sources and log lines, so control characters are rejected.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNodeID, "node id cannot be empty")
	}

	const maxIDLength = 1024
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidNodeID, "node id too long (max %d characters)", maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNodeID, "node id %q contains control characters", id)
		}
	}
	return nil
}

// ValidateExportFormat checks that format is one of [ExportFormats].
func ValidateExportFormat(format string) error {
	for _, f := range ExportFormats {
		if f == format {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unsupported export format %q (use %s)", format, strings.Join(ExportFormats, ", "))
}

// ValidateFilename validates an output filename for safety.
// It ensures the filename is a simple basename without path components.
func ValidateFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidPath, "filename cannot be empty")
	}
	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidPath, "filename cannot contain path separators")
	}
	if filename == "." || filename == ".." {
		return New(ErrCodeInvalidPath, "filename %q is not allowed", filename)
	}
	for _, r := range filename {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "filename contains invalid characters")
		}
	}
	return nil
}

// ValidateOutputDir validates a directory that exports are written into.
// The directory comes from local configuration, so relative parents such as
// "../exports" are allowed; the path must still resolve to an absolute one.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidateOutputDir(dir string) error {
	if dir == "" {
		return New(ErrCodeInvalidPath, "output directory cannot be empty")
	}

	const maxPathLength = 4096
	if len(dir) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range dir {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if _, err := filepath.Abs(dir); err != nil {
		return Wrap(ErrCodeInvalidPath, err, "resolve %s", dir)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
