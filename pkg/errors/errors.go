// Package errors provides structured error types for CodeFlow.
//
// Every failure that reaches a user carries a machine-readable [Code] so the
// CLI, the local server and the presentation shell can translate it into a
// non-fatal message without string matching.
//
// # Error Codes
//
// Codes are grouped by origin:
//   - INVALID_*: rejected input (formats, node ids, paths)
//   - MALFORMED_GRAPH: an analysis result that violates referential integrity
//   - UPLOAD_FAILED, EXPORT_FAILED: collaborator failures
//   - LAYOUT_FAILED: the layout engine could not produce positions
//   - STALE_RESULT: work that finished after newer data arrived
//   - NETWORK_ERROR, TIMEOUT, NOT_FOUND: transport level failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidFormat, "unsupported export format: %s", f)
//	if errors.Is(err, errors.ErrCodeInvalidFormat) {
//	    // show the supported formats
//	}
//
//	err = errors.Wrap(errors.ErrCodeExportFailed, cause, "export %s", f)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidNodeID Code = "INVALID_NODE_ID"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Presentation errors
	ErrCodeMalformedGraph Code = "MALFORMED_GRAPH"
	ErrCodeUploadFailed   Code = "UPLOAD_FAILED"
	ErrCodeExportFailed   Code = "EXPORT_FAILED"
	ErrCodeLayoutFailed   Code = "LAYOUT_FAILED"
	ErrCodeStaleResult    Code = "STALE_RESULT"

	// Resource and network errors
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeNetwork  Code = "NETWORK_ERROR"
	ErrCodeTimeout  Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// StatusError describes a non-success response from an HTTP collaborator.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}
