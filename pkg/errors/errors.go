// Package errors provides structured error types for mavenresolve.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the library packages
//   - Machine-readable error codes for programmatic handling
//   - Distinguishing "not found" from "unreachable" so resolution can move
//     on to the next repository
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes mirror the failure taxonomy of the resolver:
//   - MALFORMED_NOTATION: a coordinate string violates the grammar
//   - METADATA_NOT_FOUND / ARTIFACT_NOT_FOUND: every repository was consulted
//   - REPOSITORY_UNREACHABLE / TRANSFER_FAILED: transport-level failures
//   - UNRESOLVABLE_DEPENDENCY: graph-level failure, aborts resolution
//   - AUTHENTICATION_FAILED: remote rejected the supplied credentials
//   - INVALID_ARTIFACT / IO_ERROR: local filesystem problems
//   - PARTIAL_DEPLOY: some files of a deployment were uploaded, others not
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMalformedNotation, "invalid coordinate %q", s)
//	if errors.Is(err, errors.ErrCodeMalformedNotation) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeRepositoryUnreachable, origErr, "fetch %s", url)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeMalformedNotation Code = "MALFORMED_NOTATION"
	ErrCodeInvalidPath       Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeMetadataNotFound Code = "METADATA_NOT_FOUND"
	ErrCodeArtifactNotFound Code = "ARTIFACT_NOT_FOUND"

	// Transport errors
	ErrCodeRepositoryUnreachable Code = "REPOSITORY_UNREACHABLE"
	ErrCodeTransferFailed        Code = "TRANSFER_FAILED"
	ErrCodePartialDeploy         Code = "PARTIAL_DEPLOY"

	// Authentication errors
	ErrCodeAuthenticationFailed Code = "AUTHENTICATION_FAILED"

	// Graph errors
	ErrCodeUnresolvableDependency Code = "UNRESOLVABLE_DEPENDENCY"

	// Local filesystem errors
	ErrCodeInvalidArtifact Code = "INVALID_ARTIFACT"
	ErrCodeIO              Code = "IO_ERROR"

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
// Only the outermost coded error is consulted, so wrapping an error under a
// new code re-classifies it.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// The chain is walked outward-in and the first coded error wins.
// Returns empty string if the chain contains no coded error.
func GetCode(err error) Code {
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch t := e.(type) {
		case *Error:
			return t.Code
		case interface{ Code() Code }:
			return t.Code()
		}
	}
	return ""
}

// As is errors.As, re-exported so callers need a single errors import.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join is errors.Join, re-exported for the same reason as As.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// ResolutionError reports a dependency that could not be resolved, together
// with the chain of coordinates that led to it (root first).
type ResolutionError struct {
	Coordinate string
	Path       []string
	Cause      error
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: cannot resolve %s", ErrCodeUnresolvableDependency, e.Coordinate)
	if len(e.Path) > 0 {
		fmt.Fprintf(&b, " (via %s)", strings.Join(e.Path, " -> "))
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *ResolutionError) Unwrap() error { return e.Cause }

// Code returns the error code for this error type.
func (e *ResolutionError) Code() Code { return ErrCodeUnresolvableDependency }

// PartialDeployError reports a deployment where some files reached the remote
// repository and others did not. Callers can inspect Uploaded and Failed to
// decide how to recover.
type PartialDeployError struct {
	Uploaded []string // remote paths that were stored
	Failed   []string // remote paths that were not stored
	Cause    error    // first failure
}

// Error implements the error interface.
func (e *PartialDeployError) Error() string {
	return fmt.Sprintf("%s: uploaded [%s], failed [%s]: %v",
		ErrCodePartialDeploy,
		strings.Join(e.Uploaded, ", "),
		strings.Join(e.Failed, ", "),
		e.Cause)
}

// Unwrap returns the underlying cause.
func (e *PartialDeployError) Unwrap() error { return e.Cause }

// Code returns the error code for this error type.
func (e *PartialDeployError) Code() Code { return ErrCodePartialDeploy }
