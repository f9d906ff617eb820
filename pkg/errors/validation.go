package errors

import (
	"strings"
	"unicode"
)

// ValidateSegment validates one colon-delimited segment of a coordinate
// (groupId, artifactId, type, classifier or version). field names the
// segment in the returned error.
//
// The rules keep segments safe to use as repository path components:
//   - No empty segments
//   - No control characters or whitespace
//   - No path separators or traversal sequences
//   - Maximum length of 256 characters
func ValidateSegment(field, value string) error {
	if value == "" {
		return New(ErrCodeMalformedNotation, "%s cannot be empty", field)
	}
	if len(value) > 256 {
		return New(ErrCodeMalformedNotation, "%s too long (max 256 characters)", field)
	}
	for _, r := range value {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeMalformedNotation, "%s contains invalid characters: %q", field, value)
		}
	}
	if strings.ContainsAny(value, "/\\") || strings.Contains(value, "..") {
		return New(ErrCodeMalformedNotation, "%s contains path characters: %q", field, value)
	}
	return nil
}

// ValidatePath validates a file path within a repository for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// repositorySchemes lists the URL schemes a remote repository may use.
var repositorySchemes = []string{"http://", "https://", "s3://", "file://"}

// ValidateRepositoryURL validates a remote repository URL.
// http, https, s3 and file schemes are accepted.
func ValidateRepositoryURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "repository URL cannot be empty")
	}
	for _, scheme := range repositorySchemes {
		if strings.HasPrefix(rawURL, scheme) && len(rawURL) > len(scheme) {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "repository URL must use one of %s: %q",
		strings.Join(repositorySchemes, ", "), rawURL)
}
