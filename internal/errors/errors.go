// Package apperrors provides domain-specific error types for logc.
// These error types include contextual information to aid debugging and error reporting.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the CLI boundary.
type Kind string

// Error kinds. Every kind except KindUnexpected is reported to the user with guidance;
// KindUnexpected is forwarded to the crash report sink.
const (
	KindInvalidTimestampFormat   Kind = "InvalidTimestampFormat"
	KindInvalidKeywordExpression Kind = "InvalidKeywordExpression"
	KindDestinationWrite         Kind = "DestinationWrite"
	KindExtraction               Kind = "Extraction"
	KindConfiguration            Kind = "Configuration"
	KindUnexpected               Kind = "Unexpected"
)

// ConfigurationError represents configuration-related errors.
// It includes the configuration file path and specific key that caused the error.
type ConfigurationError struct {
	ConfigPath string // Path to the configuration file
	Key        string // Configuration key that caused the error
	Err        error  // Underlying error
}

// Error implements the error interface for ConfigurationError.
func (e *ConfigurationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("configuration error in %s (key: %s): %v", e.ConfigPath, e.Key, e.Err)
	}
	return fmt.Sprintf("configuration error in %s: %v", e.ConfigPath, e.Err)
}

// Unwrap returns the underlying error for error wrapping chains.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// InvalidTimestampFormatError is returned when a user supplied time expression
// cannot be mapped to any supported shape.
type InvalidTimestampFormatError struct {
	Expression string // Expression as typed by the user
	Reason     string // Short human readable reason
	Err        error  // Underlying error, if any
}

// Error implements the error interface for InvalidTimestampFormatError.
func (e *InvalidTimestampFormatError) Error() string {
	msg := fmt.Sprintf("invalid time expression %q", e.Expression)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error wrapping chains.
func (e *InvalidTimestampFormatError) Unwrap() error {
	return e.Err
}

// InvalidKeywordExpressionError is returned for keyword expressions that mix operators
// or contain no keyword at all.
type InvalidKeywordExpressionError struct {
	Expression string
	Reason     string
}

// Error implements the error interface for InvalidKeywordExpressionError.
func (e *InvalidKeywordExpressionError) Error() string {
	return fmt.Sprintf("invalid keyword expression %q: %s", e.Expression, e.Reason)
}

// DestinationWriteError represents a failure to persist the rendered output.
// Op names the step that failed (e.g., "create", "write", "sync", "rename").
type DestinationWriteError struct {
	Path string
	Op   string
	Err  error
}

// Error implements the error interface for DestinationWriteError.
func (e *DestinationWriteError) Error() string {
	return fmt.Sprintf("cannot write destination %s (%s): %v", e.Path, e.Op, e.Err)
}

// Unwrap returns the underlying error for error wrapping chains.
func (e *DestinationWriteError) Unwrap() error {
	return e.Err
}

// ExtractionError represents archive reading and member selection errors.
// Member is empty when the failure concerns the archive as a whole.
type ExtractionError struct {
	Source string
	Member string
	Err    error
}

// Error implements the error interface for ExtractionError.
func (e *ExtractionError) Error() string {
	if e.Member != "" {
		return fmt.Sprintf("extraction failed for %s (member: %s): %v", e.Source, e.Member, e.Err)
	}
	return fmt.Sprintf("extraction failed for %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying error for error wrapping chains.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// KindOf classifies err. A nil error has no kind and returns "".
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var (
		tsErr   *InvalidTimestampFormatError
		kwErr   *InvalidKeywordExpressionError
		destErr *DestinationWriteError
		extErr  *ExtractionError
		cfgErr  *ConfigurationError
	)

	switch {
	case errors.As(err, &tsErr):
		return KindInvalidTimestampFormat
	case errors.As(err, &kwErr):
		return KindInvalidKeywordExpression
	case errors.As(err, &destErr):
		return KindDestinationWrite
	case errors.As(err, &extErr):
		return KindExtraction
	case errors.As(err, &cfgErr):
		return KindConfiguration
	default:
		return KindUnexpected
	}
}

// Guidance returns the hint shown to the user next to a classified error.
func Guidance(kind Kind) string {
	switch kind {
	case KindInvalidTimestampFormat:
		return `Use "<month> <day>[ <HH>[:<MM>[:<SS>]]]" or "<YYYY>-<MM>-<DD>[T<HH>[:<MM>[:<SS>]]]", optionally joined with " to ".`
	case KindInvalidKeywordExpression:
		return `Join keywords with "and" or with "or", not both. Use --all and --any to combine groups.`
	case KindDestinationWrite:
		return "Check that the destination directory exists and is writable. The destination file must not be treated as complete."
	case KindExtraction:
		return "Check that the source archive isn't corrupted and that the requested files exist in it."
	case KindConfiguration:
		return "Check the configuration file and LOGC_* environment variables."
	default:
		return ""
	}
}
