// Package errors provides standardized error handling for the orthomerge stage.
// It includes error classification, standard error variables, and helper functions
// for consistent error wrapping across the clustering and merging pipeline.
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorTransient represents temporary errors that may be retried
	ErrorTransient ErrorClass = iota
	// ErrorInvalid represents errors due to invalid input or configuration
	ErrorInvalid
	// ErrorFatal represents unrecoverable errors that abort the stage
	ErrorFatal
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorTransient:
		return "transient"
	case ErrorInvalid:
		return "invalid"
	case ErrorFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions
var (
	// Configuration errors
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrMissingConfig   = errors.New("missing required configuration")
	ErrMissingManifest = errors.New("input manifest not found")
	ErrEmptyManifest   = errors.New("input manifest is empty")

	// External tool errors
	ErrExternalTool    = errors.New("external tool failed")
	ErrNoSearchResults = errors.New("similarity search produced no results")

	// Missing datum errors, recovered locally
	ErrSequenceNotFound = errors.New("sequence not found")
	ErrMissingTarget    = errors.New("hit has no usable target name")

	// Data processing errors
	ErrInvalidData   = errors.New("invalid data format")
	ErrParsingFailed = errors.New("parsing failed")

	// Backing store errors
	ErrConnectionTimeout  = errors.New("connection timeout")
	ErrConnectionLost     = errors.New("connection lost")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrRateLimited        = errors.New("rate limited")

	// Retry errors
	ErrMaxRetriesExceeded = errors.New("maximum retries exceeded")
)

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// IsTransient checks if an error is transient and should be retried
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorTransient
	}

	if errors.Is(err, ErrConnectionTimeout) ||
		errors.Is(err, ErrConnectionLost) ||
		errors.Is(err, ErrStorageUnavailable) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	transientPatterns := []string{
		"timeout",
		"connection reset",
		"connection refused",
		"temporarily unavailable",
		"too many requests",
	}

	for _, pattern := range transientPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// IsFatal checks if an error is fatal and should stop the stage
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorFatal
	}

	return errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrMissingConfig) ||
		errors.Is(err, ErrMissingManifest) ||
		errors.Is(err, ErrEmptyManifest) ||
		errors.Is(err, ErrExternalTool) ||
		errors.Is(err, ErrNoSearchResults)
}

// IsInvalid checks if an error is due to invalid input
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorInvalid
	}

	return errors.Is(err, ErrInvalidData) ||
		errors.Is(err, ErrParsingFailed)
}

// IsMissingDatum reports whether err names a single unresolvable identifier or hit.
// These are skipped and logged, never surfaced as stage failures.
func IsMissingDatum(err error) bool {
	return errors.Is(err, ErrSequenceNotFound) || errors.Is(err, ErrMissingTarget)
}

// Classify returns the error class for an error
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorTransient
	}

	if IsTransient(err) {
		return ErrorTransient
	}
	if IsFatal(err) {
		return ErrorFatal
	}
	if IsInvalid(err) {
		return ErrorInvalid
	}

	// Unknown errors from external collaborators abort the stage.
	return ErrorFatal
}

func newClassified(class ErrorClass, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapTransient wraps an error as transient with context
func WrapTransient(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorTransient, wrappedErr, component, method, wrappedErr.Error())
}

// WrapFatal wraps an error as fatal with context
func WrapFatal(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorFatal, wrappedErr, component, method, wrappedErr.Error())
}

// WrapInvalid wraps an error as invalid with context
func WrapInvalid(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorInvalid, wrappedErr, component, method, wrappedErr.Error())
}

// Is reports whether any error in err's chain matches target.
// Re-exported so callers importing this package need not alias the standard library.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}
