// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Database errors.
	ErrNotFound          = errors.New("not found")
	ErrDuplicateEntry    = errors.New("duplicate entry")
	ErrDatabaseCorrupted = errors.New("database corrupted")

	// Reference data errors.
	ErrUpstreamUnavailable = errors.New("reference upstream unavailable")
	ErrUnknownReference    = errors.New("unknown reference identifier")

	// Assessment errors.
	ErrInvariantViolation = errors.New("internal invariant violation")

	// Import errors.
	ErrPlaidConnection = errors.New("plaid connection failed")
	ErrPlaidRateLimit  = errors.New("plaid rate limit exceeded")
	ErrInvalidAccount  = errors.New("invalid account")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ValidationError rejects a tax data record, naming the offending field so
// callers can surface it to the filer.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a field-level validation failure.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// CacheFetchError reports a failed upstream reference fetch. The cache keeps
// serving the previous entry; this error reaches only operational callers,
// never an assessment.
type CacheFetchError struct {
	Err  error
	Kind string
	ID   string
}

func (e *CacheFetchError) Error() string {
	return fmt.Sprintf("fetch %s %s: %v", e.Kind, e.ID, e.Err)
}

func (e *CacheFetchError) Unwrap() error {
	return e.Err
}

// NewCacheFetchError wraps an upstream failure for a single cache entry.
func NewCacheFetchError(kind, id string, err error) error {
	return &CacheFetchError{Kind: kind, ID: id, Err: err}
}

// Invariantf wraps ErrInvariantViolation with detail. Invariant violations
// abort the request that tripped them and must leave shared state intact.
func Invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariantViolation, fmt.Sprintf(format, args...))
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	// Check for specific retryable errors
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, ErrUpstreamUnavailable) ||
		errors.Is(err, ErrPlaidRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	// Validation and invariant failures never benefit from a retry.
	var validationErr *ValidationError
	if errors.As(err, &validationErr) || errors.Is(err, ErrInvariantViolation) {
		return false
	}

	// Check for retryable error type
	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
