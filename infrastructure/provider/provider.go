// Package provider implements embedding strategies: a network-backed
// OpenAI-compatible provider and a deterministic offline vectorizer, plus
// the fallback chain that combines them.
package provider

import (
	"errors"
	"fmt"
)

// ErrNoEmbeddings indicates the provider returned no vectors for a
// non-empty input.
var ErrNoEmbeddings = errors.New("provider returned no embeddings")

// ProviderError wraps a failure from a network embedding provider with the
// operation and upstream status code.
type ProviderError struct {
	operation  string
	statusCode int
	message    string
	cause      error
}

// NewProviderError creates a ProviderError.
func NewProviderError(operation string, statusCode int, message string, cause error) *ProviderError {
	return &ProviderError{
		operation:  operation,
		statusCode: statusCode,
		message:    message,
		cause:      cause,
	}
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.statusCode > 0 {
		return fmt.Sprintf("provider error (%s, status %d): %s", e.operation, e.statusCode, e.message)
	}
	return fmt.Sprintf("provider error (%s): %s", e.operation, e.message)
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error { return e.cause }

// Operation returns the failing operation name.
func (e *ProviderError) Operation() string { return e.operation }

// StatusCode returns the upstream HTTP status code, 0 if none.
func (e *ProviderError) StatusCode() int { return e.statusCode }
