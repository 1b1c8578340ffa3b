package service

import "errors"

// Service errors.
var (
	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = errors.New("tooldex: client is closed")

	// ErrServerNotFound indicates the named server is not configured.
	ErrServerNotFound = errors.New("server not found")

	// ErrServerNotEligible indicates the server exists but cannot be indexed
	// (disabled, or no discovered tools).
	ErrServerNotEligible = errors.New("server not eligible for indexing")
)
