package domain

import "errors"

// Failure taxonomy for upstream data access. Callers classify every
// provider failure into one of these so degradation handling stays uniform.
var (
	// ErrFetchFailed indicates a transport or provider error (timeout,
	// non-2xx status, provider-reported failure).
	ErrFetchFailed = errors.New("fetch failed")

	// ErrNotFound indicates a well-formed request for which the provider
	// has no data.
	ErrNotFound = errors.New("not found")

	// ErrParseFailed indicates a malformed or unexpected provider response.
	ErrParseFailed = errors.New("parse failed")

	// ErrInvalidInput indicates a request that could not be made because
	// the input (usually an address) is malformed.
	ErrInvalidInput = errors.New("invalid input")
)
