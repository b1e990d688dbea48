package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrAuthFailed indicates the provider rejected the API key
	ErrAuthFailed = errors.New("image provider rejected the API key")

	// ErrEmptyQuery indicates a search was attempted with blank text
	ErrEmptyQuery = errors.New("search query is empty")

	// ErrNotConfigured indicates no provider credentials are available
	ErrNotConfigured = errors.New("image provider is not configured")
)

// FetchKind classifies why a fetch failed
type FetchKind int

const (
	FetchNetwork FetchKind = iota // transport failure, timeout, cancellation
	FetchStatus                   // non-2xx response
	FetchParse                    // malformed payload
)

func (k FetchKind) String() string {
	switch k {
	case FetchNetwork:
		return "network"
	case FetchStatus:
		return "status"
	case FetchParse:
		return "parse"
	default:
		return "unknown"
	}
}

// FetchError is returned by every remote call made on behalf of the gallery
type FetchError struct {
	Kind   FetchKind
	Status int // HTTP status for FetchStatus, 0 otherwise
	Err    error
}

func (e *FetchError) Error() string {
	if e.Kind == FetchStatus {
		return fmt.Sprintf("fetch failed: status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("fetch failed: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError wraps err with the given kind
func NewFetchError(kind FetchKind, err error) *FetchError {
	return &FetchError{Kind: kind, Err: err}
}

// NewStatusError builds a FetchStatus error for an unexpected HTTP status
func NewStatusError(status int, err error) *FetchError {
	return &FetchError{Kind: FetchStatus, Status: status, Err: err}
}
