package matching

import "errors"

// Service errors
var (
	// ErrRepositoryUnavailable signals a transient store failure.
	// Callers may retry with backoff; it is never masked as an empty
	// result set.
	ErrRepositoryUnavailable = errors.New("listing repository unavailable")
)
