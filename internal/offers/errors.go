package offers

import (
	"errors"
	"fmt"
)

// FetchErrorKind classifies transport failures.
type FetchErrorKind string

// Fetch failure kinds. Network, Timeout and Blocked are transient and may be
// retried within the fetcher's own retry budget; NotFound is terminal.
const (
	FetchNetwork  FetchErrorKind = "network"
	FetchBlocked  FetchErrorKind = "blocked"
	FetchTimeout  FetchErrorKind = "timeout"
	FetchNotFound FetchErrorKind = "not_found"
)

// FetchError is the classified failure surfaced by a Fetcher after its retry
// budget is exhausted.
type FetchError struct {
	Kind       FetchErrorKind
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: %s (status %d): %v", e.URL, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Retryable reports whether another attempt could plausibly succeed.
func (e *FetchError) Retryable() bool {
	return e.Kind != FetchNotFound
}

// FetchKind extracts the FetchError kind from err, or "" if err is not a
// fetch failure.
func FetchKind(err error) FetchErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// StoreErrorKind classifies persistence failures.
type StoreErrorKind string

// Store failure kinds. Conflict is a benign duplicate and is swallowed by
// InsertIfAbsent; IOFailure is fatal to the run.
const (
	StoreConflict  StoreErrorKind = "conflict"
	StoreIOFailure StoreErrorKind = "io_failure"
)

// StoreError wraps persistence failures that escape the store layer.
type StoreError struct {
	Kind StoreErrorKind
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
