package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested item is not found.
	// NotFoundError matches it with errors.Is.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when two measurements share a key.
	ErrDuplicateKey = errors.New("duplicate measurement key")

	// ErrReservedKey is returned when a measurement uses the root folder key.
	ErrReservedKey = errors.New("measurement key collides with root folder key")

	// ErrEmptyKey is returned when a measurement has no key.
	ErrEmptyKey = errors.New("empty measurement key")

	// ErrNamespaceMismatch is returned when an identifier is handed to a
	// provider that does not own its namespace.
	ErrNamespaceMismatch = errors.New("identifier namespace mismatch")

	// ErrNotComposable is returned when composition is requested for an
	// object no composition provider applies to.
	ErrNotComposable = errors.New("object has no composition")
)

// FetchError reports that the dictionary document could not be retrieved.
type FetchError struct {
	// Source is the URL, path or DSN the loader read from
	Source string

	// StatusCode is the HTTP status for non-success responses, 0 otherwise
	StatusCode int

	Err error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching dictionary from %s: unexpected status %d", e.Source, e.StatusCode)
	}
	return fmt.Sprintf("fetching dictionary from %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports that the retrieved payload is not a valid dictionary.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing dictionary from %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NotFoundError reports an identifier with no matching measurement.
type NotFoundError struct {
	Identifier Identifier
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("object %s: %v", e.Identifier, ErrNotFound)
}

// Is makes errors.Is(err, ErrNotFound) hold for every NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
