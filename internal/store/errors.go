package store

import "errors"

var (
	// ErrNotFound is returned when a key is absent or its value has expired.
	ErrNotFound = errors.New("local state not found")
)
