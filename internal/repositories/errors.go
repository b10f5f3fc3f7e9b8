package repositories

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique field is already taken.
	ErrDuplicate = errors.New("duplicate record")
	// ErrConflict is returned when a compare-and-swap write lost a race.
	ErrConflict = errors.New("record was modified concurrently")
)
