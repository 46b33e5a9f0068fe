package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned for an unknown photo, tag, person, camera or place.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned for malformed command arguments.
	ErrInvalidInput = errors.New("invalid input")
	// ErrExists is returned when creating an entity whose key is taken.
	ErrExists = errors.New("already exists")
	// ErrInUse is returned when deleting an entity still referenced by photos.
	ErrInUse = errors.New("still referenced by photos")
	// ErrCountUnderflow means a command would drive a usage count below zero,
	// i.e. the cache disagrees with the rows it was built from.
	ErrCountUnderflow = errors.New("usage count underflow")
	// ErrNoFolder is returned by every command issued before a folder is open.
	ErrNoFolder = errors.New("no folder open")
)

// EntityError carries the kind and key of the entity a command failed on.
type EntityError struct {
	Kind string
	ID   string
	Err  error
}

func (e *EntityError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Kind, e.ID, e.Err)
}

func (e *EntityError) Unwrap() error {
	return e.Err
}

func notFound(kind, id string) error {
	return &EntityError{Kind: kind, ID: id, Err: ErrNotFound}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
