package repo

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no row matches the requested id and owner.
// A row owned by another user is indistinguishable from a missing row.
var ErrNotFound = errors.New("not found")

// ErrInvalidInput is returned when a repository is handed data that fails the
// input-boundary rules. Handlers validate first, so hitting this means a
// caller skipped validation.
var ErrInvalidInput = errors.New("invalid input")

// AlreadyExistsError reports a registration collision. Field is "username" or
// "email"; when both collide, username takes precedence.
type AlreadyExistsError struct {
	Field string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("user with this %s already exists", e.Field)
}

// StorageError wraps an unexpected backing-store failure. Handlers map it to
// a 500 with a generic message; the wrapped error is for logs only.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure in %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
