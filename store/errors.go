package store

import (
	"errors"
	"fmt"
)

// ErrValidation marks requests rejected before any store access.
var ErrValidation = errors.New("validation failed")

// ErrEmptyPostID is returned when a like operation has no post identifier.
var ErrEmptyPostID = fmt.Errorf("%w: postId is required", ErrValidation)

// StoreError wraps a driver or connection failure. Its message is for logs only;
// handlers must not echo it to callers.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return "store: " + e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
