package store

import (
	"errors"
	"fmt"
)

var ErrUnavailable = errors.New("document store is not configured")

type WriteError struct {
	Collection string
	Err        error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write to collection %q: %v", e.Collection, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

type ReadError struct {
	Collection string
	Err        error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read from collection %q: %v", e.Collection, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
