package database

import (
	"errors"
	"fmt"
)

var (
	// ErrConnection is returned when every connection attempt failed.
	ErrConnection = errors.New("database unavailable")
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrNotFound is returned when no lead has the requested id.
	ErrNotFound = errors.New("lead not found")
)

// QueryError wraps a statement failure that is neither a duplicate nor a connection problem.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

func queryError(op string, err error) error {
	return &QueryError{Op: op, Err: err}
}

// connectionError marks err as a connection failure while keeping the cause.
func connectionError(err error) error {
	return fmt.Errorf("%w: %w", ErrConnection, err)
}
