// Package billing holds the error taxonomy shared by the order, customer
// and invoice packages.
package billing

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an order or customer id does not resolve.
var ErrNotFound = errors.New("not found")

// Validation messages reported to callers.
const (
	MsgMissingFields = "missing required fields"
	MsgNoItems       = "no items"
)

// ValidationError reports input that was rejected before any persistence call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Invalid returns a *ValidationError carrying msg.
func Invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// Invalidf is Invalid with formatting.
func Invalidf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// PersistenceError wraps a store failure. The surrounding transaction has
// been rolled back by the time callers see it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence wraps err as a *PersistenceError unless it already is one
// (or is a validation error / ErrNotFound, which pass through unchanged).
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsValidation(err) || errors.Is(err, ErrNotFound) {
		return err
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPersistence reports whether err is (or wraps) a *PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
