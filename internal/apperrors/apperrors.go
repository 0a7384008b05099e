// Package apperrors defines the error taxonomy shared by every service
// layer: validation, conflict, not-found, forbidden, and storage faults.
// Handlers map these onto HTTP statuses; nothing is swallowed in between.
package apperrors

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	// ErrValidation marks malformed input. Surfaced to the caller, never retried.
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks a date-overlap or uniqueness conflict. User-actionable, never retried.
	ErrConflict = errors.New("conflict")
	// ErrNotFound marks an unknown entity id.
	ErrNotFound = errors.New("not found")
	// ErrForbidden marks an authenticated caller acting outside its role.
	ErrForbidden = errors.New("forbidden")
)

// Validationf wraps ErrValidation with a display message.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Conflictf wraps ErrConflict with a display message.
func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// NotFoundf wraps ErrNotFound with a display message.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Forbiddenf wraps ErrForbidden with a display message.
func Forbiddenf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// StorageError wraps a data-layer fault. Transient faults (connection drops,
// timeouts) may be retried once by the caller; everything else is terminal.
type StorageError struct {
	Op        string
	Transient bool
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Storage classifies err and wraps it with the failing operation name.
// Domain errors pass through untouched so errors.Is keeps working.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
		return err
	}
	return &StorageError{Op: op, Transient: isTransient(err), Err: err}
}

func isTransient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

// IsTransient reports whether err is a retryable storage fault.
func IsTransient(err error) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Transient
}

// HTTPStatus maps the taxonomy to a response code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case IsTransient(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
