package calendar

import (
	"errors"
	"fmt"
)

// ErrUnavailable is returned when the backend could not be reached within the
// retry budget.
var ErrUnavailable = errors.New("calendar: backend unavailable")

// Error describes a failed gateway call. Permanent errors are never retried.
type Error struct {
	Op         string
	StatusCode int
	Permanent  bool
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	kind := "transient"
	if e.Permanent {
		kind = "permanent"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("calendar: %s: %s error (status %d): %v", e.Op, kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("calendar: %s: %s error: %v", e.Op, kind, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsPermanent reports whether err is a gateway error that must not be retried.
// Unknown errors are treated as permanent so the retry loop never spins on a
// fault it cannot classify.
func IsPermanent(err error) bool {
	var gErr *Error
	if errors.As(err, &gErr) {
		return gErr.Permanent
	}
	return true
}
