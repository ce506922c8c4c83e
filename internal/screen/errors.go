package screen

import (
	"errors"
	"fmt"
	"time"
)

// ErrConfidenceRange is returned before any capture when a confidence
// threshold lies outside [0, 1].
var ErrConfidenceRange = errors.New("confidence must be within [0, 1]")

// NotFoundError indicates a template image path that could not be read.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("template image %s not readable: %v", e.Path, e.Err)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// TimeoutError indicates a polled condition that never held within its
// allotted time. Condition carries the attempted target for diagnostics.
type TimeoutError struct {
	Condition string
	Timeout   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s within %s", e.Condition, e.Timeout)
}
