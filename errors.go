package fdexpect

import (
	"errors"
	"fmt"
	"time"
)

var TimeoutError = errors.New("timeout")

// ErrClosed is returned by any operation on a Session after Close has been called
var ErrClosed = errors.New("session is closed")

// ErrUnsupportedPlatform is returned when no readiness primitive is available for the current OS
var ErrUnsupportedPlatform = errors.New("readiness polling is not supported on this platform")

// ExpectError is returned when an expectation could not be met, either because the timeout expired or because the
// descriptor could no longer be read from. Partial holds everything that was received during the failed call.
type ExpectError struct {
	Pattern string
	Partial string
	Elapsed time.Duration
	err     error
}

func (e *ExpectError) Error() string {
	return fmt.Sprintf("expectation %q not met: %s", e.Pattern, e.err)
}

func (e *ExpectError) Unwrap() error {
	return e.err
}

// Timeout reports whether the expectation failed because its timeout expired
func (e *ExpectError) Timeout() bool {
	return errors.Is(e.err, TimeoutError)
}
