package surfline

import (
	"errors"
	"fmt"
)

var (
	errServerError      = errors.New("server error")
	errRateLimited      = errors.New("rate limited")
	errUnexpectedStatus = errors.New("unexpected status code")
	errCircuitOpen      = errors.New("circuit breaker open")

	// ErrMalformedResponse marks a 2xx response whose body did not match
	// the expected payload shape.
	ErrMalformedResponse = errors.New("malformed upstream response")
)

// TransientError is a failed attempt that may succeed on retry: a non-2xx
// status or a transport-level failure.
type TransientError struct {
	Endpoint   string
	StatusCode int // 0 for transport failures
	Err        error
}

func (e *TransientError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// FatalError is a fetch that will not be retried: attempts were exhausted,
// the circuit is open, or the body could not be parsed.
type FatalError struct {
	Endpoint string
	Attempts int
	Err      error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s failed after %d attempt(s): %v", e.Endpoint, e.Attempts, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
