// Package clients provides the instrumented HTTP client used for outbound calls.
package clients

import (
	"errors"
	"fmt"
)

// Client errors are infrastructure failures. Adapters in acl translate them
// into domain errors.
var (
	// ErrCircuitOpen is returned without contacting the service while the breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last failure once every attempt is used.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// serverError marks a 5xx answer so the retry loop can tell it from a transport failure.
type serverError struct {
	status int
}

func (e *serverError) Error() string {
	return fmt.Sprintf("server error: %d", e.status)
}
