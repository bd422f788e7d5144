package resilience

import (
	"errors"
	"fmt"
)

// Classified tags an error with explicit retryability so the retry
// policy branches on data instead of sniffing message text.
type Classified struct {
	Err       error
	Retryable bool
}

func (e *Classified) Error() string {
	return e.Err.Error()
}

func (e *Classified) Unwrap() error {
	return e.Err
}

// Transient marks an error as retryable (timeouts, connection
// failures, 5xx responses).
func Transient(err error) error {
	return &Classified{Err: err, Retryable: true}
}

// Permanent marks an error as non-retryable (bad input, unsupported
// format, 4xx responses). Permanent errors are not backend-health
// signals and never count against a circuit.
func Permanent(err error) error {
	return &Classified{Err: err, Retryable: false}
}

// CircuitOpenError is returned without attempting the call while a
// circuit is open. It is never retryable.
type CircuitOpenError struct {
	Service string
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit open for service %q", e.Service)
}

func IsCircuitOpen(err error) bool {
	var ce *CircuitOpenError
	return errors.As(err, &ce)
}
