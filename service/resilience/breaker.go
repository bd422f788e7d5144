package resilience

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

const (
	DefaultFailureThreshold = 5
	DefaultRecoveryTimeout  = 60 * time.Second
)

// CircuitBreaker protects one external service from being hammered
// while it is down. State lives in a CircuitStateStore shared by all
// workers, so the failure budget is global, not per process.
type CircuitBreaker struct {
	service          string
	failureThreshold int
	recoveryTimeout  time.Duration
	store            CircuitStateStore

	// test hook
	now func() time.Time
}

func NewCircuitBreaker(service string, store CircuitStateStore, failureThreshold int, recoveryTimeout time.Duration) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = DefaultFailureThreshold
	}
	if recoveryTimeout <= 0 {
		recoveryTimeout = DefaultRecoveryTimeout
	}
	return &CircuitBreaker{
		service:          service,
		failureThreshold: failureThreshold,
		recoveryTimeout:  recoveryTimeout,
		store:            store,
		now:              time.Now,
	}
}

// Execute runs op unless the circuit is open, in which case it fails
// immediately with a CircuitOpenError without invoking op.
func (b *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := b.admit(); err != nil {
		return err
	}

	err := op(ctx)
	if err != nil {
		if isHealthFailure(err) {
			b.recordFailure()
		} else {
			// The backend answered; a validation error says nothing
			// about its health.
			b.recordNeutral()
		}
		return err
	}

	b.recordSuccess()
	return nil
}

// State reports the current circuit state for observability.
func (b *CircuitBreaker) State() CircuitState {
	rec, ok := b.store.Get(b.service)
	if !ok {
		return StateClosed
	}
	return rec.State
}

// Reset forces the circuit closed regardless of history.
func (b *CircuitBreaker) Reset() {
	b.store.Forget(b.service)
	slog.Info("Circuit manually reset", "service", b.service)
}

// admit decides whether a call may proceed. At most one caller wins
// the open -> half_open transition; everyone else keeps failing fast
// until the trial resolves.
func (b *CircuitBreaker) admit() error {
	for {
		cur, ok := b.store.Get(b.service)
		if !ok || cur.State == StateClosed {
			return nil
		}

		switch cur.State {
		case StateOpen:
			if b.now().Sub(cur.OpenedAt) < b.recoveryTimeout {
				return &CircuitOpenError{Service: b.service}
			}
			next := cur
			next.State = StateHalfOpen
			if b.store.CompareAndSwap(b.service, &cur, next) {
				slog.Info("Circuit half-open, allowing trial call", "service", b.service)
				return nil
			}
			// lost the transition race, re-read
		case StateHalfOpen:
			return &CircuitOpenError{Service: b.service}
		default:
			return nil
		}
	}
}

func (b *CircuitBreaker) recordSuccess() {
	for {
		cur, ok := b.store.Get(b.service)
		if !ok || (cur.State == StateClosed && cur.FailureCount == 0) {
			return
		}
		if b.store.CompareAndSwap(b.service, &cur, CircuitRecord{State: StateClosed}) {
			if cur.State != StateClosed {
				slog.Info("Circuit closed after successful call", "service", b.service)
			}
			return
		}
	}
}

func (b *CircuitBreaker) recordFailure() {
	for {
		cur, ok := b.store.Get(b.service)

		var old *CircuitRecord
		next := CircuitRecord{State: StateClosed}
		if ok {
			old = &cur
			next = cur
		}

		if next.State == StateHalfOpen {
			// failed trial reopens with a fresh cooldown window
			next = CircuitRecord{
				State:        StateOpen,
				FailureCount: cur.FailureCount + 1,
				OpenedAt:     b.now(),
			}
		} else {
			next.FailureCount++
			if next.State == StateClosed && next.FailureCount >= b.failureThreshold {
				next.State = StateOpen
				next.OpenedAt = b.now()
			}
		}

		if b.store.CompareAndSwap(b.service, old, next) {
			if next.State == StateOpen && (!ok || cur.State != StateOpen) {
				slog.Warn("Circuit opened",
					"service", b.service,
					"failure_count", next.FailureCount,
				)
			}
			return
		}
	}
}

// recordNeutral resolves a half-open trial that ended with a
// permanent error: the backend responded, so the circuit closes, but
// the error itself was never counted.
func (b *CircuitBreaker) recordNeutral() {
	cur, ok := b.store.Get(b.service)
	if !ok || cur.State != StateHalfOpen {
		return
	}
	b.store.CompareAndSwap(b.service, &cur, CircuitRecord{State: StateClosed})
}

func isHealthFailure(err error) bool {
	var classified *Classified
	if errors.As(err, &classified) {
		return classified.Retryable
	}
	return true
}
