package resilience

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

// RetryPolicy wraps one operation with bounded retries and
// exponential backoff + jitter. It knows nothing about circuit
// breakers; callers compose Retry(Breaker(call)) and rely on
// CircuitOpenError being classified non-retryable so an open circuit
// never burns the retry budget.
type RetryPolicy struct {
	MaxAttempts  uint
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	UseJitter    bool
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		UseJitter:    true,
	}
}

// RetryableFunc reports whether err on the given 1-based attempt
// should be retried.
type RetryableFunc func(err error, attempt uint) bool

// Execute runs op, retrying per the policy. The backoff wait blocks
// the calling goroutine; ctx cancellation aborts the wait.
func (p RetryPolicy) Execute(ctx context.Context, name string, op func(context.Context) error, isRetryable RetryableFunc) error {
	if isRetryable == nil {
		isRetryable = DefaultClassifier
	}
	maxAttempts := p.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 1
	}

	var attempts uint
	err := retry.Do(
		func() error {
			attempts++
			return op(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(maxAttempts),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return isRetryable(err, attempts)
		}),
		retry.DelayType(p.delayFor),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("Retrying operation",
				"operation", name,
				"attempt", n+1,
				"err", err,
			)
		}),
	)
	if err == nil && attempts > 1 {
		slog.Info("Operation succeeded after retry",
			"operation", name,
			"attempts", attempts,
		)
	}
	return err
}

// delayFor computes the backoff before retry n (zero-based):
// min(maxDelay, initialDelay * multiplier^n), scaled by a uniform
// random factor in [0,1) when jitter is on so concurrent workers do
// not retry in lockstep.
func (p RetryPolicy) delayFor(n uint, _ error, _ *retry.Config) time.Duration {
	backoff := float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(n))
	if capped := float64(p.MaxDelay); backoff > capped {
		backoff = capped
	}
	if p.UseJitter {
		backoff *= rand.Float64()
	}
	return time.Duration(backoff)
}

var transientPatterns = []string{
	"timeout",
	"timed out",
	"deadline exceeded",
	"connection refused",
	"connection reset",
	"broken pipe",
	"no such host",
	"unexpected eof",
	"server error",
	"internal server error",
	"bad gateway",
	"service unavailable",
	"gateway timeout",
	"status 500",
	"status 502",
	"status 503",
	"status 504",
}

// DefaultClassifier retries timeout-like, connection-like and
// 5xx-like failures. Explicitly classified errors are trusted as
// tagged, and an open circuit is never retried.
func DefaultClassifier(err error, _ uint) bool {
	if err == nil {
		return false
	}
	if IsCircuitOpen(err) {
		return false
	}
	var classified *Classified
	if errors.As(err, &classified) {
		return classified.Retryable
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
