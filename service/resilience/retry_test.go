package resilience

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	p := fastPolicy()

	calls := 0
	err := p.Execute(context.Background(), "flaky", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection reset by peer")
		}
		return nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryPropagatesLastErrorAfterBudget(t *testing.T) {
	p := fastPolicy()

	last := errors.New("upstream timeout")
	calls := 0
	err := p.Execute(context.Background(), "down", func(context.Context) error {
		calls++
		return last
	}, nil)

	require.ErrorIs(t, err, last)
	assert.Equal(t, 3, calls)
}

func TestRetryNeverRetriesNonRetryable(t *testing.T) {
	p := fastPolicy()

	calls := 0
	err := p.Execute(context.Background(), "bad-input", func(context.Context) error {
		calls++
		return Permanent(errors.New("unsupported media type"))
	}, nil)

	require.Error(t, err)
	assert.Equal(t, 1, calls, "non-retryable errors must not consume the budget")
}

func TestRetryNeverRetriesCircuitOpen(t *testing.T) {
	p := fastPolicy()

	calls := 0
	err := p.Execute(context.Background(), "open-circuit", func(context.Context) error {
		calls++
		return &CircuitOpenError{Service: "ai-backend"}
	}, nil)

	require.True(t, IsCircuitOpen(err))
	assert.Equal(t, 1, calls)
}

func TestRetryCustomClassifier(t *testing.T) {
	p := fastPolicy()

	calls := 0
	err := p.Execute(context.Background(), "custom", func(context.Context) error {
		calls++
		return errors.New("weird domain failure")
	}, func(err error, attempt uint) bool {
		return attempt < 2
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestDelayBounds(t *testing.T) {
	p := RetryPolicy{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
	}

	// without jitter the delay is exactly min(max, initial*mult^n)
	for n := uint(0); n < 8; n++ {
		want := math.Min(float64(p.MaxDelay), float64(p.InitialDelay)*math.Pow(2, float64(n)))
		assert.Equal(t, time.Duration(want), p.delayFor(n, nil, nil))
	}

	// with jitter the delay is uniform in [0, bound]
	p.UseJitter = true
	for n := uint(0); n < 8; n++ {
		bound := time.Duration(math.Min(float64(p.MaxDelay), float64(p.InitialDelay)*math.Pow(2, float64(n))))
		for i := 0; i < 50; i++ {
			d := p.delayFor(n, nil, nil)
			assert.GreaterOrEqual(t, d, time.Duration(0))
			assert.LessOrEqual(t, d, bound)
		}
	}
}

func TestDefaultClassifier(t *testing.T) {
	cases := []struct {
		err       error
		retryable bool
	}{
		{errors.New("request timeout"), true},
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("ai backend returned status 503"), true},
		{errors.New("context deadline exceeded"), true},
		{errors.New("invalid request payload"), false},
		{Transient(errors.New("anything")), true},
		{Permanent(errors.New("status 503 wrapped as permanent")), false},
		{&CircuitOpenError{Service: "x"}, false},
		{nil, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.retryable, DefaultClassifier(tc.err, 1), "err: %v", tc.err)
	}
}
