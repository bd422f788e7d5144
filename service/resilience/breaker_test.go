package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-engine-backend/service/cache"
)

var errBackendDown = errors.New("connection refused")

func newTestBreaker(t *testing.T) *CircuitBreaker {
	t.Helper()
	store := NewCacheStateStore(cache.NewMemoryStore())
	return NewCircuitBreaker("ai-backend", store, 3, time.Minute)
}

func failingOp(calls *int) func(context.Context) error {
	return func(context.Context) error {
		*calls++
		return errBackendDown
	}
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b := newTestBreaker(t)
	ctx := context.Background()

	var calls int
	for i := 0; i < 3; i++ {
		err := b.Execute(ctx, failingOp(&calls))
		require.ErrorIs(t, err, errBackendDown)
	}
	assert.Equal(t, 3, calls)
	assert.Equal(t, StateOpen, b.State())

	// open circuit fails fast without invoking the operation
	err := b.Execute(ctx, failingOp(&calls))
	require.True(t, IsCircuitOpen(err))
	assert.Equal(t, 3, calls)
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := newTestBreaker(t)
	ctx := context.Background()

	var calls int
	require.Error(t, b.Execute(ctx, failingOp(&calls)))
	require.Error(t, b.Execute(ctx, failingOp(&calls)))

	require.NoError(t, b.Execute(ctx, func(context.Context) error { return nil }))

	// two more failures must not trip a threshold of three
	require.Error(t, b.Execute(ctx, failingOp(&calls)))
	require.Error(t, b.Execute(ctx, failingOp(&calls)))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerHalfOpenAllowsSingleTrial(t *testing.T) {
	b := newTestBreaker(t)
	ctx := context.Background()

	var calls int
	for i := 0; i < 3; i++ {
		_ = b.Execute(ctx, failingOp(&calls))
	}
	require.Equal(t, StateOpen, b.State())

	// jump past the recovery timeout
	b.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	trialRan := false
	err := b.Execute(ctx, func(ctx context.Context) error {
		trialRan = true
		// a concurrent call during the trial must not also be admitted
		inner := b.Execute(ctx, func(context.Context) error {
			t.Fatal("second call admitted during half-open trial")
			return nil
		})
		assert.True(t, IsCircuitOpen(inner))
		return nil
	})
	require.NoError(t, err)
	assert.True(t, trialRan)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerFailedTrialReopens(t *testing.T) {
	b := newTestBreaker(t)
	ctx := context.Background()

	var calls int
	for i := 0; i < 3; i++ {
		_ = b.Execute(ctx, failingOp(&calls))
	}
	first, ok := b.store.Get("ai-backend")
	require.True(t, ok)

	later := time.Now().Add(2 * time.Minute)
	b.now = func() time.Time { return later }

	err := b.Execute(ctx, failingOp(&calls))
	require.ErrorIs(t, err, errBackendDown)

	reopened, ok := b.store.Get("ai-backend")
	require.True(t, ok)
	assert.Equal(t, StateOpen, reopened.State)
	assert.True(t, reopened.OpenedAt.After(first.OpenedAt), "failed trial must refresh opened_at")

	// still failing fast inside the fresh cooldown window
	b.now = func() time.Time { return later.Add(time.Second) }
	assert.True(t, IsCircuitOpen(b.Execute(ctx, failingOp(&calls))))
}

func TestBreakerResetForcesClosed(t *testing.T) {
	b := newTestBreaker(t)
	ctx := context.Background()

	var calls int
	for i := 0; i < 3; i++ {
		_ = b.Execute(ctx, failingOp(&calls))
	}
	require.Equal(t, StateOpen, b.State())

	b.Reset()
	assert.Equal(t, StateClosed, b.State())
	require.NoError(t, b.Execute(ctx, func(context.Context) error { return nil }))
}

func TestBreakerIgnoresPermanentErrors(t *testing.T) {
	b := newTestBreaker(t)
	ctx := context.Background()

	badInput := Permanent(errors.New("unsupported file format"))
	for i := 0; i < 10; i++ {
		err := b.Execute(ctx, func(context.Context) error { return badInput })
		require.Error(t, err)
	}
	assert.Equal(t, StateClosed, b.State())
}
