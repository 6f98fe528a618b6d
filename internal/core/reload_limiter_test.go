package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReloadLimiter_AcquireRelease(t *testing.T) {
	limiter := NewReloadLimiter(2, time.Second)
	assert.Equal(t, 0, limiter.ActiveCount())

	ctx := context.Background()
	require.NoError(t, limiter.Acquire(ctx))
	require.NoError(t, limiter.Acquire(ctx))
	assert.Equal(t, 2, limiter.ActiveCount())
	assert.False(t, limiter.TryAcquire(), "both slots are held")

	limiter.Release()
	limiter.Release()
	assert.Equal(t, 0, limiter.ActiveCount())
}

func TestReloadLimiter_BlocksWhenFull(t *testing.T) {
	limiter := NewReloadLimiter(1, 100*time.Millisecond)

	ctx := context.Background()
	require.NoError(t, limiter.Acquire(ctx))

	start := time.Now()
	err := limiter.Acquire(ctx)
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, ErrReloadInProgress)
	assert.GreaterOrEqual(t, elapsed, 90*time.Millisecond, "timeout too fast")

	limiter.Release()
}

func TestReloadLimiter_SingleFlight(t *testing.T) {
	limiter := NewReloadLimiter(1, time.Second)

	var wg sync.WaitGroup
	var mu sync.Mutex
	maxObserved := 0

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if !assert.NoError(t, limiter.Acquire(context.Background())) {
				return
			}
			defer limiter.Release()

			mu.Lock()
			if current := limiter.ActiveCount(); current > maxObserved {
				maxObserved = current
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)
		}()
	}

	wg.Wait()

	assert.LessOrEqual(t, maxObserved, 1)
	assert.Equal(t, 0, limiter.ActiveCount())
}

func TestReloadLimiter_TryAcquire(t *testing.T) {
	limiter := NewReloadLimiter(1, time.Second)

	require.True(t, limiter.TryAcquire())

	start := time.Now()
	if !assert.False(t, limiter.TryAcquire()) {
		limiter.Release()
	}
	assert.Less(t, time.Since(start), 10*time.Millisecond, "TryAcquire blocked")

	limiter.Release()

	require.True(t, limiter.TryAcquire(), "TryAcquire after Release")
	limiter.Release()
}

func TestReloadLimiter_ContextCancellation(t *testing.T) {
	limiter := NewReloadLimiter(1, 5*time.Second)
	require.NoError(t, limiter.Acquire(context.Background()))

	cancelCtx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- limiter.Acquire(cancelCtx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Error("Acquire did not return after context cancellation")
	}

	limiter.Release()
}

func TestReloadLimiter_DefaultValues(t *testing.T) {
	limiter := NewReloadLimiter(0, 0)

	assert.Equal(t, 1, cap(limiter.semaphore))
	assert.Equal(t, DefaultMaxWaitTime, limiter.maxWait)
}

func TestReloadLimiter_UnblocksWaiter(t *testing.T) {
	limiter := NewReloadLimiter(1, time.Second)

	ctx := context.Background()
	require.NoError(t, limiter.Acquire(ctx))

	acquired := make(chan struct{})
	go func() {
		if !assert.NoError(t, limiter.Acquire(ctx)) {
			return
		}
		close(acquired)
		limiter.Release()
	}()

	time.Sleep(50 * time.Millisecond)
	limiter.Release()

	select {
	case <-acquired:
	case <-time.After(500 * time.Millisecond):
		t.Error("waiter did not acquire after release")
	}
}
