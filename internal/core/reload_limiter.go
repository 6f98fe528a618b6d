package core

// reload_limiter.go keeps dataset reloads single-flight.
//
// The limiter is a semaphore. Reload takes a slot without waiting and fails
// with ErrReloadInProgress when none is free. Close waits for the slot so no
// reload starts or is left running during shutdown.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrReloadInProgress is returned when a reload is requested while another
// is running.
var ErrReloadInProgress = errors.New("dataset reload already in progress")

// DefaultMaxWaitTime is how long Acquire waits for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// ReloadLimiter controls concurrent reloads using a semaphore pattern.
type ReloadLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewReloadLimiter creates a limiter that allows at most maxConcurrent
// simultaneous holders. Acquire calls that cannot get a slot within maxWait
// receive ErrReloadInProgress.
func NewReloadLimiter(maxConcurrent int, maxWait time.Duration) *ReloadLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &ReloadLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire waits for a slot. The caller MUST call Release when done.
func (l *ReloadLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil

	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrReloadInProgress
	}
}

// TryAcquire attempts to acquire a slot without blocking.
func (l *ReloadLimiter) TryAcquire() bool {
	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return true
	default:
		return false
	}
}

// Release releases a previously acquired slot.
// Must be called exactly once for each successful Acquire/TryAcquire.
func (l *ReloadLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

// ActiveCount returns the number of slots currently held.
func (l *ReloadLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}
