// Package pipeline defines the image-to-image generation contract and its
// backends.
//
// limiter.go implements a thread-safe slot limiter bounding concurrent
// generation calls against one backend. This is a molecule composing the
// package's error atoms; backends own it so the resource constraint lives
// with the collaborator, not with callers.
package pipeline

import (
	"context"
	"errors"
	"sync"
)

// Limiter errors
var (
	ErrLimiterClosed  = errors.New("pipeline: limiter is closed")
	ErrAcquireTimeout = errors.New("pipeline: timed out waiting for a generation slot")
)

// Limiter hands out up to max concurrent generation slots. Slots are
// issued lazily; once all exist, Acquire blocks until one is released or
// the caller's context ends.
type Limiter struct {
	mu     sync.Mutex
	slots  chan struct{}
	max    int
	issued int
	closed bool
}

// NewLimiter creates a Limiter with the given maximum slot count.
func NewLimiter(max int) (*Limiter, error) {
	if max <= 0 {
		return nil, errors.New("pipeline: limiter size must be positive")
	}

	return &Limiter{
		slots: make(chan struct{}, max),
		max:   max,
	}, nil
}

// Acquire claims a generation slot, respecting the context's deadline.
//
// Returns ErrLimiterClosed if the limiter is closed and ErrAcquireTimeout
// if ctx ends before a slot frees up.
func (l *Limiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrLimiterClosed
	}

	// Try a released slot without blocking first.
	select {
	case _, ok := <-l.slots:
		l.mu.Unlock()
		if !ok {
			return ErrLimiterClosed
		}
		return nil
	default:
	}

	// Issue a fresh slot while capacity remains.
	if l.issued < l.max {
		l.issued++
		l.mu.Unlock()
		return nil
	}
	l.mu.Unlock()

	// At capacity: wait for a release or the context.
	select {
	case _, ok := <-l.slots:
		if !ok {
			return ErrLimiterClosed
		}
		return nil
	case <-ctx.Done():
		return ErrAcquireTimeout
	}
}

// Release returns a slot to the limiter. Calling Release without a held
// slot is a safe no-op beyond bookkeeping.
func (l *Limiter) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		if l.issued > 0 {
			l.issued--
		}
		return
	}

	select {
	case l.slots <- struct{}{}:
	default:
		if l.issued > 0 {
			l.issued--
		}
	}
}

// Close shuts down the limiter. After Close, Acquire returns
// ErrLimiterClosed. Close is safe to call multiple times.
func (l *Limiter) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true
	close(l.slots)
	for range l.slots {
		if l.issued > 0 {
			l.issued--
		}
	}

	return nil
}

// Available returns the number of released slots waiting in the limiter.
func (l *Limiter) Available() int {
	return len(l.slots)
}

// Issued returns how many slots have been created so far.
func (l *Limiter) Issued() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.issued
}

// MaxSlots returns the limiter capacity.
func (l *Limiter) MaxSlots() int {
	return l.max
}

// IsClosed returns whether the limiter has been closed.
func (l *Limiter) IsClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}
