// Package shutdown turns SIGINT and SIGTERM into context cancellation
// so an in-flight sweep can finish cleanly. A repeated signal forces an
// immediate exit for users who do not want to wait.
package shutdown

import (
	"sync"
)

// SignalCounter tracks repeated shutdown signals and triggers a forced
// shutdown once a threshold is reached.
//
// This is a molecule composing atomic counting with a callback, for the
// common pattern of "first signal = graceful, second = force".
type SignalCounter struct {
	mu         sync.Mutex
	count      int
	forceAfter int
	onForce    func()
}

// NewSignalCounter creates a SignalCounter that invokes onForce when the
// count reaches forceAfter. The callback may be nil.
func NewSignalCounter(forceAfter int, onForce func()) *SignalCounter {
	return &SignalCounter{
		forceAfter: forceAfter,
		onForce:    onForce,
	}
}

// Increment increases the signal count by one and returns the new count.
// At or past the threshold the onForce callback runs on every call.
//
// The callback runs while the lock is held, so it should be fast or
// should exit the process.
func (s *SignalCounter) Increment() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.count++
	if s.count >= s.forceAfter && s.onForce != nil {
		s.onForce()
	}
	return s.count
}

// Count returns the current signal count.
func (s *SignalCounter) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Reset resets the signal count to zero.
func (s *SignalCounter) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count = 0
}

// SetForceCallback replaces the force callback. Used by tests to avoid
// exiting the process.
func (s *SignalCounter) SetForceCallback(onForce func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onForce = onForce
}
