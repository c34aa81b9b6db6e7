package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/vibabattista/stylised-images/core"
)

// Watcher is an organism that owns the run context of a sweep batch.
// The first SIGINT or SIGTERM cancels the context, letting the sweep in
// flight finish and the results so far reach disk. A second signal
// invokes the force callback, which by default exits the process with
// the conventional 128+signal code.
//
// Usage:
//
//	watcher := shutdown.NewWatcher(logger)
//	ctx := watcher.Start(context.Background())
//	defer watcher.Stop()
//
//	results, err := driver.RunAll(ctx, pipe, requests)
//	// ...
//	os.Exit(watcher.ExitCode())
type Watcher struct {
	logger  *zap.Logger
	counter *SignalCounter
	onForce func(os.Signal)

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	sig    os.Signal

	sigCh    chan os.Signal
	done     chan struct{}
	stopOnce sync.Once
	started  bool
}

// NewWatcher creates a Watcher. A nil logger logs nothing.
func NewWatcher(logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Watcher{
		logger: logger,
		sigCh:  make(chan os.Signal, 2),
		done:   make(chan struct{}),
	}
	w.counter = NewSignalCounter(2, w.force)
	return w
}

// OnForce replaces the forced-exit behavior. The callback receives the
// first signal that arrived. Used by tests and by callers that need to
// flush before exiting.
func (w *Watcher) OnForce(fn func(os.Signal)) *Watcher {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onForce = fn
	return w
}

// Start derives a context from parent and begins listening for SIGINT
// and SIGTERM. Calling Start twice returns the same context.
func (w *Watcher) Start(parent context.Context) context.Context {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return w.ctx
	}
	w.started = true
	w.ctx, w.cancel = context.WithCancel(parent)

	signal.Notify(w.sigCh, os.Interrupt, syscall.SIGTERM)
	go w.loop()

	return w.ctx
}

// Stop releases the signal subscription and cancels the run context.
// Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		signal.Stop(w.sigCh)
		close(w.done)

		w.mu.Lock()
		cancel := w.cancel
		w.mu.Unlock()
		if cancel != nil {
			cancel()
		}
	})
}

// Signal returns the first shutdown signal received, or nil if the run
// was never interrupted.
func (w *Watcher) Signal() os.Signal {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sig
}

// Interrupted reports whether a shutdown signal arrived.
func (w *Watcher) Interrupted() bool {
	return w.Signal() != nil
}

// ExitCode returns the exit code matching how the run ended: success
// when no signal arrived, otherwise the 128+signal convention.
func (w *Watcher) ExitCode() int {
	sig := w.Signal()
	if sig == nil {
		return core.ExitCodeSuccess
	}
	return core.ExitCodeForSignal(sig)
}

func (w *Watcher) loop() {
	for {
		select {
		case sig := <-w.sigCh:
			w.handleSignal(sig)
		case <-w.done:
			return
		}
	}
}

// handleSignal records the first signal and cancels the run context;
// repeats count toward the forced exit.
func (w *Watcher) handleSignal(sig os.Signal) {
	w.mu.Lock()
	first := w.sig == nil
	if first {
		w.sig = sig
	}
	cancel := w.cancel
	w.mu.Unlock()

	if first {
		w.logger.Warn("shutdown signal received, letting the current sweep finish",
			zap.String("signal", sig.String()),
			zap.String("hint", "repeat the signal to force quit"))
		if cancel != nil {
			cancel()
		}
	}

	w.counter.Increment()
}

// force runs on the repeated signal, while the counter lock is held.
func (w *Watcher) force() {
	w.mu.Lock()
	sig := w.sig
	onForce := w.onForce
	w.mu.Unlock()

	if sig == nil {
		sig = os.Interrupt
	}

	w.logger.Error("repeated shutdown signal, exiting now",
		zap.String("signal", sig.String()))

	if onForce != nil {
		onForce(sig)
		return
	}
	os.Exit(core.ExitCodeForSignal(sig))
}
