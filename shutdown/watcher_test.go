package shutdown

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/vibabattista/stylised-images/core"
)

func TestWatcher_StartReturnsLiveContext(t *testing.T) {
	watcher := NewWatcher(zaptest.NewLogger(t))
	defer watcher.Stop()

	ctx := watcher.Start(context.Background())
	select {
	case <-ctx.Done():
		t.Fatal("context should not be cancelled before any signal")
	default:
	}

	if watcher.Interrupted() {
		t.Error("watcher should not report an interrupt before any signal")
	}
	if code := watcher.ExitCode(); code != core.ExitCodeSuccess {
		t.Errorf("expected exit code %d, got %d", core.ExitCodeSuccess, code)
	}
}

func TestWatcher_StartTwiceReturnsSameContext(t *testing.T) {
	watcher := NewWatcher(nil)
	defer watcher.Stop()

	first := watcher.Start(context.Background())
	second := watcher.Start(context.Background())
	if first != second {
		t.Error("expected repeated Start to return the same context")
	}
}

func TestWatcher_FirstSignalCancelsContext(t *testing.T) {
	watcher := NewWatcher(zaptest.NewLogger(t))
	defer watcher.Stop()

	ctx := watcher.Start(context.Background())
	watcher.handleSignal(syscall.SIGINT)

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context should be cancelled after the first signal")
	}

	if !watcher.Interrupted() {
		t.Error("watcher should report an interrupt")
	}
	if sig := watcher.Signal(); sig != syscall.SIGINT {
		t.Errorf("expected recorded signal SIGINT, got %v", sig)
	}
	if code := watcher.ExitCode(); code != core.ExitCodeSIGINT {
		t.Errorf("expected exit code %d, got %d", core.ExitCodeSIGINT, code)
	}
}

func TestWatcher_SecondSignalForces(t *testing.T) {
	var forcedWith os.Signal
	watcher := NewWatcher(zaptest.NewLogger(t)).OnForce(func(sig os.Signal) {
		forcedWith = sig
	})
	defer watcher.Stop()

	watcher.Start(context.Background())

	watcher.handleSignal(syscall.SIGINT)
	if forcedWith != nil {
		t.Fatal("force callback should not run on the first signal")
	}

	watcher.handleSignal(syscall.SIGINT)
	if forcedWith != syscall.SIGINT {
		t.Errorf("expected force callback with SIGINT, got %v", forcedWith)
	}
}

func TestWatcher_RecordsFirstSignal(t *testing.T) {
	watcher := NewWatcher(nil).OnForce(func(os.Signal) {})
	defer watcher.Stop()

	watcher.Start(context.Background())
	watcher.handleSignal(syscall.SIGTERM)
	watcher.handleSignal(syscall.SIGINT)

	if sig := watcher.Signal(); sig != syscall.SIGTERM {
		t.Errorf("expected the first signal to be recorded, got %v", sig)
	}
	if code := watcher.ExitCode(); code != core.ExitCodeSIGTERM {
		t.Errorf("expected exit code %d, got %d", core.ExitCodeSIGTERM, code)
	}
}

func TestWatcher_StopCancelsContext(t *testing.T) {
	watcher := NewWatcher(nil)
	ctx := watcher.Start(context.Background())

	watcher.Stop()
	watcher.Stop() // safe to repeat

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context should be cancelled after Stop")
	}

	if watcher.Interrupted() {
		t.Error("Stop should not count as an interrupt")
	}
	if code := watcher.ExitCode(); code != core.ExitCodeSuccess {
		t.Errorf("expected exit code %d after plain Stop, got %d", core.ExitCodeSuccess, code)
	}
}

func TestWatcher_ParentCancellationPropagates(t *testing.T) {
	watcher := NewWatcher(nil)
	defer watcher.Stop()

	parent, cancel := context.WithCancel(context.Background())
	ctx := watcher.Start(parent)

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("parent cancellation should propagate to the run context")
	}
}
