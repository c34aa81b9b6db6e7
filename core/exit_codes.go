package core

import (
	"fmt"
	"os"
	"syscall"
)

// Exit codes follow shell conventions: 0 for success, 1 for generic
// errors, and 128+signal for signal-driven termination.
const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
	ExitCodeSIGINT  = 130 // 128 + SIGINT(2)
	ExitCodeSIGTERM = 143 // 128 + SIGTERM(15)
)

// ExitCodeName returns a human-readable name for an exit code.
func ExitCodeName(code int) string {
	switch code {
	case ExitCodeSuccess:
		return "success"
	case ExitCodeError:
		return "error"
	case ExitCodeSIGINT:
		return "interrupted (SIGINT)"
	case ExitCodeSIGTERM:
		return "terminated (SIGTERM)"
	default:
		return fmt.Sprintf("exit code %d", code)
	}
}

// IsSignalExit reports whether an exit code indicates signal-driven
// termination.
func IsSignalExit(code int) bool {
	return code == ExitCodeSIGINT || code == ExitCodeSIGTERM
}

// ExitCodeForSignal maps an OS signal to its conventional exit code.
// Unknown signals map to ExitCodeError.
func ExitCodeForSignal(sig os.Signal) int {
	switch sig {
	case syscall.SIGINT:
		return ExitCodeSIGINT
	case syscall.SIGTERM:
		return ExitCodeSIGTERM
	default:
		return ExitCodeError
	}
}
