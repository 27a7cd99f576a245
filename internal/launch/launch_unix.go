//go:build unix

package launch

import (
	"errors"
	"fmt"
	"os/exec"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

// exitResult maps a cmd.Run error to a termination Result. Spawn failures
// (command not found, fork errors) stay errors; a child that ran and died
// is a Result, however it died.
func exitResult(err error) (Result, error) {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return Result{}, fmt.Errorf("spawn command: %w", err)
	}

	ws, ok := exitErr.Sys().(syscall.WaitStatus)
	if ok && ws.Signaled() {
		sig := ws.Signal()

		return Result{ExitCode: 128 + int(sig), Signal: sig}, nil
	}

	return Result{ExitCode: exitErr.ExitCode()}, nil
}

// Reraise delivers sig to the current process with default disposition
// restored, so the parent's own termination reflects the same signal death
// the child had. Returns only if delivery failed or the signal was
// non-fatal.
func Reraise(sig syscall.Signal) error {
	signal.Reset(sig)

	if err := unix.Kill(unix.Getpid(), sig); err != nil {
		return fmt.Errorf("re-raise %s: %w", sig, err)
	}

	return nil
}
