//go:build !unix

package launch

import (
	"errors"
	"fmt"
	"os/exec"
	"syscall"
)

func exitResult(err error) (Result, error) {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return Result{}, fmt.Errorf("spawn command: %w", err)
	}

	return Result{ExitCode: exitErr.ExitCode()}, nil
}

// Reraise is a no-op on platforms without Unix signal semantics; callers
// fall back to the 128+signal exit code.
func Reraise(syscall.Signal) error {
	return nil
}
