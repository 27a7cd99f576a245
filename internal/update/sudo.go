//go:build !windows

package update

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"

	"golang.org/x/sys/unix"
)

// NeedsElevation reports whether replacing the bosun binary requires
// elevated permissions: true when its parent directory is not writable
// (typical for system-wide installs under /usr/local/bin).
func NeedsElevation(binaryPath string) bool {
	dir := filepath.Dir(binaryPath)
	return unix.Access(dir, unix.W_OK) != nil
}

// ReExecWithSudo re-launches the running bosun command under sudo so the
// update can replace the binary in place. Replaces the current process via
// syscall.Exec; on success it does not return.
func ReExecWithSudo() error {
	sudoPath, err := exec.LookPath("sudo")
	if err != nil {
		return fmt.Errorf("sudo not found in PATH; re-run 'bosun update' with write access to the install directory")
	}

	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("find bosun executable: %w", err)
	}

	fmt.Fprintln(os.Stderr, "Updating bosun needs write access to its install directory. Requesting sudo...")

	argv := append([]string{"sudo", execPath}, os.Args[1:]...)

	if err := syscall.Exec(sudoPath, argv, os.Environ()); err != nil { //nolint:gosec // G204: intentional sudo re-exec
		return fmt.Errorf("exec sudo process: %w", err)
	}

	return nil
}
