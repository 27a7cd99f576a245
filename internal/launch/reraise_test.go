//go:build unix

package launch

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

const reraiseHelperEnv = "BOSUN_RERAISE_HELPER"

// TestReraise re-execs the test binary so the re-raised signal kills the
// child copy instead of this test run. The helper branch calls Reraise and
// must die from the signal before reaching the sentinel exit code; the
// parent asserts the child's wait status reports that same signal.
func TestReraise(t *testing.T) {
	if os.Getenv(reraiseHelperEnv) == "1" {
		if err := Reraise(unix.SIGTERM); err != nil {
			os.Exit(3)
		}

		// Delivery is asynchronous; the sleep is only reached if the
		// signal failed to terminate us.
		time.Sleep(5 * time.Second)
		os.Exit(4)
	}

	exe, err := os.Executable()
	if err != nil {
		t.Fatal(err)
	}

	cmd := exec.Command(exe, "-test.run=^TestReraise$")
	cmd.Env = append(os.Environ(), reraiseHelperEnv+"=1")

	err = cmd.Run()

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("helper exited cleanly (err = %v), want signal death", err)
	}

	ws, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok {
		t.Fatalf("wait status type = %T", exitErr.Sys())
	}

	if !ws.Signaled() {
		t.Fatalf("helper exit code = %d, want signal death", ws.ExitStatus())
	}

	if ws.Signal() != unix.SIGTERM {
		t.Errorf("helper died from %v, want SIGTERM", ws.Signal())
	}
}

// TestReraise_InvalidSignal pins the error path: delivery failure must
// surface so callers can fall back to the 128+n exit code.
func TestReraise_InvalidSignal(t *testing.T) {
	if err := Reraise(syscall.Signal(-1)); err == nil {
		t.Error("Reraise(-1) = nil error, want delivery failure")
	}
}
