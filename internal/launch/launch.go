// Package launch spawns a single child command through a shell and reports
// how it terminated.
//
// The Spawner interface is the capability boundary between command wiring
// and process creation: production code uses ShellSpawner, tests substitute
// a recorder. The parent mirrors the child's termination — exit code for a
// plain exit, the same signal for a signal death — so wrapping a dev server
// in bosun is indistinguishable from running it directly.
package launch

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
)

// DefaultShell interprets the command line when no shell is configured.
const DefaultShell = "sh"

// Invocation describes one child command to spawn.
type Invocation struct {
	// Command is the shell command line. Shell operators and globs behave
	// as if typed interactively.
	Command string

	// Args are forwarded verbatim to the child, unexpanded.
	Args []string

	// Dir is the working directory; empty means the parent's.
	Dir string

	// Env is the complete environment snapshot for the child.
	Env []string

	// Stdin, Stdout, Stderr are connected to the child unmodified. Nil
	// values fall back to the parent's streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Result is the observed termination outcome of a child process.
type Result struct {
	// ExitCode is the child's exit code; for a signal death it holds the
	// conventional 128+signal fallback.
	ExitCode int

	// Signal is nonzero when the child was terminated by a signal.
	Signal syscall.Signal
}

// Signaled reports whether the child died from a signal.
func (r Result) Signaled() bool {
	return r.Signal != 0
}

// Spawner runs one child command to completion.
type Spawner interface {
	Spawn(ctx context.Context, inv *Invocation) (Result, error)
}

// ChildExitError carries a nonzero child exit code up through the command
// layer without any error output of its own.
type ChildExitError struct {
	Code int
}

func (e *ChildExitError) Error() string {
	return fmt.Sprintf("command exited with code %d", e.Code)
}

// ShellSpawner spawns commands via `<shell> -c`, blocking until the child
// terminates. The wait is unbounded: no timeouts, no retries.
type ShellSpawner struct {
	// Shell is the interpreter binary; DefaultShell when empty.
	Shell string
}

// Spawn implements Spawner.
func (s *ShellSpawner) Spawn(ctx context.Context, inv *Invocation) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	cmd := s.buildCmd(inv)

	if err := cmd.Run(); err != nil {
		return exitResult(err)
	}

	return Result{}, nil
}

func (s *ShellSpawner) buildCmd(inv *Invocation) *exec.Cmd {
	shell := s.Shell
	if shell == "" {
		shell = DefaultShell
	}

	// `sh -c 'cmd "$@"' cmd args...` gives the command line full shell
	// interpretation while forwarding args verbatim as positional
	// parameters.
	script := inv.Command
	if len(inv.Args) > 0 {
		script += ` "$@"`
	}

	argv := append([]string{"-c", script, inv.Command}, inv.Args...)

	cmd := exec.Command(shell, argv...) //nolint:gosec // G204: running user-supplied commands is the purpose of this package
	cmd.Dir = inv.Dir
	cmd.Env = inv.Env

	cmd.Stdin = inv.Stdin
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}

	cmd.Stdout = inv.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}

	cmd.Stderr = inv.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	return cmd
}

// Ensure ShellSpawner satisfies the Spawner interface.
var _ Spawner = (*ShellSpawner)(nil)
