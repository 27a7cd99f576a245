//go:build unix

// Package service manages long-running dev processes declared in the
// project manifest.
//
// Services run detached in their own process group with output appended to
// a per-service log file and the PID recorded under the project state
// directory. Each bosun invocation reconstructs service state from those
// PID files; nothing is held in memory between runs.
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/harborview/bosun/internal/launch"
	"github.com/harborview/bosun/internal/project"
)

// ErrNotRunning is returned by Stop when no live process exists.
var ErrNotRunning = errors.New("service not running")

// ErrAlreadyRunning is returned by Start when a live process exists.
var ErrAlreadyRunning = errors.New("service already running")

const stopPollInterval = 250 * time.Millisecond

// Manager starts, stops, and inspects managed services for one project.
type Manager struct {
	// Root is the project the services belong to.
	Root project.Root

	// Shell interprets service command lines; launch.DefaultShell when
	// empty.
	Shell string

	// Env is the merged environment snapshot handed to every service.
	Env []string

	// Grace is how long Stop waits between SIGTERM and SIGKILL.
	Grace time.Duration

	// Logger receives structured lifecycle events; nil disables logging.
	Logger *slog.Logger
}

// Status describes the observed state of one service.
type Status struct {
	Name    string `json:"name"`
	Running bool   `json:"running"`
	PID     int    `json:"pid,omitempty"`
	LogFile string `json:"logFile"`
}

// Start launches the declared service detached and records its PID.
func (m *Manager) Start(name string, svc project.Service) (int, error) {
	if pid, alive := m.livePID(name); alive {
		return pid, fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
	}

	if err := os.MkdirAll(m.pidDir(), 0o755); err != nil {
		return 0, fmt.Errorf("create pid dir: %w", err)
	}

	if err := os.MkdirAll(m.logDir(), 0o755); err != nil {
		return 0, fmt.Errorf("create log dir: %w", err)
	}

	logFile, err := os.OpenFile(m.logFile(name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	shell := m.Shell
	if shell == "" {
		shell = launch.DefaultShell
	}

	cmd := exec.Command(shell, "-c", svc.Command) //nolint:gosec // G204: running manifest-declared commands is the point
	cmd.Dir = filepath.Join(m.Root.Dir, svc.Dir)
	cmd.Env = serviceEnv(m.Env, name, svc.Env)
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	// Own process group so Stop can take down the whole tree.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start %s: %w", name, err)
	}

	pid := cmd.Process.Pid

	if err := writePIDFile(m.pidFile(name), pid); err != nil {
		_ = syscall.Kill(-pid, syscall.SIGKILL)

		return 0, err
	}

	// Detach: the service outlives this invocation.
	_ = cmd.Process.Release()

	m.log(name, "service started", slog.Int("service.pid", pid))

	return pid, nil
}

// Stop terminates the service's process group: SIGTERM, then SIGKILL after
// the grace period. The PID file is removed in every outcome.
func (m *Manager) Stop(name string) error {
	pid, alive := m.livePID(name)
	if !alive {
		return ErrNotRunning
	}

	target := -pid
	if pgid, err := syscall.Getpgid(pid); err == nil {
		target = -pgid
	}

	_ = syscall.Kill(target, syscall.SIGTERM)

	grace := m.Grace
	if grace <= 0 {
		grace = 5 * time.Second
	}

	deadline := time.Now().Add(grace)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			m.removePIDFile(name)
			m.log(name, "service stopped")

			return nil
		}

		time.Sleep(stopPollInterval)
	}

	_ = syscall.Kill(target, syscall.SIGKILL)
	m.removePIDFile(name)
	m.log(name, "service killed after grace period")

	return nil
}

// Status reports whether the named service is running. Stale PID files
// (recorded process no longer alive) are cleaned up as a side effect.
func (m *Manager) Status(name string) Status {
	st := Status{Name: name, LogFile: m.logFile(name)}

	if pid, alive := m.livePID(name); alive {
		st.Running = true
		st.PID = pid
	}

	return st
}

// LogTail returns up to n trailing lines of the service log.
func (m *Manager) LogTail(name string, n int) ([]string, error) {
	data, err := os.ReadFile(m.logFile(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("read service log: %w", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil, nil
	}

	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}

	return lines, nil
}

// livePID reads the PID file and probes the process; stale files are
// removed.
func (m *Manager) livePID(name string) (int, bool) {
	pid, err := readPIDFile(m.pidFile(name))
	if err != nil {
		return 0, false
	}

	if !processAlive(pid) {
		m.removePIDFile(name)
		return 0, false
	}

	return pid, true
}

func (m *Manager) removePIDFile(name string) {
	_ = os.Remove(m.pidFile(name))
}

func (m *Manager) pidDir() string {
	return filepath.Join(m.Root.StateDir(), "pids")
}

func (m *Manager) logDir() string {
	return filepath.Join(m.Root.StateDir(), "logs")
}

func (m *Manager) pidFile(name string) string {
	return filepath.Join(m.pidDir(), name+".pid")
}

func (m *Manager) logFile(name string) string {
	return filepath.Join(m.logDir(), name+".log")
}

func (m *Manager) log(name, msg string, attrs ...any) {
	if m.Logger == nil {
		return
	}

	m.Logger.Info(msg, append([]any{slog.String("service.name", name)}, attrs...)...)
}

// serviceEnv layers per-service overrides and bosun's own markers on top
// of the merged snapshot. Later duplicates win in os/exec.
func serviceEnv(merged []string, name string, overrides map[string]string) []string {
	env := make([]string, len(merged), len(merged)+len(overrides)+1)
	copy(env, merged)

	for k, v := range overrides {
		env = append(env, k+"="+v)
	}

	return append(env, "BOSUN_SERVICE="+name)
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}

	return syscall.Kill(pid, 0) == nil
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func writePIDFile(path string, pid int) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename pid file: %w", err)
	}

	return nil
}
