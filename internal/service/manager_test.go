//go:build unix

package service

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/harborview/bosun/internal/project"
)

func testManager(t *testing.T) *Manager {
	t.Helper()

	dir := t.TempDir()

	root, err := project.At(dir)
	if err != nil {
		t.Fatalf("At() error = %v", err)
	}

	return &Manager{
		Root:  root,
		Env:   os.Environ(),
		Grace: 2 * time.Second,
	}
}

func TestManagerStartStop(t *testing.T) {
	m := testManager(t)

	pid, err := m.Start("web", project.Service{Command: "sleep 30"})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	t.Cleanup(func() { _ = syscall.Kill(-pid, syscall.SIGKILL) })

	if !processAlive(pid) {
		t.Fatalf("process %d not alive after Start", pid)
	}

	if got := m.Status("web"); !got.Running || got.PID != pid {
		t.Errorf("Status() = %+v, want running with pid %d", got, pid)
	}

	if _, err := os.Stat(m.pidFile("web")); err != nil {
		t.Errorf("pid file missing: %v", err)
	}

	if err := m.Stop("web"); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	if got := m.Status("web"); got.Running {
		t.Errorf("Status() after Stop = %+v, want not running", got)
	}

	if _, err := os.Stat(m.pidFile("web")); !os.IsNotExist(err) {
		t.Errorf("pid file still present after Stop, stat err = %v", err)
	}
}

func TestManagerStartAlreadyRunning(t *testing.T) {
	m := testManager(t)

	pid, err := m.Start("web", project.Service{Command: "sleep 30"})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	t.Cleanup(func() { _ = syscall.Kill(-pid, syscall.SIGKILL) })

	if _, err := m.Start("web", project.Service{Command: "sleep 30"}); err == nil {
		t.Fatal("second Start() succeeded, want ErrAlreadyRunning")
	}

	if err := m.Stop("web"); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
}

func TestManagerStopNotRunning(t *testing.T) {
	m := testManager(t)

	if err := m.Stop("web"); err != ErrNotRunning {
		t.Errorf("Stop() error = %v, want ErrNotRunning", err)
	}
}

func TestManagerStalePIDFile(t *testing.T) {
	m := testManager(t)

	// A process we know has already exited.
	cmd := exec.Command("true")
	if err := cmd.Run(); err != nil {
		t.Fatalf("run true: %v", err)
	}

	deadPID := cmd.Process.Pid

	if err := os.MkdirAll(m.pidDir(), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := writePIDFile(m.pidFile("web"), deadPID); err != nil {
		t.Fatal(err)
	}

	if got := m.Status("web"); got.Running {
		t.Errorf("Status() = %+v, want not running for dead pid", got)
	}

	if _, err := os.Stat(m.pidFile("web")); !os.IsNotExist(err) {
		t.Errorf("stale pid file not removed, stat err = %v", err)
	}
}

func TestManagerServiceOutputAndEnv(t *testing.T) {
	m := testManager(t)

	svc := project.Service{
		Command: `printf '%s %s\n' "$TIDE" "$BOSUN_SERVICE"`,
		Env:     map[string]string{"TIDE": "high"},
	}

	if _, err := m.Start("probe", svc); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	var lines []string

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		var err error

		lines, err = m.LogTail("probe", 10)
		if err == nil && len(lines) > 0 {
			break
		}

		time.Sleep(50 * time.Millisecond)
	}

	if len(lines) != 1 || lines[0] != "high probe" {
		t.Errorf("LogTail() = %q, want [\"high probe\"]", lines)
	}
}

func TestManagerServiceDir(t *testing.T) {
	m := testManager(t)

	sub := filepath.Join(m.Root.Dir, "web")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	if _, err := m.Start("web", project.Service{Command: "pwd", Dir: "web"}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	var lines []string

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		lines, _ = m.LogTail("web", 1)
		if len(lines) > 0 {
			break
		}

		time.Sleep(50 * time.Millisecond)
	}

	if len(lines) != 1 || filepath.Base(lines[0]) != "web" {
		t.Errorf("service pwd = %q, want directory %q", lines, sub)
	}
}

func TestLogTail(t *testing.T) {
	m := testManager(t)

	if lines, err := m.LogTail("missing", 5); err != nil || lines != nil {
		t.Errorf("LogTail(missing) = %q, %v, want nil, nil", lines, err)
	}

	if err := os.MkdirAll(m.logDir(), 0o755); err != nil {
		t.Fatal(err)
	}

	content := strings.Join([]string{"one", "two", "three", "four"}, "\n") + "\n"
	if err := os.WriteFile(m.logFile("web"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		n    int
		want []string
	}{
		{name: "last two", n: 2, want: []string{"three", "four"}},
		{name: "more than available", n: 10, want: []string{"one", "two", "three", "four"}},
		{name: "zero means all", n: 0, want: []string{"one", "two", "three", "four"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.LogTail("web", tt.n)
			if err != nil {
				t.Fatalf("LogTail() error = %v", err)
			}

			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("LogTail() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadPIDFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "web.pid")

	if _, err := readPIDFile(path); err == nil {
		t.Error("readPIDFile() on missing file succeeded, want error")
	}

	if err := os.WriteFile(path, []byte("not a number"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := readPIDFile(path); err == nil {
		t.Error("readPIDFile() on garbage succeeded, want error")
	}

	if err := writePIDFile(path, 4242); err != nil {
		t.Fatalf("writePIDFile() error = %v", err)
	}

	pid, err := readPIDFile(path)
	if err != nil {
		t.Fatalf("readPIDFile() error = %v", err)
	}

	if pid != 4242 {
		t.Errorf("readPIDFile() = %d, want 4242", pid)
	}
}
